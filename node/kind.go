package node

//go:generate go tool stringer -type=DispatcherEnum -output=kind_string.go

// DispatcherEnum classifies a source/target pair by shape.
type DispatcherEnum int

const (
	DispatcherUnknown   DispatcherEnum = iota // no shape-based plan applies
	DispatcherPrimitive                       // simple to simple
	DispatcherInterface                       // target cannot be constructed (interface, func, chan)
	DispatcherSlice                           // sequence to sequence
	DispatcherMap                             // map to map
	DispatcherStruct                          // struct to struct
	DispatcherPointer                         // pointer on at least one side

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)
