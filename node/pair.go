package node

import "reflect"

// TypePair identifies one compiled mapping routine.
type TypePair struct{ Source, Target reflect.Type }

func NewPair(src, dst reflect.Type) TypePair {
	return TypePair{Source: src, Target: dst}
}

func (p TypePair) String() string {
	return typeStr(p.Source) + " -> " + typeStr(p.Target)
}

// Base strips one pointer level from both sides.
func (p TypePair) Base() TypePair {
	_, src := PtrDepthAndBase(p.Source)
	_, dst := PtrDepthAndBase(p.Target)

	return TypePair{Source: src, Target: dst}
}
