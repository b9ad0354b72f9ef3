package emit

//go:generate go tool stringer -type=OpCode -output=opcode_string.go

// OpCode is a single VM operation. Stack effects are listed as
// (popped -> pushed); the top of the stack is the rightmost operand.
type OpCode uint8

const (
	OpNop          OpCode = iota
	OpLdArg               // (-> arg[Arg])
	OpLdLoc               // (-> local[Arg])
	OpStLoc               // (v ->) local[Arg] = v
	OpLdConst             // (-> Value)
	OpLdZero              // (-> zero of Type)
	OpDup                 // (v -> v v)
	OpPop                 // (v ->)
	OpNew                 // (-> new(Type))
	OpMakeSlice           // (n -> make(Type, n, n))
	OpMakeMap             // (n -> make(Type, n))
	OpLen                 // (v -> len(v))
	OpIsNil               // (v -> v == nil)
	OpNot                 // (b -> !b)
	OpLdField             // (obj -> obj.Field(Index)); pointers are dereferenced
	OpStField             // (ptr v ->) ptr.Field(Index) = v
	OpLdElem              // (seq i -> seq[i])
	OpStElem              // (seq i v ->) seq[i] = v; arrays must be passed by pointer
	OpStMap               // (m k v ->) m[k] = v
	OpDeref               // (ptr -> *ptr)
	OpRef                 // (v -> &v); addressable values are not copied
	OpBox                 // (v -> p) p = new(Type); *p = v
	OpConvert             // (v -> Type(v))
	OpCall                // (a1..an -> r1..rm) via Call
	OpInvoke              // (arg -> result) via Callee, one level deeper
	OpAdd                 // (a b -> a+b) ints
	OpCeq                 // (a b -> a == b)
	OpClt                 // (a b -> a < b) ints
	OpCgt                 // (a b -> a > b) ints
	OpBr                  // jump to label
	OpBrTrue              // (b ->) jump if b
	OpBrFalse             // (b ->) jump if !b
	OpGetIter             // (seq -> it)
	OpIterNext            // (it -> it.Next())
	OpIterCurrent         // (it -> it.Current())
	OpIterClose           // (it ->) it.Close()
	OpEntryKey            // (entry -> entry.Key)
	OpEntryValue          // (entry -> entry.Value)
	OpThrow               // (err ->) raise err
	OpRet                 // (v ->) return v
	OpBeginTry            // start of a protected region
	OpBeginFinally        // end of the try body, start of the finally handler
	OpBeginCatch          // end of the try body, start of a catch handler for Type
	OpEndTry              // end of the handler

	// OpTotal is a constant that represents the total number of opcodes defined
	OpTotal = int(iota)
)

type stackEffect struct {
	pops, pushes int
}

// effects holds the fixed stack effects. OpCall depends on its Callable and
// the branch and region opcodes are handled by the verifier itself.
var effects = [...]stackEffect{
	OpNop:          {0, 0},
	OpLdArg:        {0, 1},
	OpLdLoc:        {0, 1},
	OpStLoc:        {1, 0},
	OpLdConst:      {0, 1},
	OpLdZero:       {0, 1},
	OpDup:          {1, 2},
	OpPop:          {1, 0},
	OpNew:          {0, 1},
	OpMakeSlice:    {1, 1},
	OpMakeMap:      {1, 1},
	OpLen:          {1, 1},
	OpIsNil:        {1, 1},
	OpNot:          {1, 1},
	OpLdField:      {1, 1},
	OpStField:      {2, 0},
	OpLdElem:       {2, 1},
	OpStElem:       {3, 0},
	OpStMap:        {3, 0},
	OpDeref:        {1, 1},
	OpRef:          {1, 1},
	OpBox:          {1, 1},
	OpConvert:      {1, 1},
	OpCall:         {0, 0},
	OpInvoke:       {1, 1},
	OpAdd:          {2, 1},
	OpCeq:          {2, 1},
	OpClt:          {2, 1},
	OpCgt:          {2, 1},
	OpBr:           {0, 0},
	OpBrTrue:       {1, 0},
	OpBrFalse:      {1, 0},
	OpGetIter:      {1, 1},
	OpIterNext:     {1, 1},
	OpIterCurrent:  {1, 1},
	OpIterClose:    {1, 0},
	OpEntryKey:     {1, 1},
	OpEntryValue:   {1, 1},
	OpThrow:        {1, 0},
	OpRet:          {1, 0},
	OpBeginTry:     {0, 0},
	OpBeginFinally: {0, 0},
	OpBeginCatch:   {0, 0},
	OpEndTry:       {0, 0},
}

func (op OpCode) isBranch() bool {
	return op == OpBr || op == OpBrTrue || op == OpBrFalse
}
