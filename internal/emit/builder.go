package emit

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"mtb-mapper/errors"
	"mtb-mapper/node"
)

type labelInfo struct {
	pos   int // -1 until marked
	scope int
}

type region struct {
	index   int
	begin   int // pc of OpBeginTry
	handler int // pc of OpBeginFinally / OpBeginCatch
	end     int // pc of OpEndTry
	kind    OpCode
	catch   reflect.Type
	parent  int // scope enclosing the region
}

// Builder assembles the instruction stream of one routine. Misuse is
// recorded and reported by Compile.
type Builder struct {
	name    string
	params  []reflect.Type
	code    []Instr
	locals  []LocalInfo
	names   *node.Stem
	labels  []labelInfo
	regions []*region
	open    []*region
	scope   int
	scopes  int
	err     error
}

// NewBuilder starts a routine taking params.
func NewBuilder(name string, params ...reflect.Type) *Builder {
	return &Builder{name: name, params: params, names: node.NewStem()}
}

func (b *Builder) Name() string { return b.name }

// Param returns the type of argument i.
func (b *Builder) Param(i int) reflect.Type {
	if i < 0 || i >= len(b.params) {
		b.fail("argument %d out of range", i)
		return nil
	}

	return b.params[i]
}

// DeclareLocal adds a local of type t. Names only label listings; a name
// already in use gets a number suffix.
func (b *Builder) DeclareLocal(t reflect.Type, name string) Local {
	if t == nil {
		b.fail("local %q has no type", name)
	}

	b.locals = append(b.locals, LocalInfo{Type: t, Name: b.names.Next(name)})

	return Local(len(b.locals) - 1)
}

func (b *Builder) LocalType(l Local) reflect.Type {
	if !b.validLocal(l) {
		return nil
	}

	return b.locals[l].Type
}

func (b *Builder) DefineLabel() Label {
	b.labels = append(b.labels, labelInfo{pos: -1})
	return Label(len(b.labels) - 1)
}

// MarkLabel binds l to the next emitted instruction.
func (b *Builder) MarkLabel(l Label) {
	if int(l) < 0 || int(l) >= len(b.labels) {
		b.fail("label %d is not defined", l)
		return
	}

	if b.labels[l].pos >= 0 {
		b.fail("label %d is marked twice", l)
		return
	}

	b.labels[l] = labelInfo{pos: len(b.code), scope: b.scope}
}

// Emit appends an instruction without operands.
func (b *Builder) Emit(op OpCode) {
	switch op {
	case OpLdArg, OpLdLoc, OpStLoc, OpLdConst, OpLdZero, OpNew, OpMakeSlice, OpMakeMap,
		OpLdField, OpStField, OpConvert, OpBox, OpCall, OpInvoke,
		OpBr, OpBrTrue, OpBrFalse,
		OpBeginTry, OpBeginFinally, OpBeginCatch, OpEndTry:
		b.fail("%s needs an operand, use the dedicated emitter", op)
		return
	}

	b.push(Instr{Op: op})
}

func (b *Builder) EmitArg(i int) {
	if i < 0 || i >= len(b.params) {
		b.fail("argument %d out of range", i)
		return
	}

	b.push(Instr{Op: OpLdArg, Arg: i})
}

// EmitLocal emits OpLdLoc or OpStLoc.
func (b *Builder) EmitLocal(op OpCode, l Local) {
	if op != OpLdLoc && op != OpStLoc {
		b.fail("%s does not take a local", op)
		return
	}

	if !b.validLocal(l) {
		return
	}

	b.push(Instr{Op: op, Arg: int(l)})
}

// EmitConst pushes a constant. Nil pushes an invalid value, which stores
// as the zero value of the receiving slot.
func (b *Builder) EmitConst(v any) {
	b.push(Instr{Op: OpLdConst, Value: reflect.ValueOf(v)})
}

func (b *Builder) EmitInt(n int) {
	b.EmitConst(n)
}

// EmitType emits an instruction whose operand is a type.
func (b *Builder) EmitType(op OpCode, t reflect.Type) {
	if t == nil {
		b.fail("%s without a type", op)
		return
	}

	switch op {
	case OpLdZero, OpNew, OpConvert, OpBox:
	case OpMakeSlice:
		if t.Kind() != reflect.Slice {
			b.fail("%s of non-slice type %s", op, t)
			return
		}
	case OpMakeMap:
		if t.Kind() != reflect.Map {
			b.fail("%s of non-map type %s", op, t)
			return
		}
	default:
		b.fail("%s does not take a type", op)
		return
	}

	b.push(Instr{Op: op, Type: t})
}

// EmitField emits OpLdField or OpStField with a reflect field index path.
func (b *Builder) EmitField(op OpCode, index []int) {
	if op != OpLdField && op != OpStField {
		b.fail("%s does not take a field", op)
		return
	}

	if len(index) == 0 {
		b.fail("%s with an empty field index", op)
		return
	}

	b.push(Instr{Op: op, Index: index})
}

func (b *Builder) EmitBranch(op OpCode, l Label) {
	if !op.isBranch() {
		b.fail("%s is not a branch", op)
		return
	}

	if int(l) < 0 || int(l) >= len(b.labels) {
		b.fail("label %d is not defined", l)
		return
	}

	b.push(Instr{Op: op, label: l})
}

func (b *Builder) EmitCall(c *Callable) {
	if c == nil || c.Fn == nil {
		b.fail("call without a function")
		return
	}

	b.push(Instr{Op: OpCall, Call: c})
}

func (b *Builder) EmitInvoke(c Callee) {
	if c == nil {
		b.fail("invoke without a callee")
		return
	}

	b.push(Instr{Op: OpInvoke, Callee: c})
}

// BeginTry opens a protected region. The stack must be empty.
func (b *Builder) BeginTry() {
	r := &region{index: len(b.regions), begin: len(b.code), handler: -1, end: -1, parent: b.scope}
	b.regions = append(b.regions, r)
	b.push(Instr{Op: OpBeginTry, Arg: r.index})

	b.open = append(b.open, r)
	b.enterScope()
}

// BeginFinally ends the try body of the innermost region and starts its
// finally handler.
func (b *Builder) BeginFinally() {
	b.beginHandler(OpBeginFinally, nil)
}

// BeginCatch ends the try body and starts a handler for errors whose chain
// contains kind. The handler starts with the caught error on the stack.
func (b *Builder) BeginCatch(kind reflect.Type) {
	if kind == nil {
		kind = errorType
	}

	if kind.Kind() != reflect.Interface && !kind.Implements(errorType) {
		b.fail("catch type %s does not implement error", kind)
		return
	}

	b.beginHandler(OpBeginCatch, kind)
}

func (b *Builder) beginHandler(op OpCode, kind reflect.Type) {
	if len(b.open) == 0 {
		b.fail("%s outside of a try region", op)
		return
	}

	r := b.open[len(b.open)-1]
	if r.handler >= 0 {
		b.fail("%s: region already has a handler", op)
		return
	}

	r.handler = len(b.code)
	r.kind = op
	r.catch = kind
	b.push(Instr{Op: op, Type: kind, Arg: r.index})
	b.enterScope()
}

// EndTry closes the innermost region.
func (b *Builder) EndTry() {
	if len(b.open) == 0 {
		b.fail("end of try outside of a try region")
		return
	}

	r := b.open[len(b.open)-1]
	if r.handler < 0 {
		b.fail("try region closed without a handler")
		return
	}

	r.end = len(b.code)
	b.push(Instr{Op: OpEndTry, Arg: r.index})

	b.open = b.open[:len(b.open)-1]
	b.scope = r.parent
}

// Fail records an error found by a caller while emitting.
func (b *Builder) Fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Compile links labels, verifies the program and returns it.
func (b *Builder) Compile() (*Program, error) {
	if b.err != nil {
		return nil, b.wrap(b.err)
	}

	if len(b.open) > 0 {
		return nil, b.wrap(fmt.Errorf("%d try regions are not closed", len(b.open)))
	}

	code := make([]Instr, len(b.code))
	copy(code, b.code)

	for pc := range code {
		in := &code[pc]
		if !in.Op.isBranch() {
			continue
		}

		target := b.labels[in.label]
		if target.pos < 0 {
			return nil, b.wrap(fmt.Errorf("pc %d: branch to unmarked label %d", pc, in.label))
		}

		if target.scope != in.scope {
			return nil, b.wrap(fmt.Errorf("pc %d: branch to label %d leaves or enters a try region", pc, in.label))
		}

		in.Arg = target.pos
	}

	p := &Program{
		name:    b.name,
		params:  b.params,
		code:    code,
		locals:  b.locals,
		regions: b.regions,
	}

	maxStack, err := verify(p)
	if err != nil {
		return nil, b.wrap(err)
	}

	p.maxStack = maxStack

	Logger().Debug("program compiled",
		zap.String("routine", b.name),
		zap.Int("instructions", len(code)),
		zap.Int("locals", len(b.locals)),
		zap.Int("max_stack", maxStack))

	return p, nil
}

func (b *Builder) push(in Instr) {
	in.scope = b.scope
	b.code = append(b.code, in)
}

func (b *Builder) enterScope() {
	b.scopes++
	b.scope = b.scopes
}

func (b *Builder) validLocal(l Local) bool {
	if int(l) < 0 || int(l) >= len(b.locals) {
		b.fail("local %d is not declared", l)
		return false
	}

	return true
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *Builder) wrap(err error) error {
	if e, ok := err.(*errors.Error); ok {
		return e
	}

	return errors.New(errors.PhaseSynthesize, errors.KindInternal).
		Detail("routine %s", b.name).
		Cause(err).
		Build()
}
