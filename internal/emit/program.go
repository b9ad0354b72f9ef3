package emit

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"mtb-mapper/errors"
)

// Program is a verified routine ready to run. It is immutable and safe for
// concurrent use; every run gets its own frame.
type Program struct {
	name     string
	params   []reflect.Type
	code     []Instr
	locals   []LocalInfo
	regions  []*region
	maxStack int
}

type frame struct {
	args   []reflect.Value
	locals []reflect.Value
	stack  []reflect.Value
	depth  int
	result reflect.Value
}

func (p *Program) Name() string { return p.name }

// MaxStack returns the deepest operand stack any path reaches.
func (p *Program) MaxStack() int { return p.maxStack }

// String returns a readable listing of the program.
func (p *Program) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "routine %s(", p.name)
	for i, t := range p.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString(")\n")

	for i, l := range p.locals {
		fmt.Fprintf(&b, "  .local %d %s %s\n", i, l.Name, l.Type)
	}

	for pc, in := range p.code {
		fmt.Fprintf(&b, "  %04d %s\n", pc, p.operand(in))
	}

	return b.String()
}

func (p *Program) operand(in Instr) string {
	op := strings.TrimPrefix(in.Op.String(), "Op")

	switch in.Op {
	case OpLdArg:
		return fmt.Sprintf("%s %d", op, in.Arg)
	case OpLdLoc, OpStLoc:
		return fmt.Sprintf("%s %s", op, p.locals[in.Arg].Name)
	case OpLdConst:
		if !in.Value.IsValid() {
			return op + " nil"
		}
		return fmt.Sprintf("%s %#v", op, in.Value)
	case OpLdZero, OpNew, OpMakeSlice, OpMakeMap, OpConvert, OpBox:
		return fmt.Sprintf("%s %s", op, in.Type)
	case OpBeginCatch:
		return fmt.Sprintf("%s %s", op, in.Type)
	case OpLdField, OpStField:
		return fmt.Sprintf("%s %v", op, in.Index)
	case OpCall:
		return fmt.Sprintf("%s %s", op, in.Call)
	case OpInvoke:
		if s, ok := in.Callee.(fmt.Stringer); ok {
			return fmt.Sprintf("%s %s", op, s)
		}
		return op
	case OpBr, OpBrTrue, OpBrFalse:
		return fmt.Sprintf("%s %04d", op, in.Arg)
	default:
		return op
	}
}

// Call runs the program with a single argument. It implements Callee.
func (p *Program) Call(depth int, arg reflect.Value) (reflect.Value, error) {
	return p.Run(depth, arg)
}

// Run executes the program. Panics raised while running, including those of
// called Go functions, are returned as errors of kind panic.
func (p *Program) Run(depth int, args ...reflect.Value) (out reflect.Value, err error) {
	if len(args) != len(p.params) {
		return reflect.Value{}, p.internal("called with %d arguments, want %d", len(args), len(p.params))
	}

	f := &frame{
		args:   make([]reflect.Value, len(args)),
		locals: make([]reflect.Value, len(p.locals)),
		stack:  make([]reflect.Value, 0, p.maxStack),
		depth:  depth,
	}

	for i, a := range args {
		if f.args[i], err = coerce(a, p.params[i]); err != nil {
			return reflect.Value{}, p.internal("argument %d: %v", i, err)
		}
	}

	for i, l := range p.locals {
		f.locals[i] = reflect.Zero(l.Type)
	}

	defer p.guard(&err)

	_, returned, err := p.exec(f, 0)
	if err != nil {
		return reflect.Value{}, err
	}

	if !returned {
		return reflect.Value{}, p.internal("finished without a return")
	}

	return f.result, nil
}

func (p *Program) guard(err *error) {
	r := recover()
	if r == nil {
		return
	}

	if e, ok := r.(error); ok {
		*err = errors.New(errors.PhaseMap, errors.KindPanic).Detail("routine %s", p.name).Value(r).Cause(e).Build()
	} else {
		*err = errors.New(errors.PhaseMap, errors.KindPanic).Detail("routine %s: %v", p.name, r).Value(r).Build()
	}

	Logger().Debug("routine panicked", zap.String("routine", p.name), zap.Any("panic", r))
}

// protect runs fn and turns a panic into an error, so catch handlers see
// panics like any other failure.
func (p *Program) protect(fn func() (bool, error)) (returned bool, err error) {
	defer p.guard(&err)
	return fn()
}

// exec runs instructions from pc until the routine returns or the current
// block reaches a region terminator.
func (p *Program) exec(f *frame, pc int) (int, bool, error) {
	for {
		in := &p.code[pc]

		switch in.Op {
		case OpNop:

		case OpLdArg:
			f.push(f.args[in.Arg])

		case OpLdLoc:
			f.push(f.locals[in.Arg])

		case OpStLoc:
			v, err := coerce(f.pop(), p.locals[in.Arg].Type)
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			f.locals[in.Arg] = v

		case OpLdConst:
			f.push(in.Value)

		case OpLdZero:
			f.push(reflect.Zero(in.Type))

		case OpDup:
			v := f.pop()
			f.push(v)
			f.push(v)

		case OpPop:
			f.pop()

		case OpNew:
			f.push(reflect.New(in.Type))

		case OpMakeSlice:
			n := toInt(f.pop())
			f.push(reflect.MakeSlice(in.Type, n, n))

		case OpMakeMap:
			f.push(reflect.MakeMapWithSize(in.Type, toInt(f.pop())))

		case OpLen:
			v := f.pop()
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					f.push(reflect.ValueOf(0))
					break
				}
				v = v.Elem()
			}
			f.push(reflect.ValueOf(v.Len()))

		case OpIsNil:
			f.push(reflect.ValueOf(isNil(f.pop())))

		case OpNot:
			f.push(reflect.ValueOf(!f.pop().Bool()))

		case OpLdField:
			obj, err := deref(f.pop())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			f.push(obj.FieldByIndex(in.Index))

		case OpStField:
			v, obj := f.pop(), f.pop()
			if obj.Kind() != reflect.Ptr || obj.IsNil() {
				return pc, false, p.internal("pc %d: store into a field of %s", pc, obj.Type())
			}

			field := obj.Elem().FieldByIndex(in.Index)
			fv, err := coerce(v, field.Type())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			field.Set(fv)

		case OpLdElem:
			i := toInt(f.pop())
			seq, err := deref(f.pop())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			f.push(seq.Index(i))

		case OpStElem:
			v, i := f.pop(), toInt(f.pop())
			seq, err := deref(f.pop())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}

			elem := seq.Index(i)
			ev, err := coerce(v, elem.Type())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			elem.Set(ev)

		case OpStMap:
			v, k, m := f.pop(), f.pop(), f.pop()

			kv, err := coerce(k, m.Type().Key())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}

			ev, err := coerce(v, m.Type().Elem())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			m.SetMapIndex(kv, ev)

		case OpDeref:
			v := f.pop()
			if v.Kind() != reflect.Ptr || v.IsNil() {
				return pc, false, p.internal("pc %d: dereference of %s", pc, describe(v))
			}
			f.push(v.Elem())

		case OpRef:
			v := f.pop()
			if v.CanAddr() {
				f.push(v.Addr())
				break
			}

			ptr := reflect.New(v.Type())
			ptr.Elem().Set(v)
			f.push(ptr)

		case OpBox:
			v, err := coerce(f.pop(), in.Type)
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}

			ptr := reflect.New(in.Type)
			ptr.Elem().Set(v)
			f.push(ptr)

		case OpConvert:
			v := f.pop()
			switch {
			case !v.IsValid():
				v = reflect.Zero(in.Type)
			case v.Type() != in.Type:
				v = v.Convert(in.Type)
			}
			f.push(v)

		case OpCall:
			n := in.Call.NumIn
			args := make([]reflect.Value, n)
			copy(args, f.stack[len(f.stack)-n:])
			f.stack = f.stack[:len(f.stack)-n]

			outs, err := in.Call.Fn(args)
			if err != nil {
				return pc, false, err
			}

			if len(outs) != in.Call.NumOut {
				return pc, false, p.internal("pc %d: %s returned %d values", pc, in.Call, len(outs))
			}

			for _, o := range outs {
				f.push(o)
			}

		case OpInvoke:
			out, err := in.Callee.Call(f.depth+1, f.pop())
			if err != nil {
				return pc, false, err
			}
			f.push(out)

		case OpAdd:
			b, a := toInt(f.pop()), toInt(f.pop())
			f.push(reflect.ValueOf(a + b))

		case OpCeq:
			b, a := f.pop(), f.pop()
			f.push(reflect.ValueOf(equal(a, b)))

		case OpClt:
			b, a := toInt(f.pop()), toInt(f.pop())
			f.push(reflect.ValueOf(a < b))

		case OpCgt:
			b, a := toInt(f.pop()), toInt(f.pop())
			f.push(reflect.ValueOf(a > b))

		case OpBr:
			pc = in.Arg
			continue

		case OpBrTrue, OpBrFalse:
			if f.pop().Bool() == (in.Op == OpBrTrue) {
				pc = in.Arg
				continue
			}

		case OpGetIter:
			it, err := Iterate(f.pop())
			if err != nil {
				return pc, false, p.internal("pc %d: %v", pc, err)
			}
			f.push(reflect.ValueOf(&it).Elem())

		case OpIterNext:
			f.push(reflect.ValueOf(iterator(f.pop()).Next()))

		case OpIterCurrent:
			f.push(iterator(f.pop()).Current())

		case OpIterClose:
			if err := iterator(f.pop()).Close(); err != nil {
				return pc, false, err
			}

		case OpEntryKey:
			f.push(f.pop().Interface().(Entry).Key)

		case OpEntryValue:
			f.push(f.pop().Interface().(Entry).Value)

		case OpThrow:
			v := f.pop()
			if isNil(v) {
				return pc, false, p.internal("pc %d: throw of a nil error", pc)
			}

			err, ok := v.Interface().(error)
			if !ok {
				return pc, false, p.internal("pc %d: throw of %s", pc, v.Type())
			}
			return pc, false, err

		case OpRet:
			f.result = f.pop()
			return pc, true, nil

		case OpBeginTry:
			r := p.regions[in.Arg]

			returned, err := p.region(f, r)
			if err != nil || returned {
				return pc, returned, err
			}

			pc = r.end + 1
			continue

		case OpBeginFinally, OpBeginCatch, OpEndTry:
			return pc, false, nil

		default:
			return pc, false, p.internal("pc %d: unknown opcode %d", pc, in.Op)
		}

		pc++
	}
}

func (p *Program) region(f *frame, r *region) (returned bool, err error) {
	base := len(f.stack)

	if r.kind == OpBeginFinally {
		defer func() {
			f.stack = f.stack[:base]

			if _, _, ferr := p.exec(f, r.handler+1); err == nil {
				err = ferr
			}
		}()

		_, returned, err = p.exec(f, r.begin+1)
		return returned, err
	}

	returned, err = p.protect(func() (bool, error) {
		_, returned, err := p.exec(f, r.begin+1)
		return returned, err
	})
	if err == nil {
		return returned, nil
	}

	target := reflect.New(r.catch)
	if !errors.As(err, target.Interface()) {
		return false, err
	}

	f.stack = f.stack[:base]
	f.push(target.Elem())

	_, returned, err = p.exec(f, r.handler+1)

	return returned, err
}

func (p *Program) internal(format string, args ...any) error {
	return errors.New(errors.PhaseMap, errors.KindInternal).
		Detail("routine %s: %s", p.name, fmt.Sprintf(format, args...)).
		Build()
}

func (f *frame) push(v reflect.Value) {
	f.stack = append(f.stack, v)
}

func (f *frame) pop() reflect.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]

	return v
}

// coerce makes v storable in a slot of type t. An invalid value becomes the
// zero value of t.
func coerce(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}

	if v.Type() == t {
		return v, nil
	}

	if v.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	}

	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
}

func deref(v reflect.Value) (reflect.Value, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, fmt.Errorf("nil %s", v.Type())
		}
		v = v.Elem()
	}

	return v, nil
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func equal(a, b reflect.Value) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if a.Type() != b.Type() {
		if a.Kind() != b.Kind() || !b.Type().ConvertibleTo(a.Type()) {
			return false
		}
		b = b.Convert(a.Type())
	}

	return a.Comparable() && a.Equal(b)
}

func toInt(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(v.Uint())
	default:
		panic(fmt.Sprintf("%s is not an integer", describe(v)))
	}
}

func iterator(v reflect.Value) Iterator {
	return v.Interface().(Iterator)
}

func describe(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}

	return v.Type().String()
}
