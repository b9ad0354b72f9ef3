package flow

import (
	"fmt"
	"reflect"

	"mtb-mapper/internal/emit"
)

// Emitter appends instructions to b.
type Emitter func(b *emit.Builder)

// Case is a Switch arm. Value is compared with the switch value by equality.
type Case struct {
	Value any
	Body  Emitter
}

var intType = reflect.TypeFor[int]()

// If emits cond, which must push a bool, followed by then or the optional
// else branch.
func If(b *emit.Builder, cond, then Emitter, els ...Emitter) {
	elseLabel, end := b.DefineLabel(), b.DefineLabel()

	cond(b)
	b.EmitBranch(emit.OpBrFalse, elseLabel)
	then(b)
	b.EmitBranch(emit.OpBr, end)

	b.MarkLabel(elseLabel)
	for _, e := range els {
		e(b)
	}

	b.MarkLabel(end)
}

// While runs body as long as cond pushes true.
func While(b *emit.Builder, cond, body Emitter) {
	top, done := b.DefineLabel(), b.DefineLabel()

	b.MarkLabel(top)
	cond(b)
	b.EmitBranch(emit.OpBrFalse, done)
	body(b)
	b.EmitBranch(emit.OpBr, top)
	b.MarkLabel(done)
}

// DoWhile runs body once, then again as long as cond pushes true.
func DoWhile(b *emit.Builder, body, cond Emitter) {
	top := b.DefineLabel()

	b.MarkLabel(top)
	body(b)
	cond(b)
	b.EmitBranch(emit.OpBrTrue, top)
}

// For counts i from start towards end by step. A positive step loops while
// i < end, a negative one while i > end.
func For(b *emit.Builder, start, end, step int, body func(b *emit.Builder, i emit.Local)) {
	if step == 0 {
		b.Fail(fmt.Errorf("for loop with a zero step"))
		return
	}

	cmp := emit.OpClt
	if step < 0 {
		cmp = emit.OpCgt
	}

	i := b.DeclareLocal(intType, "i")
	b.EmitInt(start)
	b.EmitLocal(emit.OpStLoc, i)

	While(b,
		func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, i)
			b.EmitInt(end)
			b.Emit(cmp)
		},
		func(b *emit.Builder) {
			body(b, i)
			increment(b, i, step)
		})
}

// ForEachIndexed iterates the sequence pushed by load. The current element
// is stored in a local of type elem and its zero-based position in index.
// The iterator is closed on every exit path, including errors and panics.
func ForEachIndexed(b *emit.Builder, elem reflect.Type, load Emitter, body func(b *emit.Builder, elem, index emit.Local)) {
	it := b.DeclareLocal(emit.IteratorType, "it")
	cur := b.DeclareLocal(elem, "elem")
	idx := b.DeclareLocal(intType, "index")

	load(b)
	b.Emit(emit.OpGetIter)
	b.EmitLocal(emit.OpStLoc, it)
	b.EmitInt(0)
	b.EmitLocal(emit.OpStLoc, idx)

	TryFinally(b,
		func(b *emit.Builder) {
			While(b,
				func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, it)
					b.Emit(emit.OpIterNext)
				},
				func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, it)
					b.Emit(emit.OpIterCurrent)
					b.EmitLocal(emit.OpStLoc, cur)
					body(b, cur, idx)
					increment(b, idx, 1)
				})
		},
		func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, it)
			b.Emit(emit.OpIterClose)
		})
}

// Switch evaluates value once and runs the body of the first case equal to
// it, or def when none matches.
func Switch(b *emit.Builder, value Emitter, cases []Case, def ...Emitter) {
	end := b.DefineLabel()

	value(b)
	for _, c := range cases {
		next := b.DefineLabel()

		b.Emit(emit.OpDup)
		b.EmitConst(c.Value)
		b.Emit(emit.OpCeq)
		b.EmitBranch(emit.OpBrFalse, next)
		b.Emit(emit.OpPop)
		if c.Body != nil {
			c.Body(b)
		}
		b.EmitBranch(emit.OpBr, end)
		b.MarkLabel(next)
	}

	b.Emit(emit.OpPop)
	for _, d := range def {
		d(b)
	}

	b.MarkLabel(end)
}

// TryFinally runs finally after try, whether try completes, raises an error
// or panics.
func TryFinally(b *emit.Builder, try, finally Emitter) {
	b.BeginTry()
	try(b)
	b.BeginFinally()
	finally(b)
	b.EndTry()
}

// TryCatch runs catch when try raises an error whose chain holds a value of
// type kind (nil means any error). The matched value is stored in err.
// Other errors propagate unchanged.
func TryCatch(b *emit.Builder, kind reflect.Type, try Emitter, catch func(b *emit.Builder, err emit.Local)) {
	if kind == nil {
		kind = reflect.TypeFor[error]()
	}

	b.BeginTry()
	try(b)
	b.BeginCatch(kind)
	err := b.DeclareLocal(kind, "err")
	b.EmitLocal(emit.OpStLoc, err)
	catch(b, err)
	b.EndTry()
}

func increment(b *emit.Builder, l emit.Local, step int) {
	b.EmitLocal(emit.OpLdLoc, l)
	b.EmitInt(step)
	b.Emit(emit.OpAdd)
	b.EmitLocal(emit.OpStLoc, l)
}
