package flow_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
	"mtb-mapper/internal/flow"
)

var intT = reflect.TypeFor[int]()

func compile(t *testing.T, b *emit.Builder) *emit.Program {
	t.Helper()

	p, err := b.Compile()
	require.NoError(t, err)

	return p
}

func ldloc(l emit.Local) flow.Emitter {
	return func(b *emit.Builder) { b.EmitLocal(emit.OpLdLoc, l) }
}

func stloc(l emit.Local) flow.Emitter {
	return func(b *emit.Builder) { b.EmitLocal(emit.OpStLoc, l) }
}

func seq(es ...flow.Emitter) flow.Emitter {
	return func(b *emit.Builder) {
		for _, e := range es {
			e(b)
		}
	}
}

func constant(v any) flow.Emitter {
	return func(b *emit.Builder) { b.EmitConst(v) }
}

func ExampleFor() {
	b := emit.NewBuilder("countdown", intT)
	acc := b.DeclareLocal(reflect.TypeFor[string](), "acc")

	concat := emit.FuncOf("concat", reflect.ValueOf(func(s string, i int) string {
		return fmt.Sprintf("%s%d ", s, i)
	}))

	flow.For(b, 5, 0, -2, func(b *emit.Builder, i emit.Local) {
		b.EmitLocal(emit.OpLdLoc, acc)
		b.EmitLocal(emit.OpLdLoc, i)
		b.EmitCall(concat)
		b.EmitLocal(emit.OpStLoc, acc)
	})
	b.EmitLocal(emit.OpLdLoc, acc)
	b.Emit(emit.OpRet)

	p, _ := b.Compile()
	out, _ := p.Run(0, reflect.ValueOf(0))
	fmt.Println(out)
	// Output: 5 3 1
}

func TestForZeroStep(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("zero", intT)
	flow.For(b, 0, 10, 0, func(*emit.Builder, emit.Local) {})
	b.EmitArg(0)
	b.Emit(emit.OpRet)

	_, err := b.Compile()
	require.ErrorContains(t, err, "zero step")
}

func TestIf(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("sign", intT)
	flow.If(b,
		func(b *emit.Builder) {
			b.EmitArg(0)
			b.EmitInt(0)
			b.Emit(emit.OpClt)
		},
		func(b *emit.Builder) {
			b.EmitConst("negative")
			b.Emit(emit.OpRet)
		},
	)
	flow.If(b,
		func(b *emit.Builder) {
			b.EmitArg(0)
			b.EmitInt(0)
			b.Emit(emit.OpCeq)
		},
		func(b *emit.Builder) {
			b.EmitConst("zero")
			b.Emit(emit.OpRet)
		},
		func(b *emit.Builder) {
			b.EmitConst("positive")
			b.Emit(emit.OpRet)
		},
	)

	p := compile(t, b)
	for in, want := range map[int]string{-3: "negative", 0: "zero", 8: "positive"} {
		out, err := p.Run(0, reflect.ValueOf(in))
		require.NoError(t, err)
		assert.Equal(t, want, out.Interface())
	}
}

func TestWhileAndDoWhile(t *testing.T) {
	t.Parallel()

	// counts the iterations of a loop whose condition is false from the start
	build := func(do bool) *emit.Program {
		b := emit.NewBuilder("loops", intT)
		n := b.DeclareLocal(intT, "n")

		cond := func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, n)
			b.EmitArg(0)
			b.Emit(emit.OpClt)
		}
		body := func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, n)
			b.EmitInt(1)
			b.Emit(emit.OpAdd)
			b.EmitLocal(emit.OpStLoc, n)
		}

		if do {
			flow.DoWhile(b, body, cond)
		} else {
			flow.While(b, cond, body)
		}

		b.EmitLocal(emit.OpLdLoc, n)
		b.Emit(emit.OpRet)

		return compile(t, b)
	}

	for _, tc := range []struct {
		do       bool
		arg, out int
	}{
		{do: false, arg: 0, out: 0},
		{do: true, arg: 0, out: 1},
		{do: false, arg: 4, out: 4},
		{do: true, arg: 4, out: 4},
	} {
		out, err := build(tc.do).Run(0, reflect.ValueOf(tc.arg))
		require.NoError(t, err)
		assert.Equal(t, tc.out, out.Interface(), "do=%v arg=%d", tc.do, tc.arg)
	}
}

type Color string

func TestSwitch(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("hex", reflect.TypeFor[Color]())
	out := b.DeclareLocal(reflect.TypeFor[string](), "out")

	flow.Switch(b,
		func(b *emit.Builder) { b.EmitArg(0) },
		[]flow.Case{
			{Value: Color("red"), Body: seq(constant("#f00"), stloc(out))},
			{Value: Color("green"), Body: seq(constant("#0f0"), stloc(out))},
		},
		seq(constant("unknown"), stloc(out)),
	)
	b.EmitLocal(emit.OpLdLoc, out)
	b.Emit(emit.OpRet)

	p := compile(t, b)
	for in, want := range map[Color]string{"red": "#f00", "green": "#0f0", "blue": "unknown"} {
		v, err := p.Run(0, reflect.ValueOf(in))
		require.NoError(t, err)
		assert.Equal(t, want, v.Interface())
	}
}

type sentinel struct{ msg string }

func (s *sentinel) Error() string { return s.msg }

func TestTryCatch(t *testing.T) {
	t.Parallel()

	raise := emit.Native("raise", func(v reflect.Value) (reflect.Value, error) {
		switch v.Int() {
		case 1:
			return v, &sentinel{msg: "caught"}
		case 2:
			return v, fmt.Errorf("other")
		}
		return v, nil
	})

	b := emit.NewBuilder("catch", intT)
	out := b.DeclareLocal(reflect.TypeFor[string](), "out")

	flow.TryCatch(b, reflect.TypeFor[*sentinel](),
		func(b *emit.Builder) {
			b.EmitArg(0)
			b.EmitCall(raise)
			b.Emit(emit.OpPop)
			b.EmitConst("ok")
			b.EmitLocal(emit.OpStLoc, out)
		},
		func(b *emit.Builder, err emit.Local) {
			b.EmitLocal(emit.OpLdLoc, err)
			b.EmitCall(emit.FuncOf("message", reflect.ValueOf(func(s *sentinel) string { return s.msg })))
			b.EmitLocal(emit.OpStLoc, out)
		})
	b.EmitLocal(emit.OpLdLoc, out)
	b.Emit(emit.OpRet)

	p := compile(t, b)

	v, err := p.Run(0, reflect.ValueOf(0))
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Interface())

	v, err = p.Run(0, reflect.ValueOf(1))
	require.NoError(t, err)
	assert.Equal(t, "caught", v.Interface())

	_, err = p.Run(0, reflect.ValueOf(2))
	require.EqualError(t, err, "other", "a non-matching kind passes through")
}

// tracked is an Enumerable that counts how often its iterators are closed.
type tracked struct {
	items  []int
	closed *int
}

func (s tracked) Enumerate() emit.Iterator {
	return &trackedIter{items: s.items, pos: -1, closed: s.closed}
}

type trackedIter struct {
	items  []int
	pos    int
	closed *int
}

func (it *trackedIter) Next() bool {
	it.pos++
	return it.pos < len(it.items)
}

func (it *trackedIter) Current() reflect.Value { return reflect.ValueOf(it.items[it.pos]) }

func (it *trackedIter) Close() error {
	*it.closed++
	return nil
}

func TestForEachIndexedReleasesIterator(t *testing.T) {
	t.Parallel()

	check := emit.Native("check", func(v reflect.Value) (reflect.Value, error) {
		switch v.Int() {
		case 13:
			return v, fmt.Errorf("unlucky")
		case 666:
			panic("cursed")
		}
		return v, nil
	})

	// returns the sum of element*index
	b := emit.NewBuilder("weighted", reflect.TypeFor[tracked]())
	acc := b.DeclareLocal(intT, "acc")

	flow.ForEachIndexed(b, intT,
		func(b *emit.Builder) { b.EmitArg(0) },
		func(b *emit.Builder, elem, index emit.Local) {
			b.EmitLocal(emit.OpLdLoc, elem)
			b.EmitCall(check)
			b.Emit(emit.OpPop)

			b.EmitLocal(emit.OpLdLoc, acc)
			b.EmitLocal(emit.OpLdLoc, elem)
			b.EmitLocal(emit.OpLdLoc, index)
			b.EmitCall(emit.FuncOf("mul", reflect.ValueOf(func(a, b int) int { return a * b })))
			b.Emit(emit.OpAdd)
			b.EmitLocal(emit.OpStLoc, acc)
		})
	b.EmitLocal(emit.OpLdLoc, acc)
	b.Emit(emit.OpRet)

	p := compile(t, b)

	cases := []struct {
		name  string
		items []int
		sum   int
		err   error
	}{
		{name: "completes", items: []int{5, 6, 7}, sum: 6 + 14},
		{name: "empty", items: nil},
		{name: "error", items: []int{1, 13, 2}, err: fmt.Errorf("unlucky")},
		{name: "panic", items: []int{666}, err: errors.ErrPanic},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var closed int
			out, err := p.Run(0, reflect.ValueOf(tracked{items: tc.items, closed: &closed}))
			assert.Equal(t, 1, closed, "iterator is closed exactly once")

			switch {
			case tc.err == nil:
				require.NoError(t, err)
				assert.Equal(t, tc.sum, out.Interface())
			case errors.Is(tc.err, errors.ErrPanic):
				require.ErrorIs(t, err, errors.ErrPanic)
			default:
				require.EqualError(t, err, tc.err.Error())
			}
		})
	}
}

func TestForEachIndexedOverSlice(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("indexes", reflect.TypeFor[[]string]())
	out := b.DeclareLocal(reflect.TypeFor[[]int](), "out")

	b.EmitArg(0)
	b.Emit(emit.OpLen)
	b.EmitType(emit.OpMakeSlice, reflect.TypeFor[[]int]())
	b.EmitLocal(emit.OpStLoc, out)

	flow.ForEachIndexed(b, reflect.TypeFor[string](),
		func(b *emit.Builder) { b.EmitArg(0) },
		func(b *emit.Builder, elem, index emit.Local) {
			b.EmitLocal(emit.OpLdLoc, out)
			b.EmitLocal(emit.OpLdLoc, index)
			b.EmitLocal(emit.OpLdLoc, index)
			b.Emit(emit.OpStElem)
		})
	b.EmitLocal(emit.OpLdLoc, out)
	b.Emit(emit.OpRet)

	v, err := compile(t, b).Run(0, reflect.ValueOf([]string{"a", "b", "c"}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, v.Interface())
}
