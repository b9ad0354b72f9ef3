package emit_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
)

func TestVerifierRejects(t *testing.T) {
	t.Parallel()

	intT := reflect.TypeFor[int]()

	cases := map[string]struct {
		build func(b *emit.Builder)
		msg   string
	}{
		"empty routine": {
			build: func(*emit.Builder) {},
			msg:   "has no instructions",
		},
		"stack underflow": {
			build: func(b *emit.Builder) {
				b.Emit(emit.OpAdd)
				b.Emit(emit.OpRet)
			},
			msg: "needs 2 operands",
		},
		"falls off the end": {
			build: func(b *emit.Builder) {
				b.EmitArg(0)
				b.Emit(emit.OpPop)
			},
			msg: "falls off the end",
		},
		"unbalanced return": {
			build: func(b *emit.Builder) {
				b.EmitArg(0)
				b.EmitArg(0)
				b.Emit(emit.OpRet)
			},
			msg: "return with 2 values",
		},
		"depth mismatch at merge": {
			build: func(b *emit.Builder) {
				join := b.DefineLabel()
				b.EmitConst(true)
				b.EmitBranch(emit.OpBrTrue, join)
				b.EmitArg(0)
				b.MarkLabel(join)
				b.EmitArg(0)
				b.Emit(emit.OpRet)
			},
			msg: "does not match",
		},
		"try with operands": {
			build: func(b *emit.Builder) {
				b.EmitArg(0)
				b.BeginTry()
				b.BeginFinally()
				b.EndTry()
				b.Emit(emit.OpRet)
			},
			msg: "try region entered with 1",
		},
		"branch out of a try region": {
			build: func(b *emit.Builder) {
				out := b.DefineLabel()
				b.BeginTry()
				b.EmitBranch(emit.OpBr, out)
				b.BeginFinally()
				b.EndTry()
				b.MarkLabel(out)
				b.EmitArg(0)
				b.Emit(emit.OpRet)
			},
			msg: "leaves or enters a try region",
		},
		"return inside a try region": {
			build: func(b *emit.Builder) {
				b.BeginTry()
				b.EmitArg(0)
				b.Emit(emit.OpRet)
				b.BeginFinally()
				b.EndTry()
				b.EmitArg(0)
				b.Emit(emit.OpRet)
			},
			msg: "return inside a try region",
		},
		"unclosed region": {
			build: func(b *emit.Builder) {
				b.BeginTry()
				b.EmitArg(0)
				b.Emit(emit.OpRet)
			},
			msg: "not closed",
		},
		"unmarked label": {
			build: func(b *emit.Builder) {
				b.EmitBranch(emit.OpBr, b.DefineLabel())
			},
			msg: "unmarked label",
		},
		"operand opcode through Emit": {
			build: func(b *emit.Builder) {
				b.Emit(emit.OpLdArg)
			},
			msg: "needs an operand",
		},
		"undeclared local": {
			build: func(b *emit.Builder) {
				b.EmitLocal(emit.OpLdLoc, emit.Local(3))
			},
			msg: "local 3 is not declared",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := emit.NewBuilder(name, intT)
			tc.build(b)

			_, err := b.Compile()
			require.ErrorIs(t, err, errors.ErrInternal)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestVerifierUnreachableCode(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("dead", reflect.TypeFor[int]())
	b.EmitArg(0)
	b.Emit(emit.OpRet)
	b.Emit(emit.OpAdd) // never reached

	_, err := b.Compile()
	require.NoError(t, err)
}

func TestCallerFailureIsKept(t *testing.T) {
	t.Parallel()

	b := emit.NewBuilder("failed", reflect.TypeFor[int]())
	b.Fail(errors.Unsupported(errors.PhasePlan, nil, "no way"))
	b.EmitArg(0)
	b.Emit(emit.OpRet)

	_, err := b.Compile()
	require.ErrorIs(t, err, errors.ErrUnsupportedConversion)
}
