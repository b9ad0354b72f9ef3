package gen

import (
	"reflect"

	"go.uber.org/zap"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
	"mtb-mapper/internal/flow"
	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
	"mtb-mapper/options"
)

// Linker returns the routine of a linked pair. The routine may still be
// under construction; it is only called when the program runs.
type Linker func(pair node.TypePair) emit.Callee

// Synthesizer emits one program per plan.
type Synthesizer struct {
	link    Linker
	allowed options.CategoryEnum
	logger  *zap.Logger
}

func NewSynthesizer(link Linker, allowed options.CategoryEnum, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synthesizer{link: link, allowed: allowed, logger: logger}
}

// routine carries the state of one program under construction.
type routine struct {
	*Synthesizer
	b    *emit.Builder
	pair node.TypePair
}

// Synthesize emits and verifies the program of tp.
func (s *Synthesizer) Synthesize(tp *plan.TypePlan) (*emit.Program, error) {
	r := &routine{
		Synthesizer: s,
		b:           emit.NewBuilder(tp.Pair.String(), tp.Pair.Source),
		pair:        tp.Pair,
	}

	switch tp.Kind {
	case plan.KindSimple:
		r.simple(tp)
	case plan.KindPointer:
		r.pointer(tp)
	case plan.KindObject:
		r.object(tp)
	case plan.KindSequence:
		out := r.composeSequence(tp.Pair.Source, tp.Pair.Target, tp.Element, arg0)
		r.ret(out)
	case plan.KindDictionary:
		out := r.composeDictionary(tp.Pair.Source, tp.Pair.Target, tp.Key, tp.Value, arg0)
		r.ret(out)
	default:
		return nil, errors.Unsupported(errors.PhaseSynthesize, tp.Pair, "plan kind %s", tp.Kind)
	}

	p, err := r.b.Compile()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("routine synthesized",
		zap.Stringer("pair", tp.Pair),
		zap.Stringer("kind", tp.Kind),
		zap.Int("max_stack", p.MaxStack()))

	return p, nil
}

func arg0(b *emit.Builder) { b.EmitArg(0) }

func (r *routine) ret(l emit.Local) {
	r.b.EmitLocal(emit.OpLdLoc, l)
	r.b.Emit(emit.OpRet)
}

func (r *routine) simple(tp *plan.TypePlan) {
	r.b.EmitArg(0)
	if tp.Convert != nil {
		r.b.EmitCall(primitiveCall(tp.Pair, tp.Convert))
	}
	r.b.Emit(emit.OpRet)
}

// pointer maps one pointer level around the base pair. A nil source gives
// the zero target.
func (r *routine) pointer(tp *plan.TypePlan) {
	b := r.b

	if tp.SourcePointer {
		flow.If(b,
			func(b *emit.Builder) {
				b.EmitArg(0)
				b.Emit(emit.OpIsNil)
			},
			func(b *emit.Builder) {
				b.EmitType(emit.OpLdZero, tp.Pair.Target)
				b.Emit(emit.OpRet)
			})
	}

	b.EmitArg(0)
	if tp.SourcePointer {
		b.Emit(emit.OpDeref)
	}

	if tp.Base != nil {
		b.EmitInvoke(r.link(*tp.Base))
	}

	if tp.TargetPointer {
		// always a fresh allocation, the source pointee is never shared
		b.EmitType(emit.OpBox, tp.Pair.Target.Elem())
	}

	b.Emit(emit.OpRet)
}

// object allocates the target and populates every planned property.
func (r *routine) object(tp *plan.TypePlan) {
	b := r.b

	src := b.DeclareLocal(reflect.PointerTo(tp.Pair.Source), "src")
	tgt := b.DeclareLocal(reflect.PointerTo(tp.Pair.Target), "tgt")

	b.EmitArg(0)
	b.Emit(emit.OpRef)
	b.EmitLocal(emit.OpStLoc, src)

	b.EmitType(emit.OpNew, tp.Pair.Target)
	b.EmitLocal(emit.OpStLoc, tgt)

	for i := range tp.Properties {
		prop := &tp.Properties[i]
		if prop.Strategy == plan.StrategySkip {
			continue
		}

		if !fallible(prop) {
			r.property(prop, src, tgt)
			continue
		}

		flow.TryCatch(b, nil,
			func(*emit.Builder) { r.property(prop, src, tgt) },
			func(b *emit.Builder, err emit.Local) {
				b.EmitLocal(emit.OpLdLoc, err)
				b.EmitCall(annotateField(prop.Target.Name))
				b.Emit(emit.OpThrow)
			})
	}

	b.EmitLocal(emit.OpLdLoc, tgt)
	b.Emit(emit.OpDeref)
	b.Emit(emit.OpRet)
}

// fallible reports properties whose mapping can raise an error.
func fallible(prop *plan.PropertyPlan) bool {
	return prop.Strategy != plan.StrategyDirectCopy || prop.Source.Fallible
}

// property stores the value of one target field. It starts and ends with
// an empty stack.
func (r *routine) property(prop *plan.PropertyPlan, src, tgt emit.Local) {
	b := r.b
	load := func(b *emit.Builder) { r.load(prop.Source, src) }

	store := func(value flow.Emitter) {
		b.EmitLocal(emit.OpLdLoc, tgt)
		value(b)
		b.EmitField(emit.OpStField, prop.Target.Index)
	}

	switch prop.Strategy {
	case plan.StrategyDirectCopy:
		store(load)

	case plan.StrategyConverterCall:
		r.convert(prop, load, store)

	case plan.StrategyNestedMap:
		store(func(b *emit.Builder) {
			load(b)
			b.EmitInvoke(r.link(*prop.Nested))
		})

	case plan.StrategyCollectionMap:
		out := r.composeSequence(prop.Source.Type, prop.Target.Type, prop.Element, load)
		store(ldloc(out))

	case plan.StrategyDictionaryMap:
		out := r.composeDictionary(prop.Source.Type, prop.Target.Type, prop.Key, prop.Value, load)
		store(ldloc(out))

	default:
		b.Fail(errors.Unsupported(errors.PhaseSynthesize, r.pair, "strategy %s for %s", prop.Strategy, prop.Target.Name))
	}
}

// load pushes the value of a source member read through the *S in src.
func (r *routine) load(m plan.Member, src emit.Local) {
	r.b.EmitLocal(emit.OpLdLoc, src)

	if m.IsGetter() {
		r.b.EmitCall(emit.FuncOf(m.Name, m.Getter))
		return
	}

	r.b.EmitField(emit.OpLdField, m.Index)
}

// convert calls the property converter. A false ok result leaves the
// target field untouched.
func (r *routine) convert(prop *plan.PropertyPlan, load flow.Emitter, store func(flow.Emitter)) {
	b := r.b
	conv := prop.Converter
	call := emit.FuncOf(conv.String(), conv.Fn)

	if !conv.HasBool {
		store(func(b *emit.Builder) {
			load(b)
			b.EmitCall(call)
		})

		return
	}

	val := b.DeclareLocal(conv.Dst, "val")
	ok := b.DeclareLocal(reflect.TypeFor[bool](), "ok")

	load(b)
	b.EmitCall(call)
	b.EmitLocal(emit.OpStLoc, ok)
	b.EmitLocal(emit.OpStLoc, val)

	flow.If(b, ldloc(ok), func(*emit.Builder) { store(ldloc(val)) })
}

func ldloc(l emit.Local) flow.Emitter {
	return func(b *emit.Builder) { b.EmitLocal(emit.OpLdLoc, l) }
}
