package gen

import (
	"reflect"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
	"mtb-mapper/internal/flow"
	"mtb-mapper/node"
	"mtb-mapper/options"
)

var intType = reflect.TypeFor[int]()

// composeSequence maps the slice or array pushed by load into a new
// container of type dst and returns the local holding it. A nil slice gives
// a nil slice or a zero array.
func (r *routine) composeSequence(src, dst reflect.Type, elem *node.TypePair, load flow.Emitter) emit.Local {
	b := r.b

	in := b.DeclareLocal(src, "in")
	out := b.DeclareLocal(dst, "out")

	load(b)
	b.EmitLocal(emit.OpStLoc, in)

	// arrays are filled through a pointer, array locals are not addressable
	fill := out
	if dst.Kind() == reflect.Array {
		fill = b.DeclareLocal(reflect.PointerTo(dst), "fill")
	}

	limit := -1 // no bound on the number of elements written
	unsafe := r.allowed.Has(options.CategoryUnsafeArray)

	if dst.Kind() == reflect.Array {
		limit = dst.Len()

		if src.Kind() == reflect.Array && src.Len() > limit && !unsafe {
			b.Fail(errors.Unsupported(errors.PhaseSynthesize, r.pair,
				"%s does not fit into %s, enable %s to truncate", src, dst, options.CategoryUnsafeArray))
			return out
		}
	}

	body := func(b *emit.Builder) {
		switch dst.Kind() {
		case reflect.Slice:
			b.EmitLocal(emit.OpLdLoc, in)
			b.Emit(emit.OpLen)
			b.EmitType(emit.OpMakeSlice, dst)
			b.EmitLocal(emit.OpStLoc, out)
		default:
			b.EmitType(emit.OpNew, dst)
			b.EmitLocal(emit.OpStLoc, fill)

			if src.Kind() == reflect.Slice && !unsafe {
				r.checkOverflow(in, limit)
			}
		}

		element := func(b *emit.Builder, value flow.Emitter, index emit.Local) {
			store := func(b *emit.Builder) {
				b.EmitLocal(emit.OpLdLoc, fill)
				b.EmitLocal(emit.OpLdLoc, index)
				value(b)
				if elem != nil {
					b.EmitInvoke(r.link(*elem))
				}
				b.Emit(emit.OpStElem)
			}

			if elem != nil {
				store = protect(store, func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, index)
					b.EmitCall(annotateIndex)
				})
			}

			if limit < 0 || src.Kind() == reflect.Array {
				store(b)
				return
			}

			// extra slice elements are dropped when truncation is allowed
			flow.If(b,
				func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, index)
					b.EmitInt(limit)
					b.Emit(emit.OpClt)
				},
				store)
		}

		if src.Kind() == reflect.Array {
			n := src.Len()
			if limit >= 0 {
				n = min(n, limit)
			}

			flow.For(b, 0, n, 1, func(b *emit.Builder, i emit.Local) {
				element(b, func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, in)
					b.EmitLocal(emit.OpLdLoc, i)
					b.Emit(emit.OpLdElem)
				}, i)
			})
		} else {
			flow.ForEachIndexed(b, src.Elem(), ldloc(in), func(b *emit.Builder, cur, index emit.Local) {
				element(b, ldloc(cur), index)
			})
		}

		if fill != out {
			b.EmitLocal(emit.OpLdLoc, fill)
			b.Emit(emit.OpDeref)
			b.EmitLocal(emit.OpStLoc, out)
		}
	}

	if src.Kind() == reflect.Slice {
		flow.If(b, notNil(in), body)
	} else {
		body(b)
	}

	return out
}

// composeDictionary maps the map pushed by load into a new map of type dst
// and returns the local holding it. A nil map gives a nil map.
func (r *routine) composeDictionary(src, dst reflect.Type, key, value *node.TypePair, load flow.Emitter) emit.Local {
	b := r.b

	in := b.DeclareLocal(src, "in")
	out := b.DeclareLocal(dst, "out")

	load(b)
	b.EmitLocal(emit.OpStLoc, in)

	flow.If(b, notNil(in), func(b *emit.Builder) {
		b.EmitLocal(emit.OpLdLoc, in)
		b.Emit(emit.OpLen)
		b.EmitType(emit.OpMakeMap, dst)
		b.EmitLocal(emit.OpStLoc, out)

		flow.ForEachIndexed(b, emit.EntryType, ldloc(in), func(b *emit.Builder, entry, _ emit.Local) {
			store := func(b *emit.Builder) {
				b.EmitLocal(emit.OpLdLoc, out)

				b.EmitLocal(emit.OpLdLoc, entry)
				b.Emit(emit.OpEntryKey)
				if key != nil {
					b.EmitInvoke(r.link(*key))
				}

				b.EmitLocal(emit.OpLdLoc, entry)
				b.Emit(emit.OpEntryValue)
				if value != nil {
					b.EmitInvoke(r.link(*value))
				}

				b.Emit(emit.OpStMap)
			}

			if key != nil || value != nil {
				store = protect(store, func(b *emit.Builder) {
					b.EmitLocal(emit.OpLdLoc, entry)
					b.EmitCall(annotateKey)
				})
			}

			store(b)
		})
	})

	return out
}

// checkOverflow raises a conversion error when the slice in holds more
// than limit elements.
func (r *routine) checkOverflow(in emit.Local, limit int) {
	flow.If(r.b,
		func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, in)
			b.Emit(emit.OpLen)
			b.EmitInt(limit)
			b.Emit(emit.OpCgt)
		},
		func(b *emit.Builder) {
			b.EmitLocal(emit.OpLdLoc, in)
			b.Emit(emit.OpLen)
			b.EmitCall(arrayOverflow(limit))
			b.Emit(emit.OpThrow)
		})
}

// protect wraps try so that a raised error is rethrown after annotate,
// which receives the error on the stack and leaves the annotated one.
func protect(try, annotate flow.Emitter) flow.Emitter {
	return func(b *emit.Builder) {
		flow.TryCatch(b, nil, try, func(b *emit.Builder, err emit.Local) {
			b.EmitLocal(emit.OpLdLoc, err)
			annotate(b)
			b.Emit(emit.OpThrow)
		})
	}
}

func notNil(l emit.Local) flow.Emitter {
	return func(b *emit.Builder) {
		b.EmitLocal(emit.OpLdLoc, l)
		b.Emit(emit.OpIsNil)
		b.Emit(emit.OpNot)
	}
}
