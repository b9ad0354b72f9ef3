package match

import (
	"go/types"

	"mtb-mapper/internal/common"
)

// Verdict is the static counterpart of the planner's decision for a field
// whose source and target types are known through go/types.
type Verdict int

const (
	// VerdictIncompatible - no strategy maps the source to the target.
	VerdictIncompatible Verdict = iota
	// VerdictNeedsConversion - simple types that differ; a conversion
	// category or a transform is required.
	VerdictNeedsConversion
	// VerdictStructural - mapped by a nested, pointer, collection or
	// dictionary routine.
	VerdictStructural
	// VerdictIdentical - the types are identical.
	VerdictIdentical
)

// String returns a human-readable verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictIncompatible:
		return "incompatible"
	case VerdictNeedsConversion:
		return "needs_conversion"
	case VerdictStructural:
		return "structural"
	case VerdictIdentical:
		return "identical"
	default:
		return common.UnknownStr
	}
}

// Compatibility classifies how a value of type source reaches a field of
// type target.
func Compatibility(source, target types.Type) Verdict {
	if types.Identical(source, target) {
		return VerdictIdentical
	}

	sp, sPtr := source.Underlying().(*types.Pointer)
	tp, tPtr := target.Underlying().(*types.Pointer)

	if sPtr || tPtr {
		if sPtr {
			source = sp.Elem()
		}
		if tPtr {
			target = tp.Elem()
		}

		if isPointer(source) || isPointer(target) {
			return VerdictIncompatible
		}

		if Compatibility(source, target) == VerdictIncompatible {
			return VerdictIncompatible
		}

		return VerdictStructural
	}

	switch tu := target.Underlying().(type) {
	case *types.Interface, *types.Signature, *types.Chan:
		return VerdictIncompatible

	case *types.Struct:
		if IsSimple(target) {
			break
		}

		if _, ok := source.Underlying().(*types.Struct); ok && !IsSimple(source) {
			return VerdictStructural
		}

		return VerdictIncompatible

	case *types.Slice, *types.Array:
		se, ok := elemOf(source)
		if !ok {
			return VerdictIncompatible
		}

		te, _ := elemOf(tu)

		return nested(se, te)

	case *types.Map:
		sm, ok := source.Underlying().(*types.Map)
		if !ok {
			return VerdictIncompatible
		}

		return min(nested(sm.Key(), tu.Key()), nested(sm.Elem(), tu.Elem()))
	}

	if IsSimple(source) && IsSimple(target) {
		return VerdictNeedsConversion
	}

	return VerdictIncompatible
}

// IsSimple reports booleans, numbers, strings, time.Time and time.Duration,
// named or not.
func IsSimple(t types.Type) bool {
	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && (obj.Name() == "Time" || obj.Name() == "Duration") {
			return true
		}
	}

	basic, ok := t.Underlying().(*types.Basic)

	return ok && basic.Info()&(types.IsBoolean|types.IsNumeric|types.IsString) != 0
}

// nested is the verdict of a container whose element, key or value pair
// has the given types. Containers are never copied as a whole.
func nested(source, target types.Type) Verdict {
	return min(Compatibility(source, target), VerdictStructural)
}

func elemOf(t types.Type) (types.Type, bool) {
	switch u := t.Underlying().(type) {
	case *types.Slice:
		return u.Elem(), true
	case *types.Array:
		return u.Elem(), true
	default:
		return nil, false
	}
}

func isPointer(t types.Type) bool {
	_, ok := t.Underlying().(*types.Pointer)
	return ok
}
