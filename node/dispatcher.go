package node

import (
	"reflect"

	"mtb-mapper/primitive"
)

// Dispatch classifies the pair by the shapes of its types. Pointers are
// reported before anything else; callers strip them with PtrDepthAndBase and
// dispatch the base pair.
func Dispatch(src, dst reflect.Type) DispatcherEnum {
	if src.Kind() == reflect.Ptr || dst.Kind() == reflect.Ptr {
		return DispatcherPointer
	}

	if !Constructible(dst) {
		return DispatcherInterface
	}

	dstKind := primitive.FromReflectType(dst)
	if dstKind != 0 {
		srcKind := primitive.FromReflectType(src)
		if srcKind != 0 {
			return DispatcherPrimitive
		}

		return DispatcherUnknown
	}

	if IsSequence(dst) {
		if IsSequence(src) {
			return DispatcherSlice
		}

		return DispatcherUnknown
	}

	if IsDictionary(dst) {
		if IsDictionary(src) {
			return DispatcherMap
		}

		return DispatcherUnknown
	}

	if dst.Kind() == reflect.Struct {
		if src.Kind() == reflect.Struct {
			return DispatcherStruct
		}

		return DispatcherUnknown
	}

	return DispatcherUnknown
}
