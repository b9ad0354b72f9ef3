package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum classifies simple types, the types whose values are copied as
// a whole and converted by the conversion categories.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named type over any number, boolean or string

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// kindTypes maps every exact simple type to its kind. Named types over
// these are KindPrimitiveEnum.
var kindTypes = map[reflect.Type]KindEnum{
	reflect.TypeFor[int]():           KindInt,
	reflect.TypeFor[int8]():          KindInt8,
	reflect.TypeFor[int16]():         KindInt16,
	reflect.TypeFor[int32]():         KindInt32,
	reflect.TypeFor[int64]():         KindInt64,
	reflect.TypeFor[uint]():          KindUint,
	reflect.TypeFor[uint8]():         KindUint8,
	reflect.TypeFor[uint16]():        KindUint16,
	reflect.TypeFor[uint32]():        KindUint32,
	reflect.TypeFor[uint64]():        KindUint64,
	reflect.TypeFor[float32]():       KindFloat32,
	reflect.TypeFor[float64]():       KindFloat64,
	reflect.TypeFor[complex64]():     KindComplex64,
	reflect.TypeFor[complex128]():    KindComplex128,
	reflect.TypeFor[bool]():          KindBool,
	reflect.TypeFor[string]():        KindString,
	reflect.TypeFor[time.Time]():     KindTime,
	reflect.TypeFor[time.Duration](): KindDuration,
}

// IsNumber reports integer and floating-point kinds. Complex numbers are
// simple but take part in no conversion.
func (k KindEnum) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k KindEnum) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k KindEnum) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k KindEnum) IsSigned() bool {
	return KindInt <= k && k <= KindInt64
}

func (k KindEnum) IsUnsigned() bool {
	return KindUint <= k && k <= KindUint64
}

// Bits returns the size of a number kind in bits. It panics for other kinds.
func (k KindEnum) Bits() int {
	if !k.IsNumber() {
		panic("bits requested for a non-number kind " + k.String())
	}

	for t, kind := range kindTypes {
		if kind == k {
			return t.Bits()
		}
	}

	panic("unreachable")
}

// FromReflectType returns the kind of a simple type, or 0 when values of
// rtype are not simple.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	if k, ok := kindTypes[rtype]; ok {
		return k
	}

	switch rtype.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return KindPrimitiveEnum
	default:
		return 0
	}
}

// IsSimple reports whether values of rtype are copied as a whole: booleans,
// numbers, strings, named types over them, time.Time and time.Duration.
func IsSimple(rtype reflect.Type) bool {
	return FromReflectType(rtype) != 0
}
