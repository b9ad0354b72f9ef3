package primitive

import (
	"maps"

	"mtb-mapper/options"
)

// ConversionPair is an ordered pair of kinds.
type ConversionPair struct {
	From, To KindEnum
}

type pairSet = map[ConversionPair]struct{}

// conversionPairs holds the kind pairs each category enables.
// CategoryUnsafeArray enables no kind pair; it changes how sequences fit
// into arrays.
var conversionPairs = map[options.CategoryEnum]pairSet{
	options.CategorySafeNumber:   numberPairs(safeNumber),
	options.CategoryUnsafeNumber: numberPairs(func(from, to KindEnum) bool { return !safeNumber(from, to) }),
	options.CategoryTextNumber:   both(KindString, KindEnum.IsNumber),
	options.CategoryNumericBool:  both(KindBool, KindEnum.IsInteger),
	options.CategoryTextualBool:  both(KindBool, is(KindString)),
	options.CategoryDatetime:     both(KindTime, is(KindString)),
	options.CategoryTimestamp:    both(KindTime, KindEnum.IsInteger),
	options.CategoryDuration:     both(KindDuration, is(KindString)),
	options.CategoryNanoseconds: both(KindDuration, func(k KindEnum) bool {
		return k.IsInteger() && k != KindUint64
	}),
	options.CategorySeconds: both(KindDuration, KindEnum.IsFloat),
	options.CategoryEnumString: {
		{KindString, KindPrimitiveEnum}:        {},
		{KindPrimitiveEnum, KindString}:        {},
		{KindPrimitiveEnum, KindPrimitiveEnum}: {},
	},
}

func is(kind KindEnum) func(KindEnum) bool {
	return func(k KindEnum) bool { return k == kind }
}

// both pairs kind with every kind matching pred, in both directions.
func both(kind KindEnum, pred func(KindEnum) bool) pairSet {
	res := pairSet{}

	for k := KindEnum(1); int(k) < KindTotal; k++ {
		if pred(k) {
			res[ConversionPair{kind, k}] = struct{}{}
			res[ConversionPair{k, kind}] = struct{}{}
		}
	}

	return res
}

// numberPairs returns the number kind pairs accepted by keep.
func numberPairs(keep func(from, to KindEnum) bool) pairSet {
	res := pairSet{}

	for from := KindEnum(1); int(from) < KindTotal; from++ {
		for to := KindEnum(1); int(to) < KindTotal; to++ {
			if from.IsNumber() && to.IsNumber() && keep(from, to) {
				res[ConversionPair{from, to}] = struct{}{}
			}
		}
	}

	return res
}

// safeNumber reports whether every value of from is exactly representable
// in to. int and uint count as 64 bits when read and as 32 bits when
// written, so the result holds on every platform.
func safeNumber(from, to KindEnum) bool {
	if from == to {
		return true
	}

	fromBits, toBits := readBits(from), writeBits(to)

	switch {
	case from.IsFloat():
		return to.IsFloat() && toBits >= fromBits
	case to.IsFloat():
		return magnitude(from) <= mantissa(to)
	case from.IsSigned():
		return to.IsSigned() && toBits >= fromBits
	case to.IsUnsigned():
		return toBits >= fromBits
	default:
		// unsigned to signed needs a spare bit for the sign
		return toBits > fromBits
	}
}

func readBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 64
	}

	return k.Bits()
}

func writeBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 32
	}

	return k.Bits()
}

// magnitude is the number of value bits of an integer kind.
func magnitude(k KindEnum) int {
	if k.IsSigned() {
		return readBits(k) - 1
	}

	return readBits(k)
}

func mantissa(k KindEnum) int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

// AllowedPairs returns every kind pair convertible under the allowed categories.
func AllowedPairs(allowed options.CategoryEnum) map[ConversionPair]struct{} {
	res := pairSet{}

	for category := options.CategoryEnum(1); category&options.CategoryAll > 0; category <<= 1 {
		if allowed.Has(category) {
			maps.Copy(res, conversionPairs[category])
		}
	}

	return res
}
