package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mtb-mapper/options"
	"mtb-mapper/primitive"
)

func TestSafeNumberPairs(t *testing.T) {
	t.Parallel()

	safe := primitive.AllowedPairs(options.CategorySafeNumber)
	unsafe := primitive.AllowedPairs(options.CategoryUnsafeNumber)

	tests := []struct {
		from, to primitive.KindEnum
		safe     bool
	}{
		{primitive.KindInt8, primitive.KindInt, true},
		{primitive.KindInt, primitive.KindInt64, true},
		{primitive.KindInt64, primitive.KindInt, false},
		{primitive.KindInt, primitive.KindInt32, false},
		{primitive.KindUint8, primitive.KindInt16, true},
		{primitive.KindUint16, primitive.KindInt16, false},
		{primitive.KindUint32, primitive.KindInt, false},
		{primitive.KindUint32, primitive.KindInt64, true},
		{primitive.KindInt8, primitive.KindUint64, false},
		{primitive.KindUint16, primitive.KindFloat32, true},
		{primitive.KindInt32, primitive.KindFloat32, false},
		{primitive.KindInt32, primitive.KindFloat64, true},
		{primitive.KindInt64, primitive.KindFloat64, false},
		{primitive.KindFloat32, primitive.KindFloat64, true},
		{primitive.KindFloat64, primitive.KindFloat32, false},
		{primitive.KindFloat32, primitive.KindInt64, false},
	}

	for _, tt := range tests {
		pair := primitive.ConversionPair{From: tt.from, To: tt.to}

		_, isSafe := safe[pair]
		_, isUnsafe := unsafe[pair]

		assert.Equal(t, tt.safe, isSafe, "%s -> %s", tt.from, tt.to)
		assert.NotEqual(t, isSafe, isUnsafe, "%s -> %s is in exactly one number category", tt.from, tt.to)
	}
}

func TestCategoryPairs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, primitive.AllowedPairs(options.CategoryNone))
	assert.Empty(t, primitive.AllowedPairs(options.CategoryUnsafeArray))

	nanos := primitive.AllowedPairs(options.CategoryNanoseconds)
	assert.Contains(t, nanos, primitive.ConversionPair{From: primitive.KindInt64, To: primitive.KindDuration})
	assert.NotContains(t, nanos, primitive.ConversionPair{From: primitive.KindUint64, To: primitive.KindDuration})

	text := primitive.AllowedPairs(options.CategoryTextNumber)
	assert.Contains(t, text, primitive.ConversionPair{From: primitive.KindString, To: primitive.KindFloat32})
	assert.NotContains(t, text, primitive.ConversionPair{From: primitive.KindString, To: primitive.KindBool})
}
