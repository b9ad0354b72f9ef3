package primitive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/options"
	"mtb-mapper/primitive"
)

type FooStringEnum string
type BarStringEnum string
type Level int

func (e BarStringEnum) IsValid() bool { return e == "bar" || e == "baz" }

func (l Level) String() string { return [...]string{"low", "mid", "high"}[l] }

func convert[S, D any](t *testing.T, allowed options.CategoryEnum, src S) (D, error) {
	t.Helper()

	fn, ok := primitive.Converter(reflect.TypeFor[S](), reflect.TypeFor[D](), allowed)
	require.True(t, ok, "conversion %T -> %T must be allowed", src, *new(D))

	out, err := fn(reflect.ValueOf(src))
	if err != nil {
		var zero D
		return zero, err
	}

	return out.Interface().(D), nil
}

func TestConverterAllowed(t *testing.T) {
	t.Parallel()

	_, ok := primitive.Converter(reflect.TypeFor[int](), reflect.TypeFor[string](), options.CategoryNone)
	assert.False(t, ok, "nothing is allowed without categories")

	_, ok = primitive.Converter(reflect.TypeFor[int64](), reflect.TypeFor[int8](), options.CategorySafeNumber)
	assert.False(t, ok, "narrowing is not safe")

	_, ok = primitive.Converter(reflect.TypeFor[int64](), reflect.TypeFor[int8](), options.CategoryUnsafeNumber)
	assert.True(t, ok)

	_, ok = primitive.Converter(reflect.TypeFor[[]int](), reflect.TypeFor[string](), options.CategoryAll)
	assert.False(t, ok, "only simple types are converted")
}

func TestConverterNumbers(t *testing.T) {
	t.Parallel()

	i64, err := convert[int32, int64](t, options.CategorySafeNumber, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), i64)

	s, err := convert[uint16, string](t, options.CategoryTextNumber, 65535)
	require.NoError(t, err)
	assert.Equal(t, "65535", s)

	f, err := convert[string, float32](t, options.CategoryTextNumber, "1.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 1e-9)

	_, err = convert[string, int8](t, options.CategoryTextNumber, "300")
	require.Error(t, err, "out of range for int8")
}

func TestConverterBool(t *testing.T) {
	t.Parallel()

	b, err := convert[int, bool](t, options.CategoryNumericBool, 1)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = convert[int, bool](t, options.CategoryNumericBool, 2)
	require.Error(t, err)

	n, err := convert[bool, uint8](t, options.CategoryNumericBool, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), n)

	b, err = convert[string, bool](t, options.CategoryTextualBool, "Off")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = convert[string, bool](t, options.CategoryTextualBool, "maybe")
	require.Error(t, err)
}

func TestConverterTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	s, err := convert[time.Time, string](t, options.CategoryDatetime, ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:00Z", s)

	back, err := convert[string, time.Time](t, options.CategoryDatetime, s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))

	unix, err := convert[time.Time, int64](t, options.CategoryTimestamp, ts)
	require.NoError(t, err)
	assert.Equal(t, ts.Unix(), unix)

	d, err := convert[string, time.Duration](t, options.CategoryDuration, "2h45m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+45*time.Minute, d)

	ns, err := convert[time.Duration, int64](t, options.CategoryNanoseconds, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(time.Millisecond), ns)

	sec, err := convert[time.Duration, float64](t, options.CategorySeconds, 1500*time.Millisecond)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, sec, 1e-9)
}

func TestConverterEnums(t *testing.T) {
	t.Parallel()

	bar, err := convert[FooStringEnum, BarStringEnum](t, options.CategoryEnumString, "bar")
	require.NoError(t, err)
	assert.Equal(t, BarStringEnum("bar"), bar)

	_, err = convert[FooStringEnum, BarStringEnum](t, options.CategoryEnumString, "nope")
	require.Error(t, err, "IsValid rejects unknown values")

	s, err := convert[Level, string](t, options.CategoryEnumString, Level(2))
	require.NoError(t, err)
	assert.Equal(t, "high", s)

	foo, err := convert[string, FooStringEnum](t, options.CategoryEnumString, "anything")
	require.NoError(t, err)
	assert.Equal(t, FooStringEnum("anything"), foo)
}
