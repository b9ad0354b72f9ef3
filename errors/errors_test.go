package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairName string

func (p pairName) String() string { return string(p) }

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhasePlan,
				Kind:   KindContractViolation,
				Pair:   "store.Order -> warehouse.Order",
				Path:   []string{"Items", "[2]", "Product"},
				Detail: "cannot construct",
			},
			contains: []string{"[plan]", "contract_violation", "store.Order -> warehouse.Order", "Items[2].Product", "cannot construct"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMap,
				Kind:  KindConfiguration,
			},
			contains: []string{"[map]", "configuration"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMap,
				Kind:   KindConversion,
				Detail: "converter failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[map]", "conversion", "converter failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := NotConfigured(pairName("a -> b"))

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, &Error{Phase: PhaseMap, Kind: KindConfiguration})
	assert.NotErrorIs(t, err, &Error{Phase: PhasePlan, Kind: KindConfiguration})
	assert.NotErrorIs(t, err, ErrNameResolution)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, ErrConfiguration)

	var target *Error
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "a -> b", target.Pair)
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := ConfigurationFailed(pairName("a -> b"), cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWithPath(t *testing.T) {
	t.Parallel()

	t.Run("structured error", func(t *testing.T) {
		t.Parallel()

		base := Conversion(errors.New("bad input"), "parse failed")
		err := WithPath(WithPath(base, "[1]"), "Items")

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, []string{"Items", "[1]"}, e.Path)
		assert.Empty(t, base.Path, "original error must stay untouched")
		assert.Contains(t, err.Error(), "at Items[1]")
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom")
		err := WithPath(cause, "Name")

		assert.ErrorIs(t, err, ErrConversion)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, WithPath(nil, "Name"))
	})
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", JoinPath(nil))
	assert.Equal(t, "Meta[x].Value", JoinPath([]string{"Meta", "[x]", "Value"}))
	assert.Equal(t, "[0].Name", JoinPath([]string{"[0]", "Name"}))
}

func ExampleNew() {
	err := New(PhasePlan, KindUnsupportedConversion).
		Pair(pairName("store.Order -> warehouse.Order")).
		Path("Status").
		Detail("no conversion from %s to %s", "store.OrderStatus", "int").
		Build()

	fmt.Println(err)
	// Output:
	// [plan] unsupported_conversion (store.Order -> warehouse.Order) at Status: no conversion from store.OrderStatus to int
}
