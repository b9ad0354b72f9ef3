package node_test

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/node"
)

type detailedError interface {
	error
	Detail() string
}

func full(int) (string, bool, error)            { panic("not implemented") }
func optional(*int) (*string, bool)             { panic("not implemented") }
func customError(int) (string, detailedError)   { panic("not implemented") }
func swapped(int) (string, error, bool)         { panic("not implemented") }
func noResult(int)                              { panic("not implemented") }
func twoArgs(int, int) string                   { panic("not implemented") }
func variadic(...int) string                    { panic("not implemented") }
func doublePointer(**int) string                { panic("not implemented") }
func doublePointerResult(int) (**string, error) { panic("not implemented") }

func TestParseCaster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      any
		hasBool bool
		hasErr  bool
		err     error
	}{
		{name: "plain", fn: strconv.Itoa},
		{name: "error", fn: strconv.Atoi, hasErr: true},
		{name: "bool", fn: optional, hasBool: true},
		{name: "bool and error", fn: full, hasBool: true, hasErr: true},
		{name: "custom error type", fn: customError, err: node.ErrIsNotACaster},
		{name: "swapped results", fn: swapped, err: node.ErrIsNotACaster},
		{name: "no result", fn: noResult, err: node.ErrIsNotACaster},
		{name: "two arguments", fn: twoArgs, err: node.ErrIsNotACaster},
		{name: "variadic", fn: variadic, err: node.ErrIsNotACaster},
		{name: "double pointer", fn: doublePointer, err: node.ErrDoublePointer},
		{name: "double pointer result", fn: doublePointerResult, err: node.ErrDoublePointer},
		{name: "not a function", fn: "strconv.Itoa", err: node.ErrCasterIsNotAFunction},
		{name: "nil function", fn: (func(int) string)(nil), err: node.ErrCasterIsNotAFunction},
		{name: "nil", fn: nil, err: node.ErrCasterIsNotAFunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := node.ParseCaster(tt.fn)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.hasBool, c.HasBool)
			assert.Equal(t, tt.hasErr, c.HasErr)
		})
	}
}

func TestCasterNames(t *testing.T) {
	t.Parallel()

	c, err := node.ParseCaster(full)
	require.NoError(t, err)
	assert.Equal(t, "node_test", c.PackageAlias)
	assert.Equal(t, "full", c.Name)

	c, err = node.ParseCaster(func(n int) string { return strconv.Itoa(n) })
	require.NoError(t, err)
	assert.Equal(t, "node_test", c.PackageAlias)
	assert.Equal(t, "TestCasterNames.func1", c.Name)
}

func ExampleParseCaster() {
	c, _ := node.ParseCaster(strconv.Atoi)
	fmt.Println(c, c.HasErr)

	c, _ = node.ParseCaster(optional)
	fmt.Println(c, c.HasBool)

	// Output:
	// strconv.Atoi(string) int true
	// node_test.optional(*int) *string true
}
