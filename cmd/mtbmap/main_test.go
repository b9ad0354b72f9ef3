package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/internal/mapping"
)

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer

	code = run(args, &out, &errOut)

	return code, out.String(), errOut.String()
}

func TestVersionAndHelp(t *testing.T) {
	t.Parallel()

	code, out, _ := execute("version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "mtbmap "+version+"\n", out)

	code, out, _ = execute("help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "mtbmap check")
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no command", args: nil, want: "Usage:"},
		{name: "unknown command", args: []string{"gen"}, want: `unknown command "gen"`},
		{name: "no packages", args: []string{"check", "-mappings", "testdata/orders.yaml"}, want: "no packages given"},
		{name: "no mappings", args: []string{"check", "mtb-mapper/store"}, want: "-mappings is required"},
		{name: "bad flag", args: []string{"merge", "-colour"}, want: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, _, errOut := execute(tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestCheckClean(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute("check", "-no-color",
		"-mappings", "testdata/orders.yaml,testdata/shipping.yaml",
		"mtb-mapper/store", "mtb-mapper/warehouse")

	require.Equal(t, exitOK, code, out+errOut)
	assert.Equal(t, "2 mappings checked: 0 errors, 0 warnings\n", out)
}

func TestCheckReportsErrors(t *testing.T) {
	t.Parallel()

	code, out, _ := execute("check", "-no-color",
		"-mappings", "testdata/broken.yaml",
		"mtb-mapper/store", "mtb-mapper/warehouse")

	assert.Equal(t, exitFail, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)

	assert.True(t, strings.HasPrefix(lines[0], "error   store.Order -> warehouse.Ordr"), lines[0])
	assert.Contains(t, lines[0], "[unknown_type] did you mean warehouse.Order")
	assert.Contains(t, out, "TotalAmount: ")
	assert.Contains(t, out, "[unknown_transform]")
	assert.Equal(t, "2 mappings checked: 3 errors, 0 warnings", lines[3])
}

func TestCheckLintsEachFile(t *testing.T) {
	t.Parallel()

	code, out, _ := execute("check", "-no-color",
		"-mappings", "testdata/orders.yaml,testdata/duplicates.yaml",
		"mtb-mapper/store", "mtb-mapper/warehouse")

	assert.Equal(t, exitFail, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)

	assert.Equal(t, `error   testdata/duplicates.yaml: orderStatus: duplicate transform "orderStatus" [duplicate_transform]`, lines[0])
	assert.Equal(t, "1 mappings checked: 1 errors, 0 warnings", lines[1])
}

func TestCheckMissingFile(t *testing.T) {
	t.Parallel()

	code, _, errOut := execute("check", "-mappings", "testdata/none.yaml", "mtb-mapper/store")
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, "failed to read mapping file testdata/none.yaml")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	code, out, errOut := execute("merge", "-mappings", "testdata/orders.yaml, testdata/shipping.yaml")
	require.Equal(t, exitOK, code, errOut)

	f, err := mapping.Parse([]byte(out))
	require.NoError(t, err)

	require.Len(t, f.Mappings, 2)
	order := f.Mappings[0]
	assert.Equal(t, "store.Order -> warehouse.Order", order.Key())
	assert.Equal(t, map[string]string{
		"TotalCents": "TotalAmount",
		"OrderedAt":  "PlacedAt",
		"Shipping":   "ShippingAddress",
	}, order.OneToOne)
	assert.Equal(t, mapping.StringOrArray{"unsafe_number", "enum_string"}, f.Settings.Conversions)
}

func TestPlainPrinterOnBuffers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.False(t, isTerminal(&buf))

	p := newPrinter(&buf, true)
	assert.Equal(t, "error  ", p.severity(2))
}
