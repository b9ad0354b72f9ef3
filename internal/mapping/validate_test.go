package mapping

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/internal/analyze"
	"mtb-mapper/internal/diagnostic"
)

var fixtures = sync.OnceValues(func() (*analyze.TypeGraph, error) {
	return analyze.NewAnalyzer("").LoadPackages("mtb-mapper/store", "mtb-mapper/warehouse")
})

func validate(t *testing.T, yaml string) *diagnostic.Diagnostics {
	t.Helper()

	graph, err := fixtures()
	require.NoError(t, err)

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)

	res := Lint(f)
	res.Merge(*CheckMappings(f, graph))

	return res
}

func codes(ds []diagnostic.Diagnostic) []string {
	res := make([]string, 0, len(ds))
	for _, d := range ds {
		res = append(res, d.Code)
	}

	return res
}

func best(t *testing.T, d diagnostic.Diagnostic) string {
	t.Helper()
	require.NotEmpty(t, d.Suggestions, d.String())

	return d.Suggestions[0]
}

func TestValidateClean(t *testing.T) {
	t.Parallel()

	res := validate(t, orderYAML)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateUnknownNames(t *testing.T) {
	t.Parallel()

	res := validate(t, `
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      TotalCent: TotalAmount
    fields:
      - target: OrderNumbr
        source: ID
      - target: Status
        transform: orderStatuss
    ignore: [Curency]
transforms:
  - name: orderStatus
  - name: orderStatus
`)

	require.True(t, res.HasErrors())
	assert.ElementsMatch(t, []string{
		diagnostic.CodeUnknownField,
		diagnostic.CodeUnknownField,
		diagnostic.CodeUnknownTransform,
		"duplicate_transform",
	}, codes(res.Errors))

	byPath := make(map[string]diagnostic.Diagnostic)
	for _, d := range res.All() {
		byPath[d.FieldPath] = d
	}

	assert.Equal(t, "TotalCents", best(t, byPath["TotalAmount"]))
	assert.Equal(t, "OrderNumber", best(t, byPath["OrderNumbr"]))
	assert.Equal(t, "orderStatus", best(t, byPath["Status"]))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Currency", best(t, res.Warnings[0]))
}

func TestValidateTypes(t *testing.T) {
	t.Parallel()

	res := validate(t, `
mappings:
  - source: store.Ordr
    target: warehouse.Order
  - source: store.OrderStatus
    target: warehouse.Order
  - source: store.Order
    target: warehouse.Order
    fields:
      - target: Items
        source: Tags
      - target: CustomerID
`)

	require.Len(t, res.Errors, 3)
	assert.Equal(t, diagnostic.CodeUnknownType, res.Errors[0].Code)
	assert.Contains(t, res.Errors[0].Suggestions, "store.Order")
	assert.Equal(t, diagnostic.CodeNotStruct, res.Errors[1].Code)
	assert.Equal(t, diagnostic.CodeTypeMismatch, res.Errors[2].Code)
	assert.Equal(t, "Items", res.Errors[2].FieldPath)

	// int64 to uint without a conversion category
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "CustomerID", res.Warnings[0].FieldPath)
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	res := validate(t, `
settings:
  max_depth: -1
  conversions: [text_numbers]
transforms:
  - name: not-an-ident
`)

	assert.Equal(t, []string{"invalid_settings", "invalid_settings", "invalid_transform"}, codes(res.Errors))
}

func TestLintEachFile(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
transforms:
  - name: orderStatus
  - name: orderStatus
`))
	require.NoError(t, err)
	f.Path = "dupes.yaml"

	// layering keeps one declaration per name
	layered, err := Layer(f)
	require.NoError(t, err)
	assert.Equal(t, 0, Lint(layered).Len())

	res := Lint(f)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "duplicate_transform", res.Errors[0].Code)
	assert.Equal(t, "dupes.yaml", res.Errors[0].File)
}
