package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
	"mtb-mapper/options"
	"mtb-mapper/store"
	"mtb-mapper/warehouse"
)

const orderYAML = `
version: "1"
settings:
  max_depth: 64
  conversions: [unsafe_number, text_number]
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      TotalCents: TotalAmount
      OrderedAt: PlacedAt
    fields:
      - target: Status
        transform: orderStatus
      - target: OrderNumber
        source: Reference
    ignore: Currency
transforms:
  - name: orderStatus
    description: store status to lower-case warehouse status
`

func orderStatus(s store.OrderStatus) string { return strings.ToLower(string(s)) }

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, 64, f.Settings.MaxDepth)
	assert.Equal(t, StringOrArray{"unsafe_number", "text_number"}, f.Settings.Conversions)

	require.Len(t, f.Mappings, 1)
	tm := f.Mappings[0]
	assert.Equal(t, "store.Order -> warehouse.Order", tm.Key())
	assert.Equal(t, "TotalAmount", tm.OneToOne["TotalCents"])
	assert.Equal(t, StringOrArray{"Currency"}, tm.Ignore, "a single string is a one element list")

	assert.Equal(t, []FieldMapping{
		{Target: "PlacedAt", Source: "OrderedAt"},
		{Target: "TotalAmount", Source: "TotalCents"},
		{Target: "Status", Transform: "orderStatus"},
		{Target: "OrderNumber", Source: "Reference"},
	}, tm.Rules())

	assert.Equal(t, "Status", tm.Rules()[2].SourceOf())

	def, ok := f.Transform("orderStatus")
	require.True(t, ok)
	assert.Equal(t, "store status to lower-case warehouse status", def.Description)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{"unknown key", "mappings:\n  - source: A\n    target: B\n    fieldz: []\n", "field fieldz not found"},
		{"version", "version: \"2\"\n", `unsupported mapping version "2"`},
		{"missing target", "mappings:\n  - source: A\n", "mapping #1: source and target are required"},
		{"field without target", "mappings:\n  - source: A\n    target: B\n    fields:\n      - source: X\n", "field entry without target"},
		{"bad ignore", "mappings:\n  - source: A\n    target: B\n    ignore: {a: b}\n", "expected string or list of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, f.Version)
	assert.Empty(t, f.Mappings)
}

func TestLoadFileAndMarshal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "order.yaml")
	require.NoError(t, os.WriteFile(path, []byte(orderYAML), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)

	data, err := Marshal(f)
	require.NoError(t, err)

	assert.NotContains(t, string(data), path)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)

	again.Path = path
	assert.Equal(t, f, again)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read mapping file")
}

func TestLayer(t *testing.T) {
	t.Parallel()

	base, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	over, err := Parse([]byte(`
settings:
  trace: true
  conversions: safe_number
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      ID: TotalAmount
    fields:
      - target: Currency
        source: Status
    ignore: [OrderNumber]
  - source: store.OrderItem
    target: warehouse.OrderItem
transforms:
  - name: orderStatus
    description: replaced
`))
	require.NoError(t, err)

	f, err := Layer(base, nil, over)
	require.NoError(t, err)

	assert.Equal(t, Settings{
		MaxDepth:    64,
		Trace:       ptr(true),
		Conversions: StringOrArray{"safe_number"},
	}, f.Settings)

	require.Len(t, f.Mappings, 2)
	tm := f.Mappings[0]
	assert.Equal(t, map[string]string{"OrderedAt": "PlacedAt", "ID": "TotalAmount"}, tm.OneToOne)
	assert.Equal(t, []FieldMapping{
		{Target: "Status", Transform: "orderStatus"},
		{Target: "Currency", Source: "Status"},
	}, tm.Fields)
	assert.Equal(t, StringOrArray{"OrderNumber"}, tm.Ignore)

	require.Len(t, f.Transforms, 1)
	assert.Equal(t, "replaced", f.Transforms[0].Description)

	// the inputs are left alone
	assert.Equal(t, "TotalAmount", base.Mappings[0].OneToOne["TotalCents"])
	assert.Len(t, base.Mappings[0].Fields, 2)
}

func TestSettingsApply(t *testing.T) {
	t.Parallel()

	base := options.Apply(options.WithMaxDepth(10), options.WithConversions(options.CategoryDuration))

	o, err := Settings{MaxDepth: 3, Conversions: StringOrArray{"text_number"}}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 3, o.MaxDepth)
	assert.Equal(t, options.CategoryTextNumber, o.Conversions)
	assert.False(t, o.Trace)

	o, err = Settings{}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 10, o.MaxDepth)
	assert.Equal(t, options.CategoryDuration, o.Conversions)

	_, err = Settings{Conversions: StringOrArray{"roman_numerals"}}.Apply(base)
	assert.ErrorContains(t, err, `unknown conversion category "roman_numerals"`)
}

func ptr[T any](v T) *T { return &v }

func TestSettingsTrace(t *testing.T) {
	t.Parallel()

	traced := options.Apply(options.WithTrace(true))

	off, err := Parse([]byte("settings:\n  trace: false\n"))
	require.NoError(t, err)
	require.NotNil(t, off.Settings.Trace)

	o, err := off.Settings.Apply(traced)
	require.NoError(t, err)
	assert.False(t, o.Trace)

	unset, err := Parse([]byte("settings:\n  max_depth: 5\n"))
	require.NoError(t, err)
	assert.Nil(t, unset.Settings.Trace)

	o, err = unset.Settings.Apply(traced)
	require.NoError(t, err)
	assert.True(t, o.Trace)

	// a later file turns tracing back off
	on, err := Parse([]byte("settings:\n  trace: true\n"))
	require.NoError(t, err)

	f, err := Layer(on, off)
	require.NoError(t, err)
	assert.Equal(t, ptr(false), f.Settings.Trace)

	data, err := Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "trace: false")
}

func TestFindAndApply(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	pair := node.NewPair(reflect.TypeFor[store.Order](), reflect.TypeFor[warehouse.Order]())
	found := f.Find(pair)
	require.Len(t, found, 1)
	assert.Empty(t, f.Find(node.NewPair(pair.Target, pair.Source)))

	converters := map[string]any{"orderStatus": orderStatus}
	require.NoError(t, f.CheckTransforms(converters))

	cfg := plan.NewConfig()
	require.NoError(t, found[0].Apply(cfg, converters))

	assert.Equal(t, "TotalCents", cfg.Source("TotalAmount"))
	assert.Equal(t, "Reference", cfg.Source("OrderNumber"))
	assert.Equal(t, plan.OriginFile, cfg.Origin("Status"))
	assert.True(t, cfg.Ignored("Currency"))

	conv := cfg.Converter("Status")
	require.NotNil(t, conv)
	assert.Equal(t, reflect.TypeFor[store.OrderStatus](), conv.Src)

	err = f.CheckTransforms(nil)
	assert.ErrorContains(t, err, `transform "orderStatus" is not registered`)

	err = f.CheckTransforms(map[string]any{"orderStatus": "not a function"})
	assert.ErrorContains(t, err, `transform "orderStatus"`)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	order := reflect.TypeFor[store.Order]()

	assert.True(t, Matches("store.Order", order))
	assert.True(t, Matches("mtb-mapper/store.Order", order))
	assert.False(t, Matches("Order", order))
	assert.False(t, Matches("[]store.Order", reflect.TypeFor[[]store.Order]()))
}
