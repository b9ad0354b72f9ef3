package options

import (
	"fmt"

	"dario.cat/mergo"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds nested routine invocations of a single Map call.
const DefaultMaxDepth = 256

// Options configure a mapper registry.
type Options struct {
	// Logger receives build and trace events. Nil means zap.NewNop().
	Logger *zap.Logger
	// MaxDepth limits nested invocations; deeper source graphs fail with a
	// depth_exceeded error instead of overflowing the stack.
	MaxDepth int
	// Conversions enables primitive conversions between different simple types.
	Conversions CategoryEnum
	// Trace logs the plan and the program listing of every compiled pair.
	Trace bool
	// Converters are named converter functions referenced by override files.
	Converters map[string]any
	// OverrideFiles are YAML override files, layered in order.
	OverrideFiles []string
	// Overrides are in-memory YAML override documents, layered after the files.
	Overrides [][]byte
}

type Option func(*Options)

// Default returns the options of a registry created without any Option.
func Default() Options {
	return Options{
		Logger:   zap.NewNop(),
		MaxDepth: DefaultMaxDepth,
	}
}

// Apply builds Options from the defaults and opts.
func Apply(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	return o
}

// Merge layers the non-zero fields of other over o.
func (o Options) Merge(other Options) (Options, error) {
	res := o
	if err := mergo.Merge(&res, other, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return o, fmt.Errorf("failed to merge options: %w", err)
	}

	return res, nil
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithMaxDepth(depth int) Option {
	return func(o *Options) { o.MaxDepth = depth }
}

// WithConversions enables the given categories in addition to those already set.
func WithConversions(categories CategoryEnum) Option {
	return func(o *Options) { o.Conversions |= categories }
}

func WithTrace(trace bool) Option {
	return func(o *Options) { o.Trace = trace }
}

// WithConverter registers fn under name so override files can reference it
// as a transform.
func WithConverter(name string, fn any) Option {
	return func(o *Options) {
		if o.Converters == nil {
			o.Converters = make(map[string]any)
		}
		o.Converters[name] = fn
	}
}

func WithOverrideFiles(paths ...string) Option {
	return func(o *Options) { o.OverrideFiles = append(o.OverrideFiles, paths...) }
}

func WithOverrides(data []byte) Option {
	return func(o *Options) { o.Overrides = append(o.Overrides, data) }
}
