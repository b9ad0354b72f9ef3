package mapper

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mtb-mapper/errors"
	"mtb-mapper/internal/mapping"
	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
	"mtb-mapper/options"
)

// TypePair identifies a compiled routine.
type TypePair = node.TypePair

// PairOf returns the pair of S and T.
func PairOf[S, T any]() TypePair {
	return node.NewPair(reflect.TypeFor[S](), reflect.TypeFor[T]())
}

// outcome is the recorded result of the first Configure call of a pair.
type outcome struct {
	routine *routine
	err     error
}

// Registry owns the compiled routines of an application.
type Registry struct {
	opts      options.Options
	logger    *zap.Logger
	planner   *plan.Planner
	overrides *mapping.File
	// loadErr is a broken override file, reported by every Configure.
	loadErr error

	// routines holds every published routine, including pairs compiled
	// only as dependencies. outcomes holds the configured pairs.
	routines sync.Map // TypePair -> *routine
	outcomes sync.Map // TypePair -> *outcome

	group   singleflight.Group
	buildMu sync.Mutex
	frozen  atomic.Bool
}

// New creates a registry. Override files are read here; a broken file is
// reported by the first Configure call.
func New(opts ...options.Option) *Registry {
	o := options.Apply(opts...)
	r := &Registry{overrides: &mapping.File{}}

	f, err := loadOverrides(o)
	if err == nil {
		o, err = f.Settings.Apply(o)
	}

	if err == nil {
		err = f.CheckTransforms(o.Converters)
	}

	if err != nil {
		r.loadErr = errors.New(errors.PhaseConfigure, errors.KindConfiguration).
			Detail("override files: %v", err).
			Cause(err).
			Build()
	} else {
		r.overrides = f
	}

	if o.MaxDepth <= 0 {
		o.MaxDepth = options.DefaultMaxDepth
	}

	r.opts = o
	r.logger = o.Logger
	r.planner = plan.NewPlanner(o.Conversions)

	return r
}

func loadOverrides(o options.Options) (*mapping.File, error) {
	files := make([]*mapping.File, 0, len(o.OverrideFiles)+len(o.Overrides))

	for _, path := range o.OverrideFiles {
		f, err := mapping.LoadFile(path)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	for i, data := range o.Overrides {
		f, err := mapping.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("override document #%d: %w", i+1, err)
		}

		files = append(files, f)
	}

	return mapping.Layer(files...)
}

// Options returns the effective options, override file settings included.
func (r *Registry) Options() options.Options {
	return r.opts
}

// Freeze stops the registry from accepting new pairs. Pairs configured
// before keep working and Configure keeps returning their results.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Configure configures the pair (S, T) and compiles its routine. See
// (*Registry).ConfigurePair.
func Configure[S, T any](r *Registry, configure ...func(*Config[S, T])) error {
	fns := make([]func(*PairConfig), len(configure))
	for i, fn := range configure {
		fns[i] = func(pc *PairConfig) { fn(&Config[S, T]{PairConfig: pc}) }
	}

	return r.ConfigurePair(PairOf[S, T](), fns...)
}

// ConfigurePair runs the configurators of pair over the auto-mapped and
// file rules, then plans and compiles every routine the pair needs. Only
// the first call for a pair has an effect; later calls return its result
// without running their configurators.
func (r *Registry) ConfigurePair(pair TypePair, configure ...func(*PairConfig)) error {
	if out, ok := r.outcomes.Load(pair); ok {
		return out.(*outcome).err
	}

	if r.frozen.Load() {
		return errors.New(errors.PhaseConfigure, errors.KindConfiguration).
			Pair(pair).
			Detail("registry is frozen").
			Build()
	}

	v, _, _ := r.group.Do(groupKey(pair), func() (any, error) {
		r.buildMu.Lock()
		defer r.buildMu.Unlock()

		if out, ok := r.outcomes.Load(pair); ok {
			return out, nil
		}

		out := r.configure(pair, configure)
		r.outcomes.Store(pair, out)

		return out, nil
	})

	return v.(*outcome).err
}

// groupKey identifies the pair by type identity; two types may print the
// same.
func groupKey(pair TypePair) string {
	return fmt.Sprintf("%p>%p", pair.Source, pair.Target)
}

func (r *Registry) configure(pair TypePair, configure []func(*PairConfig)) *outcome {
	if r.loadErr != nil {
		err := *r.loadErr.(*errors.Error)
		err.Pair = pair.String()

		return &outcome{err: &err}
	}

	if v, ok := r.routines.Load(pair); ok {
		// compiled earlier as a dependency of another pair, with auto
		// mapping and override files only
		rt := v.(*routine)
		if len(configure) > 0 {
			return &outcome{err: errors.New(errors.PhaseConfigure, errors.KindConfiguration).
				Pair(pair).
				Detail("already compiled as a dependency of %s, configure it before %s", rt.owner, rt.owner).
				Build()}
		}

		return &outcome{routine: rt}
	}

	pc, err := r.pairConfig(pair)
	if err != nil {
		return &outcome{err: err}
	}

	for _, fn := range configure {
		if err := runConfigurator(pc, fn); err != nil {
			return &outcome{err: err}
		}
	}

	if pc.err != nil {
		return &outcome{err: pc.err}
	}

	s := newSession(r)
	rt, err := s.build(pair, pc.cfg)
	if err != nil {
		r.logger.Debug("configuration failed", zap.Stringer("pair", pair), zap.Error(err))
		return &outcome{err: err}
	}

	return &outcome{routine: rt}
}

func runConfigurator(pc *PairConfig, fn func(*PairConfig)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseConfigure, errors.KindConfiguration).
				Pair(pc.pair).
				Detail("configurator panicked: %v", r).
				Value(r).
				Build()
		}
	}()

	fn(pc)

	return nil
}

// pairConfig layers auto-mapping and the override files of pair.
func (r *Registry) pairConfig(pair TypePair) (*PairConfig, error) {
	cfg := plan.NewConfig()
	pc := newPairConfig(pair, cfg)

	if pc.targets == nil {
		return pc, nil
	}

	plan.AutoMap(cfg, pair.Source, pair.Target)

	for _, tm := range r.overrides.Find(pair) {
		if err := tm.Apply(cfg, r.opts.Converters); err != nil {
			return nil, errors.New(errors.PhaseConfigure, errors.KindConfiguration).
				Pair(pair).
				Detail("override %s: %v", tm.Key(), err).
				Cause(err).
				Build()
		}
	}

	if err := pc.checkRules(); err != nil {
		return nil, err
	}

	return pc, nil
}

// lookup returns the routine of a configured pair.
func (r *Registry) lookup(pair TypePair) (*routine, error) {
	v, ok := r.outcomes.Load(pair)
	if !ok {
		return nil, errors.NotConfigured(pair)
	}

	out := v.(*outcome)
	if out.err != nil {
		return nil, errors.ConfigurationFailed(pair, out.err)
	}

	return out.routine, nil
}

// Map maps src with the routine of S and T.
func Map[S, T any](r *Registry, src S) (T, error) {
	var zero T

	pair := PairOf[S, T]()

	rt, err := r.lookup(pair)
	if err != nil {
		return zero, err
	}

	out, err := rt.Call(0, reflect.ValueOf(&src).Elem())
	if err != nil {
		return zero, stamp(err, pair)
	}

	return out.Interface().(T), nil
}

// MustMap is like Map but panics if the mapping fails.
func MustMap[S, T any](r *Registry, src S) T {
	res, err := Map[S, T](r, src)
	if err != nil {
		panic(err)
	}

	return res
}

// Map maps src, which must be assignable to pair.Source, and returns a
// value of type pair.Target.
func (r *Registry) Map(pair TypePair, src any) (any, error) {
	rt, err := r.lookup(pair)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(src)
	if !v.IsValid() {
		v = reflect.Zero(pair.Source)
	}

	if !v.Type().AssignableTo(pair.Source) {
		return nil, errors.New(errors.PhaseMap, errors.KindUnsupportedConversion).
			Pair(pair).
			Detail("source value of type %s, want %s", v.Type(), pair.Source).
			Build()
	}

	out, err := rt.Call(0, v)
	if err != nil {
		return nil, stamp(err, pair)
	}

	return out.Interface(), nil
}

// stamp names the mapped pair on runtime errors that carry no pair.
func stamp(err error, pair TypePair) error {
	e, ok := err.(*errors.Error)
	if !ok || e.Pair != "" {
		return err
	}

	c := *e
	c.Pair = pair.String()

	return &c
}
