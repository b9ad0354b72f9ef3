package mapping

import (
	"fmt"
	"reflect"

	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
	"mtb-mapper/options"
)

// Apply layers the settings over base. Only the settings the file sets
// take effect.
func (s Settings) Apply(base options.Options) (options.Options, error) {
	categories, err := options.ParseCategories(s.Conversions...)
	if err != nil {
		return base, err
	}

	res, err := base.Merge(options.Options{
		MaxDepth:    s.MaxDepth,
		Conversions: categories,
	})
	if err != nil {
		return base, err
	}

	if s.Trace != nil {
		res.Trace = *s.Trace
	}

	return res, nil
}

// CheckTransforms verifies that every transform a field references is
// declared in the file and registered in converters with a usable
// signature.
func (f *File) CheckTransforms(converters map[string]any) error {
	for _, tm := range f.Mappings {
		for _, fm := range tm.Rules() {
			if fm.Transform == "" {
				continue
			}

			if _, ok := f.Transform(fm.Transform); !ok {
				return fmt.Errorf("mapping %s: field %s uses undeclared transform %q", tm.Key(), fm.Target, fm.Transform)
			}

			if _, err := caster(fm.Transform, converters); err != nil {
				return fmt.Errorf("mapping %s: field %s: %w", tm.Key(), fm.Target, err)
			}
		}
	}

	return nil
}

// Find returns the mappings of the pair, in file order.
func (f *File) Find(pair node.TypePair) []*TypeMapping {
	var res []*TypeMapping

	for i := range f.Mappings {
		tm := &f.Mappings[i]
		if Matches(tm.Source, pair.Source) && Matches(tm.Target, pair.Target) {
			res = append(res, tm)
		}
	}

	return res
}

// Apply records the overrides of tm in cfg with the file origin.
func (tm *TypeMapping) Apply(cfg *plan.Config, converters map[string]any) error {
	for _, fm := range tm.Rules() {
		var conv *node.Caster

		if fm.Transform != "" {
			c, err := caster(fm.Transform, converters)
			if err != nil {
				return fmt.Errorf("field %s: %w", fm.Target, err)
			}

			conv = &c
		}

		cfg.Map(fm.Target, fm.SourceOf(), conv, plan.OriginFile)
	}

	for _, target := range tm.Ignore {
		cfg.Ignore(target, plan.OriginFile)
	}

	return nil
}

// Matches reports whether name refers to the named type t, either as
// reflect prints it ("store.Order") or by its package path.
func Matches(name string, t reflect.Type) bool {
	if t.Name() == "" {
		return false
	}

	return name == t.String() || name == t.PkgPath()+"."+t.Name()
}

func caster(name string, converters map[string]any) (node.Caster, error) {
	fn, ok := converters[name]
	if !ok {
		return node.Caster{}, fmt.Errorf("transform %q is not registered", name)
	}

	c, err := node.ParseCaster(fn)
	if err != nil {
		return node.Caster{}, fmt.Errorf("transform %q: %w", name, err)
	}

	return c, nil
}
