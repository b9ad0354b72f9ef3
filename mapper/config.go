package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"mtb-mapper/errors"
	"mtb-mapper/internal/match"
	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
)

const maxSuggestions = 3

// PairConfig collects the rules of one pair. Rule errors are kept and
// reported by Configure; the first one wins.
type PairConfig struct {
	pair    node.TypePair
	cfg     *plan.Config
	origin  plan.Origin
	targets map[string]reflect.StructField
	members map[string]plan.Member
	err     error
}

func newPairConfig(pair node.TypePair, cfg *plan.Config) *PairConfig {
	pc := &PairConfig{pair: pair, cfg: cfg, origin: plan.OriginCode}

	if pair.Source.Kind() == reflect.Struct && pair.Target.Kind() == reflect.Struct {
		pc.targets = make(map[string]reflect.StructField)
		for _, f := range plan.Fields(pair.Target) {
			pc.targets[f.Name] = f
		}

		pc.members = plan.Members(pair.Source)
	}

	return pc
}

// Pair returns the pair being configured.
func (c *PairConfig) Pair() TypePair {
	return c.pair
}

// Err returns the first rule error.
func (c *PairConfig) Err() error {
	return c.err
}

// MapPropertyByName reads the target field from the named source field or
// getter, optionally through a converter.
func (c *PairConfig) MapPropertyByName(source, target string, converter ...any) {
	if err := c.checkTarget(target); err != nil {
		c.fail(err)
		return
	}

	if err := c.checkSource(source); err != nil {
		c.fail(err)
		return
	}

	c.mapTo(target, source, converter)
}

// IgnoreByName leaves the target field at its zero value.
func (c *PairConfig) IgnoreByName(target string) {
	if err := c.checkTarget(target); err != nil {
		c.fail(err)
		return
	}

	c.cfg.Ignore(target, c.origin)
}

func (c *PairConfig) mapTo(target, source string, converter []any) {
	var conv *node.Caster

	switch len(converter) {
	case 0:
	case 1:
		caster, err := node.ParseCaster(converter[0])
		if err != nil {
			c.fail(errors.New(errors.PhaseConfigure, errors.KindUnsupportedConversion).
				Pair(c.pair).
				Path(target).
				Detail("converter %T: %v", converter[0], err).
				Cause(err).
				Build())

			return
		}

		conv = &caster

	default:
		c.fail(errors.New(errors.PhaseConfigure, errors.KindUnsupportedConversion).
			Pair(c.pair).
			Path(target).
			Detail("%d converters given, at most one is allowed", len(converter)).
			Build())

		return
	}

	c.cfg.Map(target, source, conv, c.origin)
}

func (c *PairConfig) checkTarget(name string) error {
	if c.targets == nil {
		return errors.NameResolution(c.pair, "%s has no properties", c.pair.Target)
	}

	if _, ok := c.targets[name]; ok {
		return nil
	}

	names := make([]string, 0, len(c.targets))
	for n := range c.targets {
		names = append(names, n)
	}

	return errors.NameResolution(c.pair, "target has no field %q%s", name, didYouMean(name, names))
}

func (c *PairConfig) checkSource(name string) error {
	if c.members == nil {
		return errors.NameResolution(c.pair, "%s has no properties", c.pair.Source)
	}

	if _, ok := c.members[name]; ok {
		return nil
	}

	names := make([]string, 0, len(c.members))
	for n := range c.members {
		names = append(names, n)
	}

	return errors.NameResolution(c.pair, "source has no field or getter %q%s", name, didYouMean(name, names))
}

func (c *PairConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// checkRules verifies the names of the rules an override file added.
func (c *PairConfig) checkRules() error {
	for _, target := range c.cfg.Targets() {
		if c.cfg.Origin(target) != plan.OriginFile {
			continue
		}

		if err := c.checkTarget(target); err != nil {
			return err
		}

		if c.cfg.Ignored(target) {
			continue
		}

		if err := c.checkSource(c.cfg.Source(target)); err != nil {
			return err
		}
	}

	return nil
}

func didYouMean(name string, candidates []string) string {
	s := match.Suggest(name, candidates, maxSuggestions)
	if len(s) == 0 {
		return ""
	}

	return " (did you mean " + strings.Join(s, ", ") + "?)"
}

// Config is the typed configuration of the pair (S, T).
type Config[S, T any] struct {
	*PairConfig
}

// MapProperty reads the target field selected by target from the source
// field selected by source. Selectors return the address of one field of
// their argument:
//
//	c.MapProperty(
//		func(s *Src) any { return &s.Name },
//		func(t *Dst) any { return &t.FullName })
//
// The optional converter is a func(S) T, func(S) (T, bool),
// func(S) (T, error) or func(S) (T, bool, error).
func (c *Config[S, T]) MapProperty(source func(*S) any, target func(*T) any, converter ...any) {
	src, err := resolveSelector(c.pair, source)
	if err != nil {
		c.fail(err)
		return
	}

	dst, err := resolveSelector(c.pair, target)
	if err != nil {
		c.fail(err)
		return
	}

	c.mapTo(dst.Name, src.Name, converter)
}

// Ignore leaves the selected target field at its zero value.
func (c *Config[S, T]) Ignore(target func(*T) any) {
	dst, err := resolveSelector(c.pair, target)
	if err != nil {
		c.fail(err)
		return
	}

	c.cfg.Ignore(dst.Name, c.origin)
}

// MapField is the typed form of MapProperty: the selectors return field
// pointers and the converter, if any, is a plain func(SP) TP.
func MapField[S, T, SP, TP any](c *Config[S, T], source func(*S) *SP, target func(*T) *TP, converter ...func(SP) TP) {
	conv := make([]any, len(converter))
	for i, fn := range converter {
		conv[i] = fn
	}

	c.MapProperty(
		func(s *S) any { return source(s) },
		func(t *T) any { return target(t) },
		conv...)
}

// resolveSelector runs sel against a zero X and finds the field of X whose
// address it returned.
func resolveSelector[X any](pair node.TypePair, sel func(*X) any) (f reflect.StructField, err error) {
	t := reflect.TypeFor[X]()
	if t.Kind() != reflect.Struct {
		return f, errors.NameResolution(pair, "%s is not a struct", t)
	}

	if sel == nil {
		return f, errors.NameResolution(pair, "nil selector for %s", t)
	}

	zero := reflect.New(t)

	out, err := callSelector(pair, t, sel, zero.Interface().(*X))
	if err != nil {
		return f, err
	}

	v := reflect.ValueOf(out)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return f, errors.NameResolution(pair, "selector for %s returned %T, want the address of a field", t, out)
	}

	base, addr := zero.Pointer(), v.Pointer()
	if addr < base || addr-base >= t.Size() {
		return f, errors.NameResolution(pair, "selector for %s returned a pointer outside the value", t)
	}

	offset, typ := addr-base, v.Type().Elem()

	for _, field := range plan.Fields(t) {
		if fieldOffset(t, field.Index) == offset && field.Type == typ {
			return field, nil
		}
	}

	return f, errors.NameResolution(pair, "selector for %s does not select a field of it (%s at offset %d)", t, typ, offset)
}

func callSelector[X any](pair node.TypePair, t reflect.Type, sel func(*X) any, x *X) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NameResolution(pair, "selector for %s panicked: %v", t, r)
		}
	}()

	return sel(x), nil
}

// fieldOffset returns the offset of a possibly promoted field from the
// start of t.
func fieldOffset(t reflect.Type, index []int) uintptr {
	var off uintptr

	for _, i := range index {
		f := t.Field(i)
		off += f.Offset
		t = f.Type
	}

	return off
}

// String renders the rules for debugging.
func (c *PairConfig) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "config %s\n", c.pair)

	for _, target := range c.cfg.Targets() {
		switch {
		case c.cfg.Ignored(target):
			fmt.Fprintf(&b, "  %s: ignored (%s)\n", target, c.cfg.Origin(target))
		case c.cfg.Converter(target) != nil:
			fmt.Fprintf(&b, "  %s <- %s via %s (%s)\n", target, c.cfg.Source(target), c.cfg.Converter(target), c.cfg.Origin(target))
		default:
			fmt.Fprintf(&b, "  %s <- %s (%s)\n", target, c.cfg.Source(target), c.cfg.Origin(target))
		}
	}

	return b.String()
}
