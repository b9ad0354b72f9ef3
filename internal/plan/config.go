package plan

import (
	"maps"
	"slices"

	"mtb-mapper/internal/common"
	"mtb-mapper/node"
)

// Origin is the configuration layer a rule came from. Later layers win.
type Origin int

const (
	// OriginAuto - same-named, same-typed fields matched automatically.
	OriginAuto Origin = iota
	// OriginFile - a YAML override file.
	OriginFile
	// OriginCode - the configurator passed to Configure.
	OriginCode
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginAuto:
		return "auto"
	case OriginFile:
		return "yaml"
	case OriginCode:
		return "code"
	default:
		return common.UnknownStr
	}
}

type rule struct {
	source    string
	converter *node.Caster
	ignored   bool
	origin    Origin
}

// Config holds the per-pair mapping rules keyed by target field name. It is
// filled once, before the pair is planned, and not changed afterwards.
type Config struct {
	rules map[string]rule
}

func NewConfig() *Config {
	return &Config{rules: make(map[string]rule)}
}

// Map reads target from the source member named source. A nil converter
// keeps the converter registered earlier for target.
func (c *Config) Map(target, source string, converter *node.Caster, origin Origin) {
	r := c.rules[target]
	r.source = source
	r.ignored = false
	r.origin = origin

	if converter != nil {
		r.converter = converter
	}

	c.rules[target] = r
}

// Ignore leaves target at its zero value.
func (c *Config) Ignore(target string, origin Origin) {
	r := c.rules[target]
	r.ignored = true
	r.origin = origin
	c.rules[target] = r
}

// Source returns the source member name for target, the target name itself
// when no rule renames it.
func (c *Config) Source(target string) string {
	if r, ok := c.rules[target]; ok && r.source != "" {
		return r.source
	}

	return target
}

func (c *Config) Converter(target string) *node.Caster {
	return c.rules[target].converter
}

func (c *Config) Ignored(target string) bool {
	return c.rules[target].ignored
}

// Origin returns the layer of the last rule for target. Targets without a
// rule report OriginAuto.
func (c *Config) Origin(target string) Origin {
	return c.rules[target].origin
}

// Targets returns the target names that have a rule, sorted.
func (c *Config) Targets() []string {
	return slices.Sorted(maps.Keys(c.rules))
}
