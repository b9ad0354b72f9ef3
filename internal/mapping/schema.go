package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mtb-mapper/internal/common"
)

// SchemaVersion is the only version this package reads.
const SchemaVersion = "1"

// File is the root of a YAML override file.
type File struct {
	Version    string         `yaml:"version,omitempty"`
	Settings   Settings       `yaml:"settings,omitempty"`
	Mappings   []TypeMapping  `yaml:"mappings,omitempty"`
	Transforms []TransformDef `yaml:"transforms,omitempty"`

	// Path is set by LoadFile.
	Path string `yaml:"-"`
}

// Settings override registry options. Zero values leave the option alone;
// Trace is a pointer so that "trace: false" can turn tracing off.
type Settings struct {
	MaxDepth    int           `yaml:"max_depth,omitempty"`
	Trace       *bool         `yaml:"trace,omitempty"`
	Conversions StringOrArray `yaml:"conversions,omitempty"`
}

// TypeMapping holds the overrides of one source and target type pair.
// Types are named like reflect does ("store.Order") or by their full
// package path ("mtb-mapper/store.Order").
type TypeMapping struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`

	// OneToOne maps source field names to target field names.
	OneToOne map[string]string `yaml:"121,omitempty"`

	Fields []FieldMapping `yaml:"fields,omitempty"`
	Ignore StringOrArray  `yaml:"ignore,omitempty"`
}

// FieldMapping populates one target field. An empty Source means the
// field with the target's name.
type FieldMapping struct {
	Target    string `yaml:"target"`
	Source    string `yaml:"source,omitempty"`
	Transform string `yaml:"transform,omitempty"`
}

// TransformDef declares a converter that fields may reference by name. The
// function itself is registered in code with options.WithConverter.
type TransformDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Key identifies the pair of a type mapping.
func (tm *TypeMapping) Key() string {
	return tm.Source + " -> " + tm.Target
}

// Rules returns the field mappings in the order they are applied: the
// 121 shorthand sorted by target, then the explicit fields.
func (tm *TypeMapping) Rules() []FieldMapping {
	rules := make([]FieldMapping, 0, len(tm.OneToOne)+len(tm.Fields))

	for _, source := range common.SortedKeys(tm.OneToOne) {
		rules = append(rules, FieldMapping{Target: tm.OneToOne[source], Source: source})
	}

	return append(rules, tm.Fields...)
}

// SourceOf returns the source member name of the rule.
func (fm FieldMapping) SourceOf() string {
	if fm.Source == "" {
		return fm.Target
	}

	return fm.Source
}

// Transform returns the declaration of the named transform.
func (f *File) Transform(name string) (TransformDef, bool) {
	for _, t := range f.Transforms {
		if t.Name == name {
			return t, true
		}
	}

	return TransformDef{}, false
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = nil
		if str != "" {
			*s = StringOrArray{str}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// MarshalYAML writes a single element as a plain string.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}
