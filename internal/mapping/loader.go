package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML override file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.Path = path

	return f, nil
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if f.Version == "" {
		f.Version = SchemaVersion
	}

	if f.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported mapping version %q", f.Version)
	}

	for i := range f.Mappings {
		tm := &f.Mappings[i]
		if tm.Source == "" || tm.Target == "" {
			return nil, fmt.Errorf("mapping #%d: source and target are required", i+1)
		}

		for _, fm := range tm.Fields {
			if fm.Target == "" {
				return nil, fmt.Errorf("mapping %s: field entry without target", tm.Key())
			}
		}
	}

	return &f, nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Layer combines files in order. Settings set by a later file override
// earlier ones; mappings of the same pair are merged, with later "121"
// entries, fields and ignores winning for the targets they name.
func Layer(files ...*File) (*File, error) {
	res := &File{Version: SchemaVersion}
	index := make(map[string]int)
	transforms := make(map[string]int)

	for _, f := range files {
		if f == nil {
			continue
		}

		// mergo skips a false behind a pointer, Trace is layered here
		over := f.Settings
		over.Trace = nil

		if err := mergo.Merge(&res.Settings, over, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge settings: %w", err)
		}

		if f.Settings.Trace != nil {
			trace := *f.Settings.Trace
			res.Settings.Trace = &trace
		}

		for _, tm := range f.Mappings {
			i, ok := index[tm.Key()]
			if !ok {
				index[tm.Key()] = len(res.Mappings)
				res.Mappings = append(res.Mappings, clone(tm))

				continue
			}

			if err := mergeMapping(&res.Mappings[i], tm); err != nil {
				return nil, fmt.Errorf("failed to merge mapping %s: %w", tm.Key(), err)
			}
		}

		for _, t := range f.Transforms {
			if i, ok := transforms[t.Name]; ok {
				res.Transforms[i] = t
				continue
			}

			transforms[t.Name] = len(res.Transforms)
			res.Transforms = append(res.Transforms, t)
		}
	}

	return res, nil
}

// mergeMapping layers src over dst. A target named by src drops whatever
// dst said about it, including an ignore.
func mergeMapping(dst *TypeMapping, src TypeMapping) error {
	pinned := make(map[string]struct{})
	for _, fm := range src.Rules() {
		pinned[fm.Target] = struct{}{}
	}

	for _, target := range src.Ignore {
		pinned[target] = struct{}{}
	}

	for source, target := range dst.OneToOne {
		if _, ok := pinned[target]; ok {
			delete(dst.OneToOne, source)
		}
	}

	fields := dst.Fields[:0]
	for _, fm := range dst.Fields {
		if _, ok := pinned[fm.Target]; !ok {
			fields = append(fields, fm)
		}
	}
	dst.Fields = fields

	ignore := dst.Ignore[:0]
	for _, target := range dst.Ignore {
		if _, ok := pinned[target]; !ok {
			ignore = append(ignore, target)
		}
	}
	dst.Ignore = ignore

	return mergo.Merge(dst, src, mergo.WithOverride, mergo.WithAppendSlice)
}

func clone(tm TypeMapping) TypeMapping {
	c := tm
	c.Fields = append([]FieldMapping(nil), tm.Fields...)
	c.Ignore = append(StringOrArray(nil), tm.Ignore...)

	if tm.OneToOne != nil {
		c.OneToOne = make(map[string]string, len(tm.OneToOne))
		for k, v := range tm.OneToOne {
			c.OneToOne[k] = v
		}
	}

	return c
}
