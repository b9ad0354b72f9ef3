package mapping

import (
	"fmt"
	"go/token"

	"mtb-mapper/internal/analyze"
	"mtb-mapper/internal/diagnostic"
	"mtb-mapper/internal/match"
	"mtb-mapper/options"
)

const maxSuggestions = 3

// Lint checks what an override file says on its own: its settings and its
// transform declarations. Diagnostics carry the file's path.
func Lint(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if _, err := options.ParseCategories(f.Settings.Conversions...); err != nil {
		res.AddError("invalid_settings", err.Error(), "", "conversions")
	}

	if f.Settings.MaxDepth < 0 {
		res.AddError("invalid_settings", fmt.Sprintf("max_depth %d is negative", f.Settings.MaxDepth), "", "max_depth")
	}

	seen := make(map[string]struct{})
	for _, t := range f.Transforms {
		if t.Name == "" || !token.IsIdentifier(t.Name) {
			res.AddError("invalid_transform", fmt.Sprintf("transform name %q is not an identifier", t.Name), "", t.Name)
			continue
		}

		if _, dup := seen[t.Name]; dup {
			res.AddError("duplicate_transform", fmt.Sprintf("duplicate transform %q", t.Name), "", t.Name)
		}

		seen[t.Name] = struct{}{}
	}

	for _, ds := range [][]diagnostic.Diagnostic{res.Errors, res.Warnings, res.Infos} {
		for i := range ds {
			ds[i].File = f.Path
		}
	}

	return res
}

// CheckMappings checks the mappings of f against the given type graph:
// every type and field it names must exist, transforms must be declared
// and the field types must be convertible with the file's conversion
// categories or a transform. f is usually the result of Layer.
func CheckMappings(f *File, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	// a bad category name is reported by Lint
	allowed, _ := options.ParseCategories(f.Settings.Conversions...)

	for i := range f.Mappings {
		validateMapping(res, f, &f.Mappings[i], graph, allowed)
	}

	return res
}

func validateMapping(res *diagnostic.Diagnostics, f *File, tm *TypeMapping, graph *analyze.TypeGraph, allowed options.CategoryEnum) {
	pair := tm.Key()

	src := resolveStruct(res, graph, pair, tm.Source)
	dst := resolveStruct(res, graph, pair, tm.Target)

	if src == nil || dst == nil {
		return
	}

	targets := make(map[string]struct{})

	for _, fm := range tm.Rules() {
		tf, ok := dst.Field(fm.Target)
		if !ok {
			res.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("target %s has no field %q", tm.Target, fm.Target),
				pair, fm.Target, match.Suggest(fm.Target, dst.FieldNames(), maxSuggestions)...)

			continue
		}

		if _, dup := targets[fm.Target]; dup {
			res.AddWarning("duplicate_target", fmt.Sprintf("field %q is mapped more than once, the last entry wins", fm.Target), pair, fm.Target)
		}

		targets[fm.Target] = struct{}{}

		source := fm.SourceOf()

		sf, ok := src.Member(source)
		if !ok {
			res.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("source %s has no field or getter %q", tm.Source, source),
				pair, fm.Target, match.Suggest(source, src.MemberNames(), maxSuggestions)...)

			continue
		}

		if fm.Transform != "" {
			if _, ok := f.Transform(fm.Transform); !ok {
				names := make([]string, 0, len(f.Transforms))
				for _, t := range f.Transforms {
					names = append(names, t.Name)
				}

				res.AddError(diagnostic.CodeUnknownTransform,
					fmt.Sprintf("transform %q is not declared", fm.Transform),
					pair, fm.Target, match.Suggest(fm.Transform, names, maxSuggestions)...)
			}

			continue
		}

		checkTypes(res, pair, fm.Target, sf, tf, allowed)
	}

	for _, target := range tm.Ignore {
		if _, ok := dst.Field(target); !ok {
			res.AddWarning(diagnostic.CodeUnknownField,
				fmt.Sprintf("ignored field %q does not exist on %s", target, tm.Target),
				pair, target, match.Suggest(target, dst.FieldNames(), maxSuggestions)...)
		}
	}
}

func resolveStruct(res *diagnostic.Diagnostics, graph *analyze.TypeGraph, pair, name string) *analyze.TypeInfo {
	t := graph.Lookup(name)
	if t == nil {
		res.AddError(diagnostic.CodeUnknownType, fmt.Sprintf("type %q not found", name), pair, "",
			match.Suggest(name, graph.ShortNames(), maxSuggestions)...)

		return nil
	}

	if t.Kind != analyze.TypeKindStruct {
		res.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("type %q is a %s, not a struct", name, t.Kind), pair, "")
		return nil
	}

	return t
}

// checkTypes reports field pairs that no strategy can map without a
// transform.
func checkTypes(res *diagnostic.Diagnostics, pair, path string, sf, tf *analyze.FieldInfo, allowed options.CategoryEnum) {
	st, tt := sf.Type.GoType, tf.Type.GoType

	switch match.Compatibility(st, tt) {
	case match.VerdictIncompatible:
		res.AddError(diagnostic.CodeTypeMismatch,
			fmt.Sprintf("%s cannot be mapped to %s without a transform", st, tt), pair, path)

	case match.VerdictNeedsConversion:
		if allowed == options.CategoryNone {
			res.AddWarning(diagnostic.CodeTypeMismatch,
				fmt.Sprintf("%s to %s needs a conversion category or a transform", st, tt), pair, path)
		}
	}
}
