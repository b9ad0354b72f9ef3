package plan

import (
	"fmt"
	"reflect"
	"slices"

	"mtb-mapper/errors"
	"mtb-mapper/internal/diagnostic"
	"mtb-mapper/internal/match"
	"mtb-mapper/node"
	"mtb-mapper/options"
	"mtb-mapper/primitive"
)

// maxSuggestions is the number of alternative names offered for a
// target field without a source member.
const maxSuggestions = 3

// Planner turns a type pair and its configuration into a TypePlan. A plan
// depends only on the pair, the configuration and the allowed primitive
// conversion categories.
type Planner struct {
	allowed options.CategoryEnum
}

func NewPlanner(allowed options.CategoryEnum) *Planner {
	return &Planner{allowed: allowed}
}

// Plan builds the pair-level plan. cfg may be nil for pairs that were not
// configured explicitly, such as element or nested pairs.
func (p *Planner) Plan(pair node.TypePair, cfg *Config) (*TypePlan, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	src, dst := pair.Source, pair.Target
	tp := &TypePlan{Pair: pair}

	switch node.Dispatch(src, dst) {
	case node.DispatcherPointer:
		return p.planPointer(tp)

	case node.DispatcherInterface:
		return nil, errors.ContractViolation(pair, nil, dst.String())

	case node.DispatcherPrimitive:
		tp.Kind = KindSimple
		if src == dst {
			return tp, nil
		}

		fn, ok := primitive.Converter(src, dst, p.allowed)
		if !ok {
			return nil, noConversion(pair, nil, src, dst)
		}

		tp.Convert = fn

		return tp, nil

	case node.DispatcherSlice:
		tp.Kind = KindSequence
		tp.Element = link(src.Elem(), dst.Elem())

		return tp, nil

	case node.DispatcherMap:
		tp.Kind = KindDictionary
		tp.Key = link(src.Key(), dst.Key())
		tp.Value = link(src.Elem(), dst.Elem())

		return tp, nil

	case node.DispatcherStruct:
		tp.Kind = KindObject
		if err := p.planObject(tp, cfg); err != nil {
			return nil, err
		}

		return tp, nil

	default:
		return nil, errors.Unsupported(errors.PhasePlan, pair, "no strategy maps %s to %s", src, dst)
	}
}

func (p *Planner) planPointer(tp *TypePlan) (*TypePlan, error) {
	pair := tp.Pair

	srcDepth, _ := node.PtrDepthAndBase(pair.Source)
	dstDepth, _ := node.PtrDepthAndBase(pair.Target)
	if srcDepth > 1 || dstDepth > 1 {
		return nil, errors.Unsupported(errors.PhasePlan, pair, "more than one level of pointers")
	}

	base := pair.Base()
	if !node.Constructible(base.Target) {
		return nil, errors.ContractViolation(pair, nil, base.Target.String())
	}

	tp.Kind = KindPointer
	tp.SourcePointer = srcDepth == 1
	tp.TargetPointer = dstDepth == 1
	tp.Base = link(base.Source, base.Target)

	return tp, nil
}

func (p *Planner) planObject(tp *TypePlan, cfg *Config) error {
	pair := tp.Pair
	members := Members(pair.Source)

	for _, f := range Fields(pair.Target) {
		prop := PropertyPlan{Target: f, Origin: cfg.Origin(f.Name)}

		if cfg.Ignored(f.Name) {
			tp.Properties = append(tp.Properties, prop)
			tp.Skipped = append(tp.Skipped, Skipped{Target: f.Name, Reason: "ignored"})

			continue
		}

		name := cfg.Source(f.Name)

		m, ok := members[name]
		if !ok {
			suggestions := match.Suggest(name, memberNames(members), maxSuggestions)
			reason := fmt.Sprintf("source has no member %q", name)

			tp.Properties = append(tp.Properties, prop)
			tp.Skipped = append(tp.Skipped, Skipped{Target: f.Name, Reason: reason, Suggestions: suggestions})
			tp.Diagnostics.AddInfo(diagnostic.CodeFieldSkipped, reason, pair.String(), f.Name, suggestions...)

			continue
		}

		prop.Source = m
		if err := p.pickStrategy(&prop, pair, cfg.Converter(f.Name)); err != nil {
			return err
		}

		tp.Properties = append(tp.Properties, prop)
	}

	return nil
}

// pickStrategy applies the strategies in precedence order; the first one
// that matches wins.
func (p *Planner) pickStrategy(prop *PropertyPlan, pair node.TypePair, conv *node.Caster) error {
	src, dst := prop.Source.Type, prop.Target.Type
	path := []string{prop.Target.Name}

	switch {
	case conv != nil:
		if !src.AssignableTo(conv.Src) {
			return errors.New(errors.PhasePlan, errors.KindUnsupportedConversion).
				Pair(pair).Path(path...).
				Detail("converter %s does not accept %s", conv, src).
				Build()
		}

		if !conv.Dst.AssignableTo(dst) {
			return errors.New(errors.PhasePlan, errors.KindUnsupportedConversion).
				Pair(pair).Path(path...).
				Detail("converter %s result is not assignable to %s", conv, dst).
				Build()
		}

		prop.Strategy = StrategyConverterCall
		prop.Converter = conv

	case src == dst && primitive.IsSimple(src):
		prop.Strategy = StrategyDirectCopy

	case node.IsDictionary(src) && node.IsDictionary(dst):
		prop.Strategy = StrategyDictionaryMap
		prop.Key = link(src.Key(), dst.Key())
		prop.Value = link(src.Elem(), dst.Elem())

	case node.IsSequence(src) && node.IsSequence(dst):
		prop.Strategy = StrategyCollectionMap
		prop.Element = link(src.Elem(), dst.Elem())

	default:
		if !node.Constructible(dst) {
			return errors.ContractViolation(pair, path, dst.String())
		}

		// report simple pairs that can never convert at the field
		if primitive.IsSimple(src) && primitive.IsSimple(dst) {
			if _, ok := primitive.Converter(src, dst, p.allowed); !ok {
				return noConversion(pair, path, src, dst)
			}
		}

		nested := node.NewPair(src, dst)
		prop.Strategy = StrategyNestedMap
		prop.Nested = &nested
	}

	return nil
}

// link returns the pair that maps src to dst, or nil when values of src are
// copied as they are.
func link(src, dst reflect.Type) *node.TypePair {
	if src == dst && primitive.IsSimple(src) {
		return nil
	}

	pair := node.NewPair(src, dst)

	return &pair
}

func noConversion(pair node.TypePair, path []string, src, dst reflect.Type) error {
	return errors.New(errors.PhasePlan, errors.KindUnsupportedConversion).
		Pair(pair).
		Path(path...).
		Detail("no conversion from %s to %s", src, dst).
		Build()
}

func memberNames(members map[string]Member) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
