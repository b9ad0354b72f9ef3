package plan

import (
	"fmt"
	"reflect"
	"strings"

	"mtb-mapper/internal/common"
	"mtb-mapper/internal/diagnostic"
	"mtb-mapper/node"
	"mtb-mapper/primitive"
)

// Kind is the shape of a pair-level plan.
type Kind int

const (
	// KindSimple - simple to simple, identity or a primitive conversion.
	KindSimple Kind = iota
	// KindPointer - one pointer level on either side around a base pair.
	KindPointer
	// KindObject - struct to struct, planned property by property.
	KindObject
	// KindSequence - slice or array to slice or array.
	KindSequence
	// KindDictionary - map to map.
	KindDictionary
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindPointer:
		return "pointer"
	case KindObject:
		return "object"
	case KindSequence:
		return "sequence"
	case KindDictionary:
		return "dictionary"
	default:
		return common.UnknownStr
	}
}

// Strategy describes how a single target property obtains its value.
type Strategy int

const (
	// StrategySkip - the target keeps its zero value.
	StrategySkip Strategy = iota
	// StrategyDirectCopy - identical simple types, the value is copied.
	StrategyDirectCopy
	// StrategyConverterCall - a registered converter produces the value.
	StrategyConverterCall
	// StrategyNestedMap - the value is mapped by the routine of another pair.
	StrategyNestedMap
	// StrategyCollectionMap - a sequence mapped element by element.
	StrategyCollectionMap
	// StrategyDictionaryMap - a map mapped entry by entry.
	StrategyDictionaryMap
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategySkip:
		return "skip"
	case StrategyDirectCopy:
		return "direct_copy"
	case StrategyConverterCall:
		return "converter_call"
	case StrategyNestedMap:
		return "nested_map"
	case StrategyCollectionMap:
		return "collection_map"
	case StrategyDictionaryMap:
		return "dictionary_map"
	default:
		return common.UnknownStr
	}
}

// Member is a readable member of the source type: an exported field or a
// getter method on the pointer type.
type Member struct {
	// Name of the field or method.
	Name string
	// Type of the value read.
	Type reflect.Type
	// Index is the field index path. Nil for getters.
	Index []int
	// Getter is the method value func(*S) V or func(*S) (V, error).
	Getter reflect.Value
	// Fallible is set for getters returning an error.
	Fallible bool
}

// IsGetter reports whether the member is read through a method.
func (m Member) IsGetter() bool {
	return m.Getter.IsValid()
}

func (m Member) String() string {
	if m.IsGetter() {
		return m.Name + "()"
	}

	return m.Name
}

// PropertyPlan is the decision for one target field.
type PropertyPlan struct {
	// Target is the field being populated.
	Target reflect.StructField
	// Source is the member the value is read from. Unset for skipped fields.
	Source Member
	// Origin is the configuration layer that produced the rule.
	Origin Origin
	// Strategy chosen for the field.
	Strategy Strategy
	// Converter for StrategyConverterCall.
	Converter *node.Caster
	// Nested is the pair mapped by StrategyNestedMap.
	Nested *node.TypePair
	// Element is the element pair of StrategyCollectionMap, nil when the
	// elements are copied.
	Element *node.TypePair
	// Key and Value are the entry pairs of StrategyDictionaryMap, nil when
	// that side is copied.
	Key, Value *node.TypePair
}

// Skipped is a target field left at its zero value.
type Skipped struct {
	Target      string
	Reason      string
	Suggestions []string
}

// TypePlan is the pair-level plan consumed by the synthesizer.
type TypePlan struct {
	Pair node.TypePair
	Kind Kind

	// Convert is the primitive conversion of a KindSimple plan, nil for identity.
	Convert primitive.Func

	// SourcePointer and TargetPointer describe a KindPointer plan. Base is the
	// pair of the pointed-to types, nil when the base value is copied.
	SourcePointer, TargetPointer bool
	Base                         *node.TypePair

	// Properties of a KindObject plan in target declaration order.
	Properties []PropertyPlan
	Skipped    []Skipped

	// Element of a KindSequence plan; Key and Value of a KindDictionary plan.
	// Nil links are copied directly.
	Element, Key, Value *node.TypePair

	Diagnostics diagnostic.Diagnostics
}

// Links returns every pair this plan invokes, in first-use order.
func (p *TypePlan) Links() []node.TypePair {
	var (
		out  []node.TypePair
		seen = map[node.TypePair]bool{}
	)

	add := func(links ...*node.TypePair) {
		for _, l := range links {
			if l != nil && !seen[*l] {
				seen[*l] = true
				out = append(out, *l)
			}
		}
	}

	add(p.Base, p.Element, p.Key, p.Value)
	for _, prop := range p.Properties {
		add(prop.Nested, prop.Element, prop.Key, prop.Value)
	}

	return out
}

// String renders the plan for humans.
func (p *TypePlan) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s]\n", p.Pair, p.Kind)

	switch p.Kind {
	case KindSimple:
		if p.Convert == nil {
			b.WriteString("  identity\n")
		} else {
			b.WriteString("  primitive conversion\n")
		}
	case KindPointer:
		fmt.Fprintf(&b, "  source pointer: %v, target pointer: %v, base: %s\n",
			p.SourcePointer, p.TargetPointer, linkStr(p.Base))
	case KindSequence:
		fmt.Fprintf(&b, "  element: %s\n", linkStr(p.Element))
	case KindDictionary:
		fmt.Fprintf(&b, "  key: %s, value: %s\n", linkStr(p.Key), linkStr(p.Value))
	case KindObject:
		for _, prop := range p.Properties {
			if prop.Strategy == StrategySkip {
				continue
			}

			fmt.Fprintf(&b, "  %s <- %s: %s", prop.Target.Name, prop.Source, prop.Strategy)

			switch prop.Strategy {
			case StrategyConverterCall:
				fmt.Fprintf(&b, " %s", prop.Converter)
			case StrategyNestedMap:
				fmt.Fprintf(&b, " %s", linkStr(prop.Nested))
			case StrategyCollectionMap:
				fmt.Fprintf(&b, " element %s", linkStr(prop.Element))
			case StrategyDictionaryMap:
				fmt.Fprintf(&b, " key %s, value %s", linkStr(prop.Key), linkStr(prop.Value))
			}

			fmt.Fprintf(&b, " (%s)\n", prop.Origin)
		}

		for _, s := range p.Skipped {
			fmt.Fprintf(&b, "  %s skipped: %s", s.Target, s.Reason)
			if len(s.Suggestions) > 0 {
				fmt.Fprintf(&b, ", did you mean %s?", strings.Join(s.Suggestions, ", "))
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func linkStr(l *node.TypePair) string {
	if l == nil {
		return "copy"
	}

	return "(" + l.String() + ")"
}
