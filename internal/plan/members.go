package plan

import (
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Members returns the readable members of struct type t by name: exported
// visible fields, then getter methods of *t that take no arguments and
// return a value, optionally followed by an error.
func Members(t reflect.Type) map[string]Member {
	members := make(map[string]Member)

	for _, f := range Fields(t) {
		members[f.Name] = Member{Name: f.Name, Type: f.Type, Index: f.Index}
	}

	ptr := reflect.PointerTo(t)
	for i := range ptr.NumMethod() {
		m := ptr.Method(i)
		if _, exists := members[m.Name]; exists {
			continue
		}

		mt := m.Type // receiver is In(0)
		if mt.NumIn() != 1 || mt.IsVariadic() {
			continue
		}

		switch {
		case mt.NumOut() == 1 && mt.Out(0) != errorType:
			members[m.Name] = Member{Name: m.Name, Type: mt.Out(0), Getter: m.Func}
		case mt.NumOut() == 2 && mt.Out(1) == errorType:
			members[m.Name] = Member{Name: m.Name, Type: mt.Out(0), Getter: m.Func, Fallible: true}
		}
	}

	return members
}

// Fields returns the exported fields of struct type t that can be read and
// set through a *t, in declaration order. Promoted fields of embedded
// structs are included; the embedded struct itself and anything reached
// through an embedded pointer are not.
func Fields(t reflect.Type) []reflect.StructField {
	var out []reflect.StructField

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			continue
		}

		if throughPointer(t, f.Index) {
			continue
		}

		out = append(out, f)
	}

	return out
}

func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Ptr {
			return true
		}
	}

	return false
}

// AutoMap registers every exported target field that has a same-named,
// same-typed exported source field.
func AutoMap(cfg *Config, src, dst reflect.Type) {
	sources := make(map[string]reflect.Type)
	for _, f := range Fields(src) {
		sources[f.Name] = f.Type
	}

	for _, f := range Fields(dst) {
		if st, ok := sources[f.Name]; ok && st == f.Type {
			cfg.Map(f.Name, f.Name, nil, OriginAuto)
		}
	}
}
