package node

import (
	"errors"
	"path"
	"reflect"
	"runtime"
	"strings"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
)

var errorType = reflect.TypeFor[error]()

// Caster describes a user converter function.
type Caster struct {
	Fn           reflect.Value
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	// HasBool is set when the converter reports whether it produced a
	// value; HasErr when it returns an error last.
	HasBool bool
	HasErr  bool
}

// ParseCaster inspects fn and describes it. Accepted shapes:
//   - func(S) T
//   - func(S) (T, bool)
//   - func(S) (T, error)
//   - func(S) (T, bool, error)
//
// S and T may be pointers, but not pointers to pointers.
func ParseCaster(fn any) (Caster, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return Caster{}, ErrCasterIsNotAFunction
	}

	ft := v.Type()
	if ft.IsVariadic() || ft.NumIn() != 1 || ft.NumOut() == 0 {
		return Caster{}, ErrIsNotACaster
	}

	src, dst := ft.In(0), ft.Out(0)
	if isDoublePointer(src) || isDoublePointer(dst) {
		return Caster{}, ErrDoublePointer
	}

	hasBool, hasErr, ok := resultShape(ft)
	if !ok {
		return Caster{}, ErrIsNotACaster
	}

	alias, name := funcName(v)

	return Caster{
		Fn:           v,
		Src:          src,
		Dst:          dst,
		PackageAlias: alias,
		Name:         name,
		HasBool:      hasBool,
		HasErr:       hasErr,
	}, nil
}

// resultShape classifies the results that follow the converted value.
func resultShape(ft reflect.Type) (hasBool, hasErr, ok bool) {
	switch ft.NumOut() {
	case 1:
		return false, false, true
	case 2:
		switch last := ft.Out(1); {
		case last.Kind() == reflect.Bool:
			return true, false, true
		case last == errorType:
			return false, true, true
		}
	case 3:
		if ft.Out(1).Kind() == reflect.Bool && ft.Out(2) == errorType {
			return true, true, true
		}
	}

	return false, false, false
}

func isDoublePointer(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Ptr
}

// funcName splits the runtime name of fn, such as "strconv.Itoa" or
// "example.com/app/conv.Test.func1", into the package alias and the rest.
func funcName(fn reflect.Value) (alias, name string) {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return "", ""
	}

	_, last := path.Split(f.Name())
	alias, name, _ = strings.Cut(last, ".")

	return alias, name
}

// String renders the converter as "pkg.Name(Src) Dst".
func (c Caster) String() string {
	name := c.Name
	if c.PackageAlias != "" {
		name = c.PackageAlias + "." + name
	}

	return name + "(" + typeStr(c.Src) + ") " + typeStr(c.Dst)
}
