package primitive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"mtb-mapper/options"
)

// Func converts a single simple value.
type Func func(reflect.Value) (reflect.Value, error)

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	validType    = reflect.TypeFor[interface{ IsValid() bool }]()
)

// Converter returns a conversion from src to dst values if both are simple
// types and one of the allowed categories covers the pair.
func Converter(src, dst reflect.Type, allowed options.CategoryEnum) (Func, bool) {
	srcKind := FromReflectType(src)
	dstKind := FromReflectType(dst)
	if srcKind == 0 || dstKind == 0 {
		return nil, false
	}

	if _, ok := AllowedPairs(allowed)[ConversionPair{srcKind, dstKind}]; !ok {
		return nil, false
	}

	switch {
	case srcKind == KindPrimitiveEnum || dstKind == KindPrimitiveEnum:
		return enumConverter(src, dst, srcKind, dstKind)

	case srcKind.IsNumber() && dstKind.IsNumber():
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(dst), nil
		}, true

	case srcKind.IsNumber() && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(formatNumber(v, srcKind)), nil
		}, true

	case srcKind == KindString && dstKind.IsNumber():
		return func(v reflect.Value) (reflect.Value, error) {
			return parseNumber(v.String(), dst, dstKind)
		}, true

	case srcKind.IsInteger() && dstKind == KindBool:
		return func(v reflect.Value) (reflect.Value, error) {
			switch n := intOf(v); n {
			case 0:
				return reflect.ValueOf(false), nil
			case 1:
				return reflect.ValueOf(true), nil
			default:
				return reflect.Value{}, fmt.Errorf("only numbers 0 and 1 are allowed for bool, got: %d", n)
			}
		}, true

	case srcKind == KindBool && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			if v.Bool() {
				return intValue(dst, 1), nil
			}
			return intValue(dst, 0), nil
		}, true

	case srcKind == KindString && dstKind == KindBool:
		return func(v reflect.Value) (reflect.Value, error) {
			switch strings.ToLower(v.String()) {
			default:
				return reflect.Value{}, fmt.Errorf("only strings true/false, yes/no, on/off are allowed for bool, got: %s", v.String())
			case "true", "yes", "on":
				return reflect.ValueOf(true), nil
			case "false", "no", "off":
				return reflect.ValueOf(false), nil
			}
		}, true

	case srcKind == KindBool && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(strconv.FormatBool(v.Bool())), nil
		}, true

	case srcKind == KindString && dstKind == KindTime:
		return func(v reflect.Value) (reflect.Value, error) {
			t, err := time.Parse(time.RFC3339Nano, v.String())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(t), nil
		}, true

	case srcKind == KindTime && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Interface().(time.Time).Format(time.RFC3339Nano)), nil
		}, true

	case srcKind.IsInteger() && dstKind == KindTime:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Unix(intOf(v), 0)), nil
		}, true

	case srcKind == KindTime && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			return intValue(dst, v.Interface().(time.Time).Unix()), nil
		}, true

	case srcKind == KindString && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			d, err := time.ParseDuration(v.String())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		}, true

	case srcKind == KindDuration && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).String()), nil
		}, true

	case srcKind.IsInteger() && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(intOf(v))), nil
		}, true

	case srcKind == KindDuration && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			return intValue(dst, v.Int()), nil
		}, true

	case srcKind.IsFloat() && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Float() * float64(time.Second))), nil
		}, true

	case srcKind == KindDuration && dstKind.IsFloat():
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).Seconds()).Convert(dst), nil
		}, true
	}

	return nil, false
}

func enumConverter(src, dst reflect.Type, srcKind, dstKind KindEnum) (Func, bool) {
	text := func(v reflect.Value) string {
		if src.Implements(stringerType) {
			return v.Interface().(fmt.Stringer).String()
		}
		if src.Kind() == reflect.String {
			return v.String()
		}
		return fmt.Sprint(v.Interface())
	}

	switch {
	case dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(text(v)), nil
		}, true

	case dst.Kind() == reflect.String && (srcKind == KindString || src.Kind() == reflect.String):
		return func(v reflect.Value) (reflect.Value, error) {
			return validate(reflect.ValueOf(text(v)).Convert(dst))
		}, true

	case src.Kind() == dst.Kind() && src.ConvertibleTo(dst):
		return func(v reflect.Value) (reflect.Value, error) {
			return validate(v.Convert(dst))
		}, true
	}

	return nil, false
}

func validate(v reflect.Value) (reflect.Value, error) {
	if v.Type().Implements(validType) && !v.Interface().(interface{ IsValid() bool }).IsValid() {
		return reflect.Value{}, fmt.Errorf("%v is not a valid value for %s", v.Interface(), v.Type())
	}

	return v, nil
}

func formatNumber(v reflect.Value, kind KindEnum) string {
	switch {
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10)
	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return strconv.FormatFloat(v.Float(), 'f', -1, kind.Bits())
	}
}

func parseNumber(s string, dst reflect.Type, kind KindEnum) (reflect.Value, error) {
	out := reflect.New(dst).Elem()

	switch {
	case kind.IsSigned():
		n, err := strconv.ParseInt(s, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(n)
	case kind.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(n)
	default:
		f, err := strconv.ParseFloat(s, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	}

	return out, nil
}

func intOf(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}

	return int64(v.Uint())
}

func intValue(dst reflect.Type, n int64) reflect.Value {
	out := reflect.New(dst).Elem()
	if out.CanInt() {
		out.SetInt(n)
	} else {
		out.SetUint(uint64(n))
	}

	return out
}
