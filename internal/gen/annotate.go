package gen

import (
	"fmt"
	"reflect"
	"strconv"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
	"mtb-mapper/node"
	"mtb-mapper/primitive"
)

// errorValue builds a callable that pushes the error produced by fn
// instead of raising it, so the program can throw it explicitly.
func errorValue(name string, numIn int, fn func(args []reflect.Value) error) *emit.Callable {
	return &emit.Callable{
		Name:   name,
		NumIn:  numIn,
		NumOut: 1,
		Fn: func(args []reflect.Value) ([]reflect.Value, error) {
			err := fn(args)
			return []reflect.Value{reflect.ValueOf(&err).Elem()}, nil
		},
	}
}

func caught(v reflect.Value) error {
	return v.Interface().(error)
}

// annotateField prepends a field name to the path of the caught error.
func annotateField(name string) *emit.Callable {
	return errorValue("annotate "+name, 1, func(args []reflect.Value) error {
		return errors.WithPath(caught(args[0]), name)
	})
}

// annotateIndex takes the caught error and the element index.
var annotateIndex = errorValue("annotate [index]", 2, func(args []reflect.Value) error {
	return errors.WithPath(caught(args[0]), "["+strconv.Itoa(int(args[1].Int()))+"]")
})

// annotateKey takes the caught error and the map entry.
var annotateKey = errorValue("annotate [key]", 2, func(args []reflect.Value) error {
	e := args[1].Interface().(emit.Entry)
	return errors.WithPath(caught(args[0]), fmt.Sprintf("[%v]", e.Key))
})

// arrayOverflow takes the source length and builds the error raised when a
// slice does not fit the target array.
func arrayOverflow(capacity int) *emit.Callable {
	return errorValue("array overflow", 1, func(args []reflect.Value) error {
		n := int(args[0].Int())

		return errors.New(errors.PhaseMap, errors.KindConversion).
			Value(n).
			Detail("source has %d elements, target array holds %d", n, capacity).
			Build()
	})
}

// primitiveCall wraps a primitive conversion; failures become conversion
// errors naming the pair.
func primitiveCall(pair node.TypePair, fn primitive.Func) *emit.Callable {
	return emit.Native(pair.String(), func(v reflect.Value) (reflect.Value, error) {
		out, err := fn(v)
		if err != nil {
			return reflect.Value{}, errors.New(errors.PhaseMap, errors.KindConversion).
				Pair(pair).
				Value(v.Interface()).
				Detail("%v", err).
				Cause(err).
				Build()
		}

		return out, nil
	})
}
