package emit

import (
	"fmt"
	"reflect"
)

// Local is a typed slot of a routine frame.
type Local int

// Label is a branch target. It is defined first and marked once.
type Label int

// LocalInfo describes a declared local slot.
type LocalInfo struct {
	Type reflect.Type
	Name string
}

// Instr is a single instruction of a program.
type Instr struct {
	Op     OpCode
	Arg    int           // argument index, local slot, region index or branch target pc
	Type   reflect.Type  // operand type of New, MakeSlice, MakeMap, LdZero, Convert, Box, BeginCatch
	Value  reflect.Value // constant of LdConst
	Index  []int         // field index path of LdField, StField
	Call   *Callable     // OpCall
	Callee Callee        // OpInvoke

	label Label
	scope int
}

// Callee is a compiled routine invoked by OpInvoke.
type Callee interface {
	Call(depth int, arg reflect.Value) (reflect.Value, error)
}

// Callable is a Go function invoked by OpCall. It pops NumIn arguments and
// pushes NumOut results; a trailing error result is not pushed but raised.
type Callable struct {
	Name   string
	NumIn  int
	NumOut int
	Fn     func(args []reflect.Value) ([]reflect.Value, error)
}

var errorType = reflect.TypeFor[error]()

// FuncOf wraps a function value. A trailing error result is raised when non-nil.
func FuncOf(name string, fn reflect.Value) *Callable {
	ft := fn.Type()
	numOut := ft.NumOut()
	hasErr := numOut > 0 && ft.Out(numOut-1) == errorType
	if hasErr {
		numOut--
	}

	return &Callable{
		Name:   name,
		NumIn:  ft.NumIn(),
		NumOut: numOut,
		Fn: func(args []reflect.Value) ([]reflect.Value, error) {
			for i, a := range args {
				if !a.IsValid() {
					args[i] = reflect.Zero(ft.In(i))
				}
			}

			outs := fn.Call(args)
			if hasErr {
				if e := outs[numOut]; !e.IsNil() {
					return nil, e.Interface().(error)
				}
			}

			return outs[:numOut], nil
		},
	}
}

// Native wraps a single-value conversion.
func Native(name string, fn func(reflect.Value) (reflect.Value, error)) *Callable {
	return &Callable{
		Name:   name,
		NumIn:  1,
		NumOut: 1,
		Fn: func(args []reflect.Value) ([]reflect.Value, error) {
			out, err := fn(args[0])
			if err != nil {
				return nil, err
			}

			return []reflect.Value{out}, nil
		},
	}
}

func (c *Callable) String() string {
	return fmt.Sprintf("%s/%d->%d", c.Name, c.NumIn, c.NumOut)
}
