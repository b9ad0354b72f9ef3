package mapper

import (
	"reflect"

	"mtb-mapper/errors"
	"mtb-mapper/internal/emit"
	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
)

// routine is the compiled routine of one pair. It is handed out as a
// forward reference while its session still builds it, and only called
// after the session published it.
type routine struct {
	pair     node.TypePair
	owner    node.TypePair // root pair of the session that compiled it
	maxDepth int
	plan     *plan.TypePlan
	program  *emit.Program
}

var _ emit.Callee = (*routine)(nil)

// Call runs the program one nesting level below the caller. A pointer
// routine only unwraps its base pair, so it does not take a level of its own.
func (rt *routine) Call(depth int, arg reflect.Value) (reflect.Value, error) {
	if rt.plan.Kind == plan.KindPointer {
		depth--
	}

	if depth > rt.maxDepth {
		return reflect.Value{}, errors.DepthExceeded(rt.pair, rt.maxDepth)
	}

	return rt.program.Call(depth, arg)
}

func (rt *routine) String() string {
	return rt.pair.String()
}
