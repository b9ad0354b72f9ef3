package mapper

import (
	"strings"
)

// Describe returns the plan, the diagnostics and the program listing of a
// compiled pair, or false when the pair has no routine.
func (r *Registry) Describe(pair TypePair) (string, bool) {
	v, ok := r.routines.Load(pair)
	if !ok {
		return "", false
	}

	rt := v.(*routine)

	var b strings.Builder

	b.WriteString(rt.plan.String())

	for _, d := range rt.plan.Diagnostics.All() {
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteByte('\n')
	}

	b.WriteString(rt.program.String())

	return b.String(), true
}
