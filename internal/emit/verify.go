package emit

import "fmt"

// verify walks every reachable path of p and checks that the stack depth
// at each instruction is the same on all paths. It returns the maximum
// stack depth.
//
// Protected regions are entered and left with an empty stack. A region
// terminator (BeginFinally, BeginCatch or EndTry) reached by flow ends the
// current body and continues after the region.
func verify(p *Program) (int, error) {
	n := len(p.code)
	if n == 0 {
		return 0, fmt.Errorf("routine %s has no instructions", p.name)
	}

	depth := make([]int, n)
	for i := range depth {
		depth[i] = -1
	}

	type item struct{ pc, depth int }

	var (
		work     []item
		maxStack int
		err      error
	)

	seed := func(from, pc, d int) {
		if err != nil {
			return
		}

		switch {
		case pc >= n:
			err = fmt.Errorf("pc %d: control falls off the end of the routine", from)
		case depth[pc] == -1:
			depth[pc] = d
			work = append(work, item{pc, d})
		case depth[pc] != d:
			err = fmt.Errorf("pc %d: stack depth %d does not match %d on another path", pc, d, depth[pc])
		}
	}

	seed(-1, 0, 0)

	for len(work) > 0 && err == nil {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		pc, d := it.pc, it.depth
		in := p.code[pc]

		pops, pushes := effects[in.Op].pops, effects[in.Op].pushes
		if in.Op == OpCall {
			pops, pushes = in.Call.NumIn, in.Call.NumOut
		}

		if d < pops {
			return 0, fmt.Errorf("pc %d: %s needs %d operands, stack has %d", pc, in.Op, pops, d)
		}

		next := d - pops + pushes
		maxStack = max(maxStack, d, next)

		switch in.Op {
		case OpBeginTry:
			if d != 0 {
				return 0, fmt.Errorf("pc %d: try region entered with %d values on the stack", pc, d)
			}

			r := p.regions[in.Arg]
			seed(pc, pc+1, 0)
			if r.kind == OpBeginCatch {
				// the handler starts with the caught error
				seed(pc, r.handler+1, 1)
				maxStack = max(maxStack, 1)
			} else {
				seed(pc, r.handler+1, 0)
			}

		case OpBeginFinally, OpBeginCatch, OpEndTry:
			if d != 0 {
				return 0, fmt.Errorf("pc %d: protected block left with %d values on the stack", pc, d)
			}

			seed(pc, p.regions[in.Arg].end+1, 0)

		case OpRet:
			if d != 1 {
				return 0, fmt.Errorf("pc %d: return with %d values on the stack", pc, d)
			}

			if in.scope != 0 {
				return 0, fmt.Errorf("pc %d: return inside a try region", pc)
			}

		case OpThrow:

		case OpBr:
			seed(pc, in.Arg, next)

		case OpBrTrue, OpBrFalse:
			seed(pc, in.Arg, next)
			seed(pc, pc+1, next)

		default:
			seed(pc, pc+1, next)
		}
	}

	return maxStack, err
}
