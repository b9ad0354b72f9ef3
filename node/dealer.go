package node

import "reflect"

// Dealer is the worklist of pairs a build session still has to compile.
// Pairs come out in the order they were first requested and each pair is
// handed out at most once.
type Dealer struct {
	queue []TypePair
	seen  map[TypePair]struct{}
}

func (d *Dealer) NextNeeds() (src, dst reflect.Type, ok bool) {
	if len(d.queue) == 0 {
		return
	}

	pair := d.queue[0]
	d.queue = d.queue[1:]

	return pair.Source, pair.Target, true
}

// Needs enqueues the pair unless it was already requested or marked done.
func (d *Dealer) Needs(src, dst reflect.Type) bool {
	pair := TypePair{Source: src, Target: dst}
	if _, exists := d.seen[pair]; exists {
		return false
	}

	d.Done(src, dst)
	d.queue = append(d.queue, pair)

	return true
}

// Done marks the pair as handled without queueing it.
func (d *Dealer) Done(src, dst reflect.Type) {
	if d.seen == nil {
		d.seen = make(map[TypePair]struct{})
	}

	d.seen[TypePair{Source: src, Target: dst}] = struct{}{}
}

// Pending returns how many pairs are still queued.
func (d *Dealer) Pending() int {
	return len(d.queue)
}
