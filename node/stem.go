package node

import "strconv"

// Stem hands out unique names. The first name asked for a stem is the stem
// itself, later ones carry the next free number: "in", "in2", "in3".
type Stem struct {
	taken map[string]struct{}
	last  map[string]int
}

// NewStem creates a Stem that never hands out the reserved names.
func NewStem(reserved ...string) *Stem {
	s := &Stem{
		taken: make(map[string]struct{}, len(reserved)),
		last:  make(map[string]int),
	}

	for _, name := range reserved {
		s.taken[name] = struct{}{}
	}

	return s
}

func (s *Stem) Next(stem string) string {
	for n := s.last[stem] + 1; ; n++ {
		name := stem
		if n > 1 {
			name += strconv.Itoa(n)
		}

		if _, ok := s.taken[name]; ok {
			continue
		}

		s.last[stem] = n
		s.taken[name] = struct{}{}

		return name
	}
}
