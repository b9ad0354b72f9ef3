package mapper

import (
	"go.uber.org/zap"

	"mtb-mapper/internal/emit"
	"mtb-mapper/internal/gen"
	"mtb-mapper/internal/plan"
	"mtb-mapper/node"
)

// session compiles a root pair and every pair it reaches. Routines are
// published together once all of them compiled; a failure publishes none.
type session struct {
	r       *Registry
	dealer  node.Dealer
	pending map[TypePair]*routine
	order   []TypePair
	synth   *gen.Synthesizer
}

func newSession(r *Registry) *session {
	s := &session{
		r:       r,
		pending: make(map[TypePair]*routine),
	}

	s.synth = gen.NewSynthesizer(s.link, r.opts.Conversions, r.logger)

	return s
}

// link returns the routine of pair: the published one, or a forward
// reference that this session fills in. Type cycles end here.
func (s *session) link(pair TypePair) emit.Callee {
	if rt, ok := s.r.routines.Load(pair); ok {
		return rt.(*routine)
	}

	if rt, ok := s.pending[pair]; ok {
		return rt
	}

	rt := &routine{pair: pair, maxDepth: s.r.opts.MaxDepth}
	s.pending[pair] = rt
	s.order = append(s.order, pair)
	s.dealer.Needs(pair.Source, pair.Target)

	return rt
}

func (s *session) build(root TypePair, cfg *plan.Config) (*routine, error) {
	rt := s.link(root).(*routine)

	for {
		src, dst, ok := s.dealer.NextNeeds()
		if !ok {
			break
		}

		pair := node.NewPair(src, dst)

		pairCfg := cfg
		if pair != root {
			pc, err := s.r.pairConfig(pair)
			if err != nil {
				return nil, err
			}

			pairCfg = pc.cfg
		}

		if err := s.compile(pair, pairCfg); err != nil {
			return nil, err
		}
	}

	for _, pair := range s.order {
		s.pending[pair].owner = root
		s.r.routines.Store(pair, s.pending[pair])
	}

	s.r.logger.Debug("build session finished",
		zap.Stringer("pair", root),
		zap.Int("routines", len(s.order)))

	return rt, nil
}

func (s *session) compile(pair TypePair, cfg *plan.Config) error {
	tp, err := s.r.planner.Plan(pair, cfg)
	if err != nil {
		return err
	}

	for _, sk := range tp.Skipped {
		s.r.logger.Debug("field skipped",
			zap.Stringer("pair", pair),
			zap.String("field", sk.Target),
			zap.String("reason", sk.Reason),
			zap.Strings("suggestions", sk.Suggestions))
	}

	prog, err := s.synth.Synthesize(tp)
	if err != nil {
		return err
	}

	rt := s.pending[pair]
	rt.plan = tp
	rt.program = prog

	if s.r.opts.Trace {
		s.r.logger.Debug("routine compiled",
			zap.Stringer("pair", pair),
			zap.String("plan", tp.String()),
			zap.String("program", prog.String()))
	}

	return nil
}
