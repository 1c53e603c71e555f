// Package search picks moves by depth-limited minimax with alpha-beta
// pruning over a material evaluation.
package search

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alphabeth/game"
)

const (
	// MateScore is the value of delivering mate at the root. Mates further
	// away score one less per ply so that the quickest mate is preferred.
	MateScore = 100000
	DrawScore = 0

	infinity = MateScore + 1
)

// ErrNoLegalMoves is returned when asked to move in a position without
// legal moves. Callers are expected to check the game status first.
var ErrNoLegalMoves = errors.New("no legal moves")

// Result is the outcome of one search.
type Result struct {
	Move    game.Move
	Score   int // from the maximizing side's point of view
	Depth   int // deepest completed iteration
	Nodes   int
	Cutoffs int
	Elapsed time.Duration
}

// Engine searches positions using an oracle for move generation. An Engine
// holds no state between searches other than an optional trace, so one may
// serve many games, but a single search must not run concurrently with
// another one sharing the same trace.
type Engine struct {
	oracle game.Oracle
	logger *zap.Logger
	trace  *Trace
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTrace records the tree explored by each search into t.
func WithTrace(t *Trace) Option {
	return func(e *Engine) { e.trace = t }
}

func NewEngine(oracle game.Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle: oracle,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ChooseMove returns the best move for the side to move in p, scoring from
// side's point of view. Ties go to the move enumerated first by the oracle,
// so identical inputs give identical answers. p is never modified.
func (e *Engine) ChooseMove(ctx context.Context, p game.Position, side game.Side, conf Config) (Result, error) {
	if !conf.IsValid() {
		return Result{}, errors.Errorf("search: invalid config %+v", conf)
	}
	start := time.Now()
	moves := e.oracle.LegalMoves(p)
	if len(moves) == 0 {
		return Result{}, errors.Wrapf(ErrNoLegalMoves, "%q", p.FEN())
	}

	s := &searchState{
		ctx:    ctx,
		oracle: e.oracle,
		side:   side,
		trace:  e.trace,
		limit:  conf.Nodes,
	}
	if conf.Timeout > 0 {
		s.deadline = start.Add(conf.Timeout)
	}

	var res Result
	if !conf.Bounded() {
		res = s.root(p, moves, conf.Depth)
	} else {
		res = Result{Move: moves[0], Score: -infinity}
		for depth := 1; depth <= conf.Depth; depth++ {
			r := s.root(p, moves, depth)
			if s.stopped {
				// an unfinished first iteration still beats a blind guess
				if depth == 1 && r.Score > -infinity {
					res = r
				}
				break
			}
			res = r
		}
	}
	if s.err != nil {
		return Result{}, s.err
	}

	res.Nodes = s.nodes
	res.Cutoffs = s.cutoffs
	res.Elapsed = time.Since(start)
	e.logger.Debug("search finished",
		zap.String("fen", p.FEN()),
		zap.Stringer("side", side),
		zap.Stringer("move", res.Move),
		zap.Int("score", res.Score),
		zap.Int("depth", res.Depth),
		zap.Int("nodes", res.Nodes),
		zap.Int("cutoffs", res.Cutoffs),
		zap.Bool("stopped", s.stopped),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

type searchState struct {
	ctx      context.Context
	oracle   game.Oracle
	side     game.Side
	trace    *Trace
	deadline time.Time
	limit    int

	nodes   int
	cutoffs int
	stopped bool
	err     error
}

// exhausted reports whether the budget has run out. Once it has, every
// frame unwinds without looking further.
func (s *searchState) exhausted() bool {
	if s.stopped || s.err != nil {
		return true
	}
	switch {
	case s.limit > 0 && s.nodes >= s.limit:
		s.stopped = true
	case !s.deadline.IsZero() && !time.Now().Before(s.deadline):
		s.stopped = true
	case s.ctx.Err() != nil:
		s.stopped = true
	}
	return s.stopped
}

// root searches every move of p to the given depth. On a stopped search the
// result holds the best move among those fully examined; Score is
// -infinity when there is none.
func (s *searchState) root(p game.Position, moves []game.Move, depth int) Result {
	s.trace.reset(p)
	maximizing := p.Turn == s.side
	res := Result{Move: moves[0], Score: -infinity, Depth: depth}
	best := -infinity
	if !maximizing {
		best = infinity
	}
	alpha, beta := -infinity, infinity
	for _, m := range moves {
		child, err := s.oracle.Apply(p, m)
		if err != nil {
			s.err = errors.Wrap(err, "search: oracle rejected its own move")
			return res
		}
		id := s.trace.push(0, m)
		v := s.alphabeta(child, depth-1, 1, alpha, beta, id)
		if s.stopped || s.err != nil {
			s.trace.unfinished(id)
			break
		}
		s.trace.score(id, v)
		if maximizing && v > best || !maximizing && v < best {
			best = v
			res.Move = m
			res.Score = v
		}
		if maximizing && best > alpha {
			alpha = best
		}
		if !maximizing && best < beta {
			beta = best
		}
	}
	s.trace.score(0, res.Score)
	return res
}

func (s *searchState) alphabeta(p game.Position, depth, ply, alpha, beta, parent int) int {
	s.nodes++
	if s.exhausted() {
		return DrawScore
	}

	if depth == 0 {
		return s.leaf(p, ply)
	}
	moves := s.oracle.LegalMoves(p)
	if len(moves) == 0 {
		return s.leaf(p, ply)
	}
	if game.DrawStatus(p, nil).IsTerminal() {
		return DrawScore
	}

	maximizing := p.Turn == s.side
	best := infinity
	if maximizing {
		best = -infinity
	}
	for i, m := range moves {
		child, err := s.oracle.Apply(p, m)
		if err != nil {
			s.err = errors.Wrap(err, "search: oracle rejected its own move")
			return best
		}
		id := s.trace.push(parent, m)
		v := s.alphabeta(child, depth-1, ply+1, alpha, beta, id)
		if s.stopped || s.err != nil {
			s.trace.unfinished(id)
			return best
		}
		s.trace.score(id, v)
		if maximizing {
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if v < best {
				best = v
			}
			if best < beta {
				beta = best
			}
		}
		if beta <= alpha {
			s.cutoffs++
			s.trace.pruned(parent, len(moves)-i-1)
			break
		}
	}
	return best
}

// leaf scores a position without looking further ahead.
func (s *searchState) leaf(p game.Position, ply int) int {
	switch status := s.oracle.Classify(p, nil); {
	case status == game.Checkmate:
		// the side to move has been mated
		if p.Turn == s.side {
			return -(MateScore - ply)
		}
		return MateScore - ply
	case status.IsDraw():
		return DrawScore
	}
	return Evaluate(p, s.side)
}
