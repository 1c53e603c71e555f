// Package uciengine drives an external UCI engine such as Stockfish as a
// computer opponent.
package uciengine

import (
	"context"
	"sync"
	"time"

	"github.com/notnil/chess/uci"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
	"github.com/alphabeth/search"
)

// DefaultPath is looked up on PATH when Config.Path is empty.
const DefaultPath = "stockfish"

// Config selects the engine binary and how long it may think. MoveTime wins
// over Depth when both are set.
type Config struct {
	Path     string            `json:"path"`
	Depth    int               `json:"depth"`
	MoveTime time.Duration     `json:"move_time"`
	Options  map[string]string `json:"options"`
}

func DefaultConfig() Config {
	return Config{
		Path:  DefaultPath,
		Depth: 10,
	}
}

func (c Config) IsValid() bool {
	return (c.Depth > 0 || c.MoveTime > 0) && c.Depth >= 0 && c.MoveTime >= 0
}

// FromSearch maps a search budget onto engine limits.
func FromSearch(path string, conf search.Config) Config {
	return Config{
		Path:     path,
		Depth:    conf.Depth,
		MoveTime: conf.Timeout,
	}
}

// Engine is a running engine process. It is released by Close.
type Engine struct {
	conf   Config
	oracle game.Oracle
	logger *zap.Logger

	mu   sync.Mutex // one search at a time
	eng  *uci.Engine
	last search.Result
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOracle sets the oracle used to validate the engine's answers.
func WithOracle(o game.Oracle) Option {
	return func(e *Engine) {
		if o != nil {
			e.oracle = o
		}
	}
}

// New starts the engine and runs the UCI handshake.
func New(conf Config, opts ...Option) (*Engine, error) {
	if conf.Path == "" {
		conf.Path = DefaultPath
	}
	if !conf.IsValid() {
		return nil, errors.Errorf("uciengine: invalid config %+v", conf)
	}
	e := &Engine{
		conf:   conf,
		oracle: rules.Standard{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	eng, err := uci.New(conf.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "uciengine: starting %s", conf.Path)
	}
	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	for name, value := range conf.Options {
		cmds = append(cmds, uci.CmdSetOption{Name: name, Value: value})
	}
	cmds = append(cmds, uci.CmdUCINewGame)
	if err = eng.Run(cmds...); err != nil {
		eng.Close()
		return nil, errors.Wrap(err, "uciengine: handshake")
	}
	e.eng = eng
	e.logger.Debug("engine started", zap.String("path", conf.Path), zap.Int("depth", conf.Depth), zap.Duration("movetime", conf.MoveTime))
	return e, nil
}

// ChooseMove asks the engine for its best move in p. The engine always
// answers for the side to move; side only orients the reported score.
// A cancelled ctx returns immediately, the engine finishing its search in
// the background.
func (e *Engine) ChooseMove(ctx context.Context, p game.Position, side game.Side) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return game.NoMove, errors.WithStack(err)
	}
	pos, err := rules.NotnilPosition(p)
	if err != nil {
		return game.NoMove, err
	}

	type answer struct {
		res uci.SearchResults
		err error
	}
	done := make(chan answer, 1)
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.eng == nil {
			done <- answer{err: errors.New("uciengine: engine closed")}
			return
		}
		cmdGo := uci.CmdGo{Depth: e.conf.Depth}
		if e.conf.MoveTime > 0 {
			cmdGo = uci.CmdGo{MoveTime: e.conf.MoveTime}
		}
		err := e.eng.Run(uci.CmdPosition{Position: pos}, cmdGo)
		done <- answer{res: e.eng.SearchResults(), err: err}
	}()

	var ans answer
	select {
	case <-ctx.Done():
		return game.NoMove, errors.WithStack(ctx.Err())
	case ans = <-done:
	}
	if ans.err != nil {
		return game.NoMove, errors.Wrap(ans.err, "uciengine: search")
	}
	if ans.res.BestMove == nil {
		return game.NoMove, errors.Wrapf(search.ErrNoLegalMoves, "%q", p.FEN())
	}

	m, err := game.ParseMove(ans.res.BestMove.String())
	if err != nil {
		return game.NoMove, errors.Wrap(err, "uciengine: decoding best move")
	}
	legal, ok := game.FindMove(e.oracle.LegalMoves(p), m)
	if !ok {
		return game.NoMove, errors.Wrapf(game.ErrIllegalMove, "uciengine: engine answered %v in %q", m, p.FEN())
	}

	score := ans.res.Info.Score.CP
	if ans.res.Info.Score.Mate != 0 {
		score = search.MateScore - abs(ans.res.Info.Score.Mate)
		if ans.res.Info.Score.Mate < 0 {
			score = -score
		}
	}
	if p.Turn != side {
		score = -score
	}
	res := search.Result{
		Move:  legal,
		Score: score,
		Depth: ans.res.Info.Depth,
		Nodes: ans.res.Info.Nodes,
	}
	e.mu.Lock()
	e.last = res
	e.mu.Unlock()
	e.logger.Debug("engine answered",
		zap.String("fen", p.FEN()),
		zap.Stringer("move", legal),
		zap.Int("score", score),
		zap.Int("depth", res.Depth),
		zap.Int("nodes", res.Nodes),
	)
	return legal, nil
}

// LastResult returns the engine's report for its latest answer. Scores are
// in centipawns.
func (e *Engine) LastResult() search.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Close stops the engine process. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.eng == nil {
		return nil
	}
	err := e.eng.Close()
	e.eng = nil
	return errors.Wrap(err, "uciengine: close")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
