package alphabeth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/alphabeth/game"
)

// An Agent is a computer player: a side and the searcher that moves for it.
type Agent struct {
	Side     game.Side
	Searcher Searcher

	// Statistics
	Wins    int
	Loss    int
	Draw    int
	Moves   int
	Nodes   int
	Elapsed time.Duration
	sync.Mutex

	name string
}

func NewAgent(name string, side game.Side, s Searcher) *Agent {
	return &Agent{
		Side:     side,
		Searcher: s,
		name:     name,
	}
}

func (a *Agent) Name() string { return a.name }

// Search asks the searcher for a move in p without committing it.
func (a *Agent) Search(ctx context.Context, p game.Position) (game.Move, error) {
	start := time.Now()
	m, err := a.Searcher.ChooseMove(ctx, p, a.Side)
	if err != nil {
		return game.NoMove, errors.WithMessagef(err, "agent %s", a.name)
	}
	a.Lock()
	a.Elapsed += time.Since(start)
	if r, ok := a.Searcher.(resultReporter); ok {
		a.Nodes += r.LastResult().Nodes
	}
	a.Unlock()
	return m, nil
}

// Respond moves for the agent when it is its turn and the game goes on.
// The move goes through the same commit path as a human move.
func (a *Agent) Respond(ctx context.Context, g *game.Machine) (moved bool, err error) {
	if g.Turn() != a.Side || g.TerminalStatus().IsTerminal() {
		return false, nil
	}
	if err = g.Aborted(); err != nil {
		return false, game.ErrSessionAborted
	}
	m, err := a.Search(ctx, g.Position())
	if err != nil {
		return false, err
	}
	if err = g.Commit(m); err != nil {
		return false, errors.WithMessagef(err, "agent %s", a.name)
	}
	a.countMove()
	return true, nil
}

func (a *Agent) countMove() {
	a.Lock()
	a.Moves++
	a.Unlock()
}

func (a *Agent) Close() error {
	if a.Searcher == nil {
		return nil
	}
	return errors.WithMessagef(a.Searcher.Close(), "closing agent %s", a.name)
}

func (a *Agent) record(result game.Status, winner game.Side) {
	a.Lock()
	defer a.Unlock()
	switch {
	case result.IsDraw():
		a.Draw++
	case result == game.Checkmate && winner == a.Side:
		a.Wins++
	case result == game.Checkmate:
		a.Loss++
	}
}

func (a *Agent) resetStats() {
	a.Lock()
	a.Wins = 0
	a.Loss = 0
	a.Draw = 0
	a.Moves = 0
	a.Nodes = 0
	a.Elapsed = 0
	a.Unlock()
}
