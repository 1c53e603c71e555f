package alphabeth

import (
	"context"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/alphabeth/game"
)

// DefaultMaxPlies ends arena games that neither side manages to finish.
const DefaultMaxPlies = 300

// Arena plays computer players against each other. Agent A starts as White;
// Swap exchanges colours between games.
type Arena struct {
	oracle game.Oracle
	start  game.Position
	a, b   *Agent
	logger *zap.Logger

	name     string
	maxPlies int
	games    []GameRecord
}

// GameRecord is the outcome of one arena game.
type GameRecord struct {
	Number  int
	White   string // agent names
	Black   string
	Status  game.Status // Ongoing when the ply limit was hit
	Winner  game.Side   // meaningful for Checkmate only
	Plies   int
	Moves   string
	Nodes   int
	Elapsed time.Duration
}

// Result returns the score in PGN notation.
func (r GameRecord) Result() string {
	switch {
	case r.Status == game.Checkmate && r.Winner == game.White:
		return "1-0"
	case r.Status == game.Checkmate:
		return "0-1"
	case r.Status.IsDraw():
		return "1/2-1/2"
	}
	return "*"
}

type ArenaOption func(*Arena)

func WithArenaLogger(l *zap.Logger) ArenaOption {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMaxPlies(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.maxPlies = n
		}
	}
}

// WithStart plays every game from p instead of the standard start.
func WithStart(p game.Position) ArenaOption {
	return func(a *Arena) { a.start = p }
}

func WithName(name string) ArenaOption {
	return func(a *Arena) {
		if name != "" {
			a.name = name
		}
	}
}

// NewArena pairs two searchers. The arena owns them and releases them in
// Close.
func NewArena(oracle game.Oracle, a, b Searcher, opts ...ArenaOption) *Arena {
	retVal := &Arena{
		oracle:   oracle,
		start:    game.StartPosition(),
		a:        NewAgent("A", game.White, a),
		b:        NewAgent("B", game.Black, b),
		logger:   zap.NewNop(),
		name:     petname.Generate(2, "-"),
		maxPlies: DefaultMaxPlies,
	}
	for _, opt := range opts {
		opt(retVal)
	}
	return retVal
}

func (a *Arena) Name() string { return a.name }

// Agents returns agent A and agent B.
func (a *Arena) Agents() (*Agent, *Agent) { return a.a, a.b }

// Games returns the records of the games played so far.
func (a *Arena) Games() []GameRecord {
	return append([]GameRecord(nil), a.games...)
}

// Swap exchanges the colours of the two agents.
func (a *Arena) Swap() {
	a.a.Side, a.b.Side = a.b.Side, a.a.Side
}

// Play plays one game to its end or to the ply limit and records who won.
func (a *Arena) Play(ctx context.Context) (GameRecord, error) {
	white, black := a.a, a.b
	if white.Side != game.White {
		white, black = black, white
	}
	nodesBefore := white.Nodes + black.Nodes

	start := time.Now()
	g := game.NewMachine(a.oracle, a.start)
	for g.MoveNumber() < a.maxPlies && !g.TerminalStatus().IsTerminal() {
		if err := ctx.Err(); err != nil {
			return GameRecord{}, errors.WithStack(err)
		}
		current := white
		if g.Turn() == game.Black {
			current = black
		}
		if _, err := current.Respond(ctx, g); err != nil {
			return GameRecord{}, errors.WithMessagef(err, "game %d, ply %d", len(a.games)+1, g.MoveNumber())
		}
	}

	rec := GameRecord{
		Number:  len(a.games) + 1,
		White:   white.Name(),
		Black:   black.Name(),
		Status:  g.TerminalStatus(),
		Winner:  g.Turn().Other(),
		Plies:   g.MoveNumber(),
		Moves:   g.MoveList(),
		Nodes:   white.Nodes + black.Nodes - nodesBefore,
		Elapsed: time.Since(start),
	}
	white.record(rec.Status, rec.Winner)
	black.record(rec.Status, rec.Winner)
	a.games = append(a.games, rec)

	a.logger.Info("arena game finished",
		zap.String("arena", a.name),
		zap.Int("game", rec.Number),
		zap.String("white", rec.White),
		zap.String("black", rec.Black),
		zap.String("result", rec.Result()),
		zap.Stringer("status", rec.Status),
		zap.Int("plies", rec.Plies),
		zap.Int("nodes", rec.Nodes),
		zap.Duration("elapsed", rec.Elapsed),
	)
	return rec, nil
}

// Summary aggregates the games played so far.
type Summary struct {
	Games      int
	WhiteWins  int
	BlackWins  int
	Draws      int
	Unfinished int

	MeanPlies, StdPlies float64
	MeanNodes, StdNodes float64
}

func (a *Arena) Summary() Summary {
	var s Summary
	plies := make([]float64, 0, len(a.games))
	nodes := make([]float64, 0, len(a.games))
	for _, g := range a.games {
		s.Games++
		switch g.Result() {
		case "1-0":
			s.WhiteWins++
		case "0-1":
			s.BlackWins++
		case "1/2-1/2":
			s.Draws++
		default:
			s.Unfinished++
		}
		plies = append(plies, float64(g.Plies))
		nodes = append(nodes, float64(g.Nodes))
	}
	if len(a.games) == 0 {
		return s
	}
	s.MeanPlies, s.StdPlies = stat.MeanStdDev(plies, nil)
	s.MeanNodes, s.StdNodes = stat.MeanStdDev(nodes, nil)
	return s
}

// Reset forgets past games and the agents' statistics.
func (a *Arena) Reset() {
	a.games = nil
	a.a.resetStats()
	a.b.resetStats()
}

func (a *Arena) Close() error {
	var errs error
	for _, agent := range []*Agent{a.a, a.b} {
		if err := agent.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}
