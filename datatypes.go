package alphabeth

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/alphabeth/game"
	"github.com/alphabeth/search"
)

// Config for a Session. It is fixed for the lifetime of a game; use
// Session.Reconfigure to replace it.
type Config struct {
	Name            string            `json:"name"`
	ComputerEnabled bool              `json:"computer_enabled"`
	ComputerSide    game.Side         `json:"computer_side"`
	Difficulty      search.Difficulty `json:"difficulty"`
	// Search overrides the budget derived from Difficulty.
	Search *search.Config `json:"search,omitempty"`
	// Promotion is the piece a pawn becomes when moved by selection.
	Promotion game.PieceKind `json:"promotion"`
	// FEN of the initial position. Empty means the standard start.
	FEN string `json:"fen,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		ComputerEnabled: true,
		ComputerSide:    game.Black,
		Difficulty:      search.Medium,
		Promotion:       game.Queen,
	}
}

func (c Config) IsValid() bool {
	if c.ComputerSide != game.White && c.ComputerSide != game.Black {
		return false
	}
	if c.Search != nil && !c.Search.IsValid() {
		return false
	}
	switch c.Promotion {
	case game.Knight, game.Bishop, game.Rook, game.Queen:
	default:
		return false
	}
	return c.Difficulty >= search.Easy && c.Difficulty <= search.Hard
}

// SearchConfig returns the budget of the computer opponent.
func (c Config) SearchConfig() search.Config {
	if c.Search != nil {
		return *c.Search
	}
	return c.Difficulty.Config()
}

// InitialPosition parses FEN, falling back to the standard start.
func (c Config) InitialPosition() (game.Position, error) {
	if c.FEN == "" {
		return game.StartPosition(), nil
	}
	return game.ParseFEN(c.FEN)
}

// LoadConfig reads a JSON config from path. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return conf, errors.WithStack(err)
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(&conf); err != nil {
		return conf, errors.Wrapf(err, "decoding %s", path)
	}
	if !conf.IsValid() {
		return conf, errors.Errorf("invalid config in %s: %+v", path, conf)
	}
	return conf, nil
}

// Searcher is anything that can pick a move for side in a position. It
// holds resources (an engine process, a trace) that are released by Close.
type Searcher interface {
	ChooseMove(ctx context.Context, p game.Position, side game.Side) (game.Move, error)
	io.Closer
}

// SearcherFactory builds the searcher for a session's computer opponent.
type SearcherFactory func(conf Config, oracle game.Oracle) (Searcher, error)

// resultReporter is implemented by searchers that expose search statistics.
type resultReporter interface {
	LastResult() search.Result
}

// EngineSearcher adapts a *search.Engine to a Searcher with a fixed budget.
type EngineSearcher struct {
	Engine *search.Engine
	Config search.Config

	sync.Mutex
	last search.Result
}

var _ Searcher = (*EngineSearcher)(nil)

func NewEngineSearcher(e *search.Engine, conf search.Config) *EngineSearcher {
	return &EngineSearcher{Engine: e, Config: conf}
}

func (s *EngineSearcher) ChooseMove(ctx context.Context, p game.Position, side game.Side) (game.Move, error) {
	res, err := s.Engine.ChooseMove(ctx, p, side, s.Config)
	if err != nil {
		return game.NoMove, err
	}
	s.Lock()
	s.last = res
	s.Unlock()
	return res.Move, nil
}

// LastResult returns the statistics of the latest successful search.
func (s *EngineSearcher) LastResult() search.Result {
	s.Lock()
	defer s.Unlock()
	return s.last
}

func (s *EngineSearcher) Close() error { return nil }
