// Package alphabeth runs chess games between a human and an optional
// computer opponent, and between two computer players.
package alphabeth

import (
	"context"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alphabeth/game"
	"github.com/alphabeth/search"
)

// Session is the top level structure and the entry point of the API. It
// wraps a game.Machine with the computer opponent that answers human moves.
//
// By default the opponent replies synchronously inside Start, Activate and
// Reset. Interactive front ends that search in the background use
// WithDeferredReplies and drive the opponent with Snapshot, Search and
// ApplyResult.
type Session struct {
	ID   uuid.UUID
	Name string

	oracle      game.Oracle
	logger      *zap.Logger
	newSearcher SearcherFactory
	deferred    bool

	sync.Mutex
	conf       Config
	machine    *game.Machine
	agent      *Agent // nil when playing human against human
	generation uint64
	closed     bool
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSearcherFactory replaces the built-in alpha-beta opponent, e.g. by an
// external UCI engine.
func WithSearcherFactory(f SearcherFactory) Option {
	return func(s *Session) {
		if f != nil {
			s.newSearcher = f
		}
	}
}

// WithDeferredReplies stops the session from searching on its own.
func WithDeferredReplies() Option {
	return func(s *Session) { s.deferred = true }
}

// Snapshot identifies the position a background search was started from.
type Snapshot struct {
	Position   game.Position
	Side       game.Side
	Generation uint64
}

// New creates a session. The searcher of the computer opponent is acquired
// here and released by Close.
func New(conf Config, oracle game.Oracle, opts ...Option) (*Session, error) {
	s := &Session{
		ID:     uuid.New(),
		oracle: oracle,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newSearcher == nil {
		s.newSearcher = s.defaultSearcher
	}
	if err := s.configure(conf); err != nil {
		return nil, err
	}
	s.logger = s.logger.With(zap.String("session", s.Name), zap.Stringer("id", s.ID))
	return s, nil
}

func (s *Session) defaultSearcher(conf Config, oracle game.Oracle) (Searcher, error) {
	e := search.NewEngine(oracle, search.WithLogger(s.logger))
	return NewEngineSearcher(e, conf.SearchConfig()), nil
}

func (s *Session) configure(conf Config) error {
	if !conf.IsValid() {
		return errors.Errorf("invalid session config %+v", conf)
	}
	initial, err := conf.InitialPosition()
	if err != nil {
		return errors.WithMessage(err, "initial position")
	}
	m := game.NewMachine(s.oracle, initial)
	if err = m.SetPromotion(conf.Promotion); err != nil {
		return err
	}

	var agent *Agent
	if conf.ComputerEnabled {
		searcher, err := s.newSearcher(conf, s.oracle)
		if err != nil {
			return errors.WithMessage(err, "creating searcher")
		}
		agent = NewAgent("computer", conf.ComputerSide, searcher)
	}
	if conf.Name == "" {
		conf.Name = petname.Generate(2, "-")
	}

	s.conf = conf
	s.Name = conf.Name
	s.machine = m
	s.agent = agent
	s.generation++
	return nil
}

func (s *Session) Config() Config {
	s.Lock()
	defer s.Unlock()
	return s.conf
}

// Machine exposes the underlying game. Callers must not mutate it while the
// session is in use.
func (s *Session) Machine() *game.Machine { return s.machine }

// Agent returns the computer opponent, or nil.
func (s *Session) Agent() *Agent {
	s.Lock()
	defer s.Unlock()
	return s.agent
}

// Generation changes whenever the game is reset or the history is rewound,
// invalidating any search in flight.
func (s *Session) Generation() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.generation
}

// Start lets the computer move first when it plays the side to move.
func (s *Session) Start(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()
	return s.reply(ctx)
}

// ComputerToMove reports whether the opponent is expected to move next.
func (s *Session) ComputerToMove() bool {
	s.Lock()
	defer s.Unlock()
	return s.computerToMove()
}

func (s *Session) computerToMove() bool {
	return s.agent != nil &&
		s.machine.Aborted() == nil &&
		s.machine.Turn() == s.agent.Side &&
		!s.machine.TerminalStatus().IsTerminal()
}

// Activate handles a click on sq: it selects a piece or moves the selected
// one. After a human move the computer replies unless replies are deferred.
// A click while the computer is to move makes it reply instead, or is ignored
// when replies are deferred.
func (s *Session) Activate(ctx context.Context, sq game.Square) (moved bool, err error) {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return false, errors.New("session closed")
	}
	if s.computerToMove() {
		return false, s.reply(ctx)
	}
	if moved, err = s.machine.SelectOrMove(sq); err != nil {
		return false, s.check(err)
	}
	if !moved {
		return false, nil
	}
	return true, s.reply(ctx)
}

func (s *Session) reply(ctx context.Context) error {
	if s.deferred || !s.computerToMove() {
		return nil
	}
	moved, err := s.agent.Respond(ctx, s.machine)
	if err != nil {
		return s.check(err)
	}
	if moved {
		last, _ := s.machine.LastMove()
		s.logger.Info("computer moved",
			zap.Stringer("move", last),
			zap.String("fen", s.machine.Position().FEN()),
			zap.Stringer("status", s.machine.TerminalStatus()),
		)
	}
	return nil
}

// Snapshot captures what a background search needs.
func (s *Session) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()
	return Snapshot{
		Position:   s.machine.Position(),
		Side:       s.machine.Turn(),
		Generation: s.generation,
	}
}

// Search runs the opponent's searcher on a snapshot. It does not hold the
// session lock, so the game stays responsive while it runs.
func (s *Session) Search(ctx context.Context, snap Snapshot) (game.Move, error) {
	agent := s.Agent()
	if agent == nil {
		return game.NoMove, errors.New("no computer opponent")
	}
	return agent.Search(ctx, snap.Position)
}

// ApplyResult commits a move found by a background search. Results for a
// snapshot that no longer matches the game are discarded and reported as
// not applied.
func (s *Session) ApplyResult(snap Snapshot, m game.Move) (applied bool, err error) {
	s.Lock()
	defer s.Unlock()
	if snap.Generation != s.generation || snap.Position != s.machine.Position() || !s.computerToMove() {
		s.logger.Debug("discarding stale search result",
			zap.Stringer("move", m),
			zap.Uint64("generation", snap.Generation),
			zap.Uint64("current", s.generation),
		)
		return false, nil
	}
	if err = s.machine.Commit(m); err != nil {
		return false, s.check(err)
	}
	s.agent.countMove()
	s.logger.Info("computer moved",
		zap.Stringer("move", m),
		zap.String("fen", s.machine.Position().FEN()),
		zap.Stringer("status", s.machine.TerminalStatus()),
	)
	return true, nil
}

// CanUndo reports whether Undo would succeed. Against the computer only
// positions where the human is to move are reachable, so its opening move
// cannot be taken back.
func (s *Session) CanUndo() bool {
	s.Lock()
	defer s.Unlock()
	return s.canUndo()
}

func (s *Session) canUndo() bool {
	if !s.machine.CanUndo() {
		return false
	}
	if s.agent == nil {
		return true
	}
	for _, p := range s.machine.Positions()[:s.machine.MoveNumber()] {
		if p.Turn != s.agent.Side {
			return true
		}
	}
	return false
}

func (s *Session) CanRedo() bool {
	s.Lock()
	defer s.Unlock()
	return s.machine.CanRedo()
}

// Undo takes back the last move. Against the computer it also takes back
// the computer's reply so that the human is on move again.
func (s *Session) Undo() error {
	s.Lock()
	defer s.Unlock()
	if err := s.machine.Aborted(); err != nil {
		return game.ErrSessionAborted
	}
	if !s.canUndo() {
		return game.ErrNoMoveToUndo
	}
	s.generation++
	if err := s.machine.Undo(); err != nil {
		return s.check(err)
	}
	if s.agent != nil && s.machine.Turn() == s.agent.Side {
		return s.check(s.machine.Undo())
	}
	return nil
}

// Redo replays what Undo took back, again stepping over the computer's
// reply.
func (s *Session) Redo() error {
	s.Lock()
	defer s.Unlock()
	s.generation++
	if err := s.machine.Redo(); err != nil {
		return s.check(err)
	}
	if s.agent != nil && s.machine.Turn() == s.agent.Side && s.machine.CanRedo() {
		return s.check(s.machine.Redo())
	}
	return nil
}

// Reset starts the game over with the same configuration. Searches started
// before the reset are discarded when they report back.
func (s *Session) Reset(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()
	s.machine.Reset()
	s.generation++
	s.logger.Info("game reset", zap.Uint64("generation", s.generation))
	return s.reply(ctx)
}

// Reconfigure replaces the configuration, releasing the current searcher,
// and starts a new game.
func (s *Session) Reconfigure(ctx context.Context, conf Config) error {
	s.Lock()
	defer s.Unlock()
	old := s.agent
	if err := s.configure(conf); err != nil {
		return err
	}
	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("releasing searcher", zap.Error(err))
		}
	}
	s.logger.Info("game reconfigured", zap.Bool("computer", conf.ComputerEnabled))
	return s.reply(ctx)
}

// View returns the board as the renderer sees it, with undo availability
// as the session defines it.
func (s *Session) View() game.View {
	s.Lock()
	defer s.Unlock()
	v := s.machine.View()
	v.CanUndo = s.canUndo()
	return v
}

// Close releases the searcher. It is safe to call more than once.
func (s *Session) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs error
	if s.agent != nil {
		if err := s.agent.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// check logs invariant violations, which abort the game until Reset.
func (s *Session) check(err error) error {
	if err == nil {
		return nil
	}
	var inv *game.InvariantError
	if errors.As(err, &inv) {
		s.logger.Error("game aborted",
			zap.String("op", inv.Op),
			zap.Stringer("move", inv.Move),
			zap.String("fen", inv.FEN),
			zap.Error(inv.Err),
		)
	}
	return err
}
