// Package term is the terminal front end: it draws a Session with tcell and
// turns clicks and keys into game actions.
package term

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alphabeth"
	"github.com/alphabeth/game"
)

// SquareActivated is the message produced by a click on a board square.
type SquareActivated struct {
	Square game.Square
}

// searchDone carries a background search result back to the event loop.
type searchDone struct {
	id   uint64
	snap alphabeth.Snapshot
	move game.Move
	err  error
}

type quitRequested struct{}

// UI runs one session on a screen. The session should be created with
// alphabeth.WithDeferredReplies so that the computer thinks in the
// background while the screen stays live.
type UI struct {
	screen  tcell.Screen
	session *alphabeth.Session
	theme   Theme
	logger  *zap.Logger

	ctx      context.Context
	pressed  bool
	searchID uint64
	thinking bool
	cancel   context.CancelFunc
	msg      string
}

type Option func(*UI)

func WithTheme(t Theme) Option {
	return func(u *UI) { u.theme = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(u *UI) {
		if l != nil {
			u.logger = l
		}
	}
}

func New(screen tcell.Screen, s *alphabeth.Session, opts ...Option) *UI {
	u := &UI{
		screen:  screen,
		session: s,
		theme:   ThemeBasic,
		logger:  zap.NewNop(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Flipped reports whether the board is drawn from Black's side, which is
// the case when the human plays Black against the computer.
func (u *UI) Flipped() bool {
	conf := u.session.Config()
	return conf.ComputerEnabled && conf.ComputerSide == game.White
}

// Thinking reports whether a computer search is running.
func (u *UI) Thinking() bool { return u.thinking }

// Message returns the status line.
func (u *UI) Message() string { return u.msg }

// SquareAt maps screen coordinates to the board square drawn there.
func (u *UI) SquareAt(x, y int) (game.Square, bool) {
	if x < boardLeft || y < topMargin {
		return game.NoSquare, false
	}
	col := (x - boardLeft) / squareWidth
	row := y - topMargin
	if col >= game.ColNum || row >= game.RowNum {
		return game.NoSquare, false
	}
	return screenSquare(row, col, u.Flipped()), true
}

// Run draws the session and processes events until the user quits or ctx
// is done.
func (u *UI) Run(ctx context.Context) error {
	u.ctx = ctx
	u.screen.EnableMouse()
	go func() {
		<-ctx.Done()
		u.screen.PostEvent(tcell.NewEventInterrupt(quitRequested{}))
	}()

	u.think()
	u.Draw()
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			u.stopThinking()
			return nil
		}
		if u.Handle(ev) {
			u.stopThinking()
			return nil
		}
		u.Draw()
	}
}

// Handle dispatches one event and reports whether the UI should quit.
func (u *UI) Handle(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !u.pressed {
			x, y := ev.Position()
			if sq, ok := u.SquareAt(x, y); ok {
				u.Dispatch(SquareActivated{Square: sq})
			}
		}
		u.pressed = pressed
	case *tcell.EventKey:
		return u.handleKey(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case searchDone:
			u.finishSearch(data)
		case quitRequested:
			return true
		}
	}
	return false
}

func (u *UI) handleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'u':
		u.stopThinking()
		u.report(u.session.Undo())
	case 'r':
		u.stopThinking()
		u.report(u.session.Redo())
	case 'n':
		u.stopThinking()
		u.report(u.session.Reset(u.ctx))
	}
	u.think()
	return false
}

// Dispatch applies a board message. Clicks are ignored while the computer
// is thinking.
func (u *UI) Dispatch(msg SquareActivated) {
	if u.thinking {
		return
	}
	moved, err := u.session.Activate(u.ctx, msg.Square)
	u.report(err)
	if moved {
		u.think()
	}
}

func (u *UI) report(err error) {
	switch {
	case err == nil, errors.Is(err, game.ErrIllegalMove):
		u.msg = ""
	case errors.Is(err, game.ErrNoMoveToUndo), errors.Is(err, game.ErrNoMoveToRedo):
		u.msg = err.Error()
	case errors.Is(err, game.ErrSessionAborted):
		u.msg = "the game was aborted, press n for a new game"
	default:
		u.logger.Error("session error", zap.Error(err))
		u.msg = err.Error()
	}
}

// think starts a background search when the computer is to move.
func (u *UI) think() {
	if u.thinking || !u.session.ComputerToMove() {
		return
	}
	u.searchID++
	id := u.searchID
	snap := u.session.Snapshot()
	ctx, cancel := context.WithCancel(u.ctx)
	u.cancel = cancel
	u.thinking = true
	u.msg = "thinking..."

	go func() {
		m, err := u.session.Search(ctx, snap)
		u.screen.PostEvent(tcell.NewEventInterrupt(searchDone{id: id, snap: snap, move: m, err: err}))
	}()
}

// stopThinking abandons the running search. Its result is dropped when it
// arrives.
func (u *UI) stopThinking() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.thinking = false
}

func (u *UI) finishSearch(done searchDone) {
	if done.id != u.searchID || !u.thinking {
		u.logger.Debug("dropping abandoned search", zap.Uint64("search", done.id))
		return
	}
	u.stopThinking()
	u.msg = ""
	if done.err != nil {
		u.report(errors.WithMessage(done.err, "computer"))
		return
	}
	applied, err := u.session.ApplyResult(done.snap, done.move)
	if err != nil {
		u.report(err)
		return
	}
	if applied {
		u.msg = fmt.Sprintf("computer played %v", done.move)
	}
	u.think()
}

// Draw renders the whole screen.
func (u *UI) Draw() {
	v := u.session.View()
	human := game.White
	if conf := u.session.Config(); conf.ComputerEnabled {
		human = conf.ComputerSide.Other()
	}

	drawMoveLabel(u.screen, v, u.theme)
	drawBoard(u.screen, v, u.theme, u.Flipped())
	drawMeter(u.screen, u.session.Machine().Position(), human, u.theme)
	drawMoves(u.screen, v, u.theme)
	DrawMsgLabel(u.screen, u.msg, u.theme)
	drawHelp(u.screen, v, u.theme)
	u.screen.Show()
}
