package term

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alphabeth"
	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
	"github.com/alphabeth/search"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 30)
	t.Cleanup(s.Fini)
	return s
}

func newSession(t *testing.T, computer bool, side game.Side) *alphabeth.Session {
	t.Helper()
	conf := alphabeth.DefaultConfig()
	conf.ComputerEnabled = computer
	conf.ComputerSide = side
	conf.Difficulty = search.Easy
	s, err := alphabeth.New(conf, rules.Standard{}, alphabeth.WithDeferredReplies())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// screenXY returns the screen cell of sq.
func screenXY(u *UI, sq game.Square) (int, int) {
	for row := 0; row < game.RowNum; row++ {
		for col := 0; col < game.ColNum; col++ {
			if screenSquare(row, col, u.Flipped()) == sq {
				return boardLeft + col*squareWidth, topMargin + row
			}
		}
	}
	return -1, -1
}

func click(u *UI, sq game.Square) {
	x, y := screenXY(u, sq)
	u.Handle(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	u.Handle(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func press(u *UI, r rune) bool {
	return u.Handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

// waitSearch feeds screen events to the UI until the running search has
// reported back.
func waitSearch(t *testing.T, screen tcell.Screen, u *UI) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		events := make(chan tcell.Event, 1)
		go func() { events <- screen.PollEvent() }()
		select {
		case ev := <-events:
			if _, ok := ev.(*tcell.EventInterrupt); !ok {
				continue
			}
			u.Handle(ev)
			return
		case <-deadline:
			t.Fatal("search did not report back")
		}
	}
}

func TestSquareAt(t *testing.T) {
	u := New(newScreen(t), newSession(t, false, game.Black))
	sq, ok := u.SquareAt(boardLeft, topMargin)
	require.True(t, ok)
	assert.Equal(t, game.A8, sq)
	sq, ok = u.SquareAt(boardLeft+7*squareWidth+1, topMargin+7)
	require.True(t, ok)
	assert.Equal(t, game.H1, sq)

	_, ok = u.SquareAt(leftMargin, topMargin)
	assert.False(t, ok)
	_, ok = u.SquareAt(boardLeft+game.ColNum*squareWidth, topMargin)
	assert.False(t, ok)
	_, ok = u.SquareAt(boardLeft, topMargin+game.RowNum)
	assert.False(t, ok)
}

func TestBoardFlipsForBlackHuman(t *testing.T) {
	u := New(newScreen(t), newSession(t, true, game.White))
	assert.True(t, u.Flipped())
	sq, ok := u.SquareAt(boardLeft, topMargin)
	require.True(t, ok)
	assert.Equal(t, game.H1, sq)
}

func TestDrawShowsPosition(t *testing.T) {
	screen := newScreen(t)
	u := New(screen, newSession(t, false, game.Black))
	u.Draw()

	x, y := screenXY(u, game.A1)
	r, _, _, _ := screen.GetContent(x, y)
	assert.Equal(t, '♖', r)
	x, y = screenXY(u, game.E8)
	r, _, _, _ = screen.GetContent(x, y)
	assert.Equal(t, '♚', r)
	r, _, _, _ = screen.GetContent(leftMargin, topMargin)
	assert.Equal(t, '8', r)

	label := " White to Move "
	for i, want := range label {
		r, _, _, _ = screen.GetContent(boardLeft+i, topMargin-2)
		assert.Equal(t, want, r)
	}
}

func TestClicksMovePieces(t *testing.T) {
	screen := newScreen(t)
	s := newSession(t, false, game.Black)
	u := New(screen, s)

	click(u, game.E2)
	u.Draw()
	_, _, style, _ := screen.GetContent(screenXY(u, game.E4))
	_, bg, _ := style.Decompose()
	assert.Equal(t, ThemeBasic.SquareDest, bg)

	click(u, game.E4)
	assert.Equal(t, 1, s.Machine().MoveNumber())
	assert.False(t, u.Thinking())

	u.Draw()
	r, _, _, _ := screen.GetContent(screenXY(u, game.E4))
	assert.Equal(t, '♙', r)
}

func TestIllegalClicksAreQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := newSession(t, false, game.Black)
	u := New(newScreen(t), s, WithLogger(zap.New(core)))

	click(u, game.E2)
	click(u, game.E5)
	assert.Empty(t, u.Message())
	assert.Equal(t, 0, s.Machine().MoveNumber())

	// clicking the selected piece again deselects it
	click(u, game.E2)
	click(u, game.E2)
	assert.Empty(t, u.Message())
	assert.Equal(t, game.Idle{}, s.Machine().Selection())

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestKeys(t *testing.T) {
	s := newSession(t, false, game.Black)
	u := New(newScreen(t), s)
	click(u, game.E2)
	click(u, game.E4)

	assert.False(t, press(u, 'u'))
	assert.Equal(t, 0, s.Machine().MoveNumber())
	assert.False(t, press(u, 'u'))
	assert.NotEmpty(t, u.Message())

	assert.False(t, press(u, 'r'))
	assert.Equal(t, 1, s.Machine().MoveNumber())
	assert.Empty(t, u.Message())

	assert.False(t, press(u, 'n'))
	assert.Equal(t, 0, s.Machine().MoveNumber())

	assert.True(t, press(u, 'q'))
	assert.True(t, u.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestComputerRepliesInBackground(t *testing.T) {
	screen := newScreen(t)
	s := newSession(t, true, game.Black)
	u := New(screen, s)

	click(u, game.E2)
	click(u, game.E4)
	require.True(t, u.Thinking())

	// the board is frozen while the computer thinks
	click(u, game.D2)
	assert.Equal(t, game.Idle{}, s.Machine().Selection())

	waitSearch(t, screen, u)
	assert.False(t, u.Thinking())
	assert.Equal(t, 2, s.Machine().MoveNumber())
	assert.Equal(t, game.White, s.Machine().Turn())
}

func TestResetDropsRunningSearch(t *testing.T) {
	screen := newScreen(t)
	s := newSession(t, true, game.Black)
	u := New(screen, s)

	click(u, game.E2)
	click(u, game.E4)
	require.True(t, u.Thinking())
	press(u, 'n')
	assert.False(t, u.Thinking())

	waitSearch(t, screen, u)
	assert.Equal(t, 0, s.Machine().MoveNumber())
	assert.False(t, u.Thinking())
}

func TestComputerOpensWhenPlayingWhite(t *testing.T) {
	screen := newScreen(t)
	s := newSession(t, true, game.White)
	u := New(screen, s)

	u.think()
	require.True(t, u.Thinking())
	waitSearch(t, screen, u)
	assert.Equal(t, 1, s.Machine().MoveNumber())
	assert.Contains(t, u.Message(), "computer played")
}

func TestTurnLabel(t *testing.T) {
	assert.Equal(t, " Black to Move ", TurnLabel(game.View{Turn: game.Black}))
	assert.Equal(t, " Checkmate, White wins ", TurnLabel(game.View{Turn: game.Black, Status: game.Checkmate}))
	assert.Equal(t, " Stalemate ", TurnLabel(game.View{Status: game.Stalemate}))
	assert.Equal(t, " Game over ", TurnLabel(game.View{Status: game.OtherDraw}))
}

func TestWinProbability(t *testing.T) {
	assert.InDelta(t, 0.5, WinProbability(0), 1e-6)
	assert.Greater(t, WinProbability(3), WinProbability(1))
	assert.InDelta(t, 1, WinProbability(3)+WinProbability(-3), 1e-6)
}

func TestRunQuitsOnContext(t *testing.T) {
	screen := newScreen(t)
	u := New(screen, newSession(t, false, game.Black))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
