package game

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrGameOver is returned when a move is attempted in a finished game.
var ErrGameOver = errors.New("game is over")

// Selection is the interaction state of the board: either Idle or
// PieceSelected.
type Selection interface {
	isSelection()
}

// Idle means no piece is selected.
type Idle struct{}

// PieceSelected holds the chosen origin and its cached legal destinations.
type PieceSelected struct {
	Origin       Square
	Destinations []Square
}

func (Idle) isSelection()          {}
func (PieceSelected) isSelection() {}

// record is an entry of the committed stack. Before is the position the move
// was played from, which makes undo exact.
type record struct {
	Move   Move
	Before Position
}

// Machine owns the authoritative game: the current position, the committed
// and redo stacks and the selection. It is not safe for concurrent use.
type Machine struct {
	oracle  Oracle
	initial Position
	current Position
	status  Status

	committed []record
	redo      []Move // top is the most recently undone move
	selection Selection

	promotion PieceKind
	aborted   error
}

// NewMachine starts a game from initial.
func NewMachine(oracle Oracle, initial Position) *Machine {
	g := &Machine{
		oracle:    oracle,
		initial:   initial,
		promotion: Queen,
	}
	g.Reset()
	return g
}

// Position returns the current position.
func (g *Machine) Position() Position { return g.current }

// Initial returns the position the game started from.
func (g *Machine) Initial() Position { return g.initial }

// Turn returns the side to move.
func (g *Machine) Turn() Side { return g.current.Turn }

// Oracle returns the rules the machine validates against.
func (g *Machine) Oracle() Oracle { return g.oracle }

// Selection returns the current selection state.
func (g *Machine) Selection() Selection { return g.selection }

// Committed returns the played moves, oldest first.
func (g *Machine) Committed() []Move {
	moves := make([]Move, len(g.committed))
	for i, r := range g.committed {
		moves[i] = r.Move
	}
	return moves
}

// Undone returns the redo stack, most recently undone first.
func (g *Machine) Undone() []Move {
	moves := make([]Move, len(g.redo))
	for i := range g.redo {
		moves[i] = g.redo[len(g.redo)-1-i]
	}
	return moves
}

// Positions returns the line of positions from the initial one to the
// current one.
func (g *Machine) Positions() []Position {
	line := make([]Position, 0, len(g.committed)+1)
	for _, r := range g.committed {
		line = append(line, r.Before)
	}
	return append(line, g.current)
}

// LastMove returns the most recently committed move.
func (g *Machine) LastMove() (Move, bool) {
	if len(g.committed) == 0 {
		return NoMove, false
	}
	return g.committed[len(g.committed)-1].Move, true
}

func (g *Machine) MoveNumber() int { return len(g.committed) }
func (g *Machine) CanUndo() bool   { return g.aborted == nil && len(g.committed) > 0 }
func (g *Machine) CanRedo() bool   { return g.aborted == nil && len(g.redo) > 0 }

// Aborted returns the invariant violation that stopped the game, if any.
func (g *Machine) Aborted() error { return g.aborted }

// SetPromotion sets the piece a pawn promotes to when moved by selection.
func (g *Machine) SetPromotion(kind PieceKind) error {
	switch kind {
	case Knight, Bishop, Rook, Queen:
		g.promotion = kind
		return nil
	}
	return errors.Errorf("cannot promote to %v", kind)
}

// TerminalStatus reports whether and how the game has ended.
func (g *Machine) TerminalStatus() Status { return g.status }

// LegalMoves returns the legal moves of the current position.
func (g *Machine) LegalMoves() []Move {
	if g.status.IsTerminal() {
		return nil
	}
	return g.oracle.LegalMoves(g.current)
}

// SelectOrMove handles one activation of sq. From Idle it selects a piece of
// the side to move. From PieceSelected it attempts the move to sq and
// returns to Idle whether or not the move was legal.
func (g *Machine) SelectOrMove(sq Square) (moved bool, err error) {
	if g.aborted != nil {
		return false, ErrSessionAborted
	}
	switch sel := g.selection.(type) {
	case Idle:
		g.selectOrigin(sq)
		return false, nil
	case PieceSelected:
		g.selection = Idle{}
		candidate := Move{From: sel.Origin, To: sq}
		if g.promotes(candidate) {
			candidate.Promotion = g.promotion
		}
		if err := g.Commit(candidate); err != nil {
			return false, err
		}
		return true, nil
	}
	panic(fmt.Sprintf("unknown selection %T", g.selection))
}

func (g *Machine) selectOrigin(sq Square) {
	pc := g.current.Piece(sq)
	if pc.Empty() || pc.Side != g.current.Turn || g.status.IsTerminal() {
		return
	}
	sel := PieceSelected{Origin: sq}
	for _, m := range g.oracle.LegalMoves(g.current) {
		if m.From != sq {
			continue
		}
		// promotions share a destination
		if n := len(sel.Destinations); n > 0 && sel.Destinations[n-1] == m.To {
			continue
		}
		sel.Destinations = append(sel.Destinations, m.To)
	}
	g.selection = sel
}

func (g *Machine) promotes(m Move) bool {
	pc := g.current.Piece(m.From)
	if pc.Kind != Pawn {
		return false
	}
	last := RowNum - 1
	if pc.Side == Black {
		last = 0
	}
	return m.To.Rank() == last
}

// Commit plays m. It is the single path by which moves enter the game,
// for human and computer players alike, and it clears the redo stack.
func (g *Machine) Commit(m Move) error {
	if g.aborted != nil {
		return ErrSessionAborted
	}
	g.selection = Idle{}
	if g.status.IsTerminal() {
		return errors.Wrapf(ErrGameOver, "%v", g.status)
	}
	if err := g.push(m); err != nil {
		return err
	}
	g.redo = g.redo[:0]
	return nil
}

func (g *Machine) push(m Move) error {
	moves := g.oracle.LegalMoves(g.current)
	legal, ok := FindMove(moves, m)
	if !ok {
		return errors.Wrapf(ErrIllegalMove, "%v", m)
	}
	next, err := g.oracle.Apply(g.current, legal)
	if err != nil {
		return err
	}
	g.committed = append(g.committed, record{Move: legal, Before: g.current})
	g.current = next
	g.refreshStatus()
	return nil
}

// Undo takes back the last committed move and makes it available to Redo.
func (g *Machine) Undo() error {
	if g.aborted != nil {
		return ErrSessionAborted
	}
	g.selection = Idle{}
	if len(g.committed) == 0 {
		return ErrNoMoveToUndo
	}
	last := g.committed[len(g.committed)-1]
	g.committed = g.committed[:len(g.committed)-1]
	g.current = last.Before
	g.redo = append(g.redo, last.Move)
	g.refreshStatus()
	return nil
}

// Redo replays the most recently undone move. The move is validated again;
// a rejection means the history is corrupt and aborts the game.
func (g *Machine) Redo() error {
	if g.aborted != nil {
		return ErrSessionAborted
	}
	g.selection = Idle{}
	if len(g.redo) == 0 {
		return ErrNoMoveToRedo
	}
	m := g.redo[len(g.redo)-1]
	g.redo = g.redo[:len(g.redo)-1]
	if err := g.push(m); err != nil {
		g.aborted = &InvariantError{Op: "redo", Move: m, FEN: g.current.FEN(), Err: err}
		return g.aborted
	}
	return nil
}

// Reset restores the initial position and empties both stacks. It never
// fails and also clears an aborted game.
func (g *Machine) Reset() {
	g.current = g.initial
	g.committed = nil
	g.redo = nil
	g.selection = Idle{}
	g.aborted = nil
	g.refreshStatus()
}

func (g *Machine) refreshStatus() {
	g.status = g.oracle.Classify(g.current, g.Positions()[:len(g.committed)])
}

// MoveList formats the committed moves as numbered pairs, e.g.
// "1. e2e4 e7e5 2. g1f3".
func (g *Machine) MoveList() string {
	var b strings.Builder
	number := g.initial.FullMove
	for i, r := range g.committed {
		if i == 0 && r.Before.Turn == Black {
			fmt.Fprintf(&b, "%d... %v", number, r.Move)
			number++
			continue
		}
		if r.Before.Turn == White {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d. %v", number, r.Move)
			continue
		}
		fmt.Fprintf(&b, " %v", r.Move)
		number++
	}
	return b.String()
}
