package game

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrIllegalMove    = errors.New("illegal move")
	ErrNoMoveToUndo   = errors.New("no move to undo")
	ErrNoMoveToRedo   = errors.New("no move to redo")
	ErrSessionAborted = errors.New("game aborted after an invariant violation; reset to continue")
)

// InvariantError reports state corruption. The machine refuses further play
// until it is reset.
type InvariantError struct {
	Op   string
	Move Move
	FEN  string
	Err  error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated during %s of %v at %q: %v", e.Op, e.Move, e.FEN, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }
