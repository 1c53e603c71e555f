package game

// Status classifies a position.
type Status int8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	SeventyFiveMoveDraw
	FivefoldRepetition
	OtherDraw
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case SeventyFiveMoveDraw:
		return "seventy-five move rule"
	case FivefoldRepetition:
		return "fivefold repetition"
	case OtherDraw:
		return "draw"
	}
	return "unknown"
}

// IsTerminal reports whether the game is over.
func (s Status) IsTerminal() bool { return s != Ongoing }

// IsDraw reports whether the game ended without a winner.
func (s Status) IsDraw() bool { return s.IsTerminal() && s != Checkmate }

// Oracle knows the rules of chess. Implementations are pure functions of
// their arguments and safe to share.
type Oracle interface {
	// LegalMoves enumerates the legal moves in a stable order.
	LegalMoves(p Position) []Move
	// Apply plays m and returns the successor. It fails with ErrIllegalMove
	// when m is not one of LegalMoves(p).
	Apply(p Position, m Move) (Position, error)
	// Classify reports the status of p. prior holds the positions that led
	// to p, oldest first, and may be nil.
	Classify(p Position, prior []Position) Status
}

const (
	seventyFiveMoveLimit = 150 // half-moves
	fivefoldLimit        = 5
)

// DrawStatus applies the draw rules that do not depend on move generation:
// insufficient material, the seventy-five move rule and fivefold repetition.
// It returns Ongoing when none applies.
func DrawStatus(p Position, prior []Position) Status {
	switch {
	case HasInsufficientMaterial(p):
		return InsufficientMaterial
	case p.HalfMove >= seventyFiveMoveLimit:
		return SeventyFiveMoveDraw
	case Repetitions(p, prior) >= fivefoldLimit:
		return FivefoldRepetition
	}
	return Ongoing
}

// Repetitions counts how often p occurs in prior, including p itself.
func Repetitions(p Position, prior []Position) int {
	key := p.Key()
	n := 1
	// only positions since the last irreversible move can repeat
	for i := len(prior) - 1; i >= 0 && len(prior)-i <= p.HalfMove; i-- {
		if prior[i].Key() == key {
			n++
		}
	}
	return n
}

// HasInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, a single minor piece, or only bishops that all stand on squares
// of one colour.
func HasInsufficientMaterial(p Position) bool {
	var minors, knights int
	bishopColours := [2]int{}
	for sq, pc := range p.Board {
		switch pc.Kind {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			knights++
			minors++
		case Bishop:
			minors++
			s := Square(sq)
			bishopColours[(s.File()+s.Rank())%2]++
		}
	}
	switch {
	case minors <= 1:
		return true
	case knights == 0:
		return bishopColours[0] == 0 || bishopColours[1] == 0
	}
	return false
}
