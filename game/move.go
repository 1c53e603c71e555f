package game

import "github.com/pkg/errors"

// Tag marks moves that need special handling by the rules.
type Tag int8

const (
	NoTag Tag = iota
	KingSideCastle
	QueenSideCastle
	EnPassant
)

func (t Tag) String() string {
	switch t {
	case KingSideCastle:
		return "O-O"
	case QueenSideCastle:
		return "O-O-O"
	case EnPassant:
		return "e.p."
	}
	return ""
}

// Move is a single move. Moves are values and never change once built.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
	Tag       Tag
}

// NoMove is the zero move, a1a1.
var NoMove Move

// Same reports whether m and other describe the same move, ignoring the tag.
func (m Move) Same(other Move) bool {
	return m.From == other.From && m.To == other.To && m.Promotion == other.Promotion
}

// String encodes the move in UCI notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if c := m.Promotion.Letter(); c != 0 {
		s += string(c)
	}
	return s
}

// ParseMove decodes a UCI move. The tag is left empty; oracles fill it in.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, errors.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, errors.WithMessagef(err, "move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, errors.WithMessagef(err, "move %q", s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch k := kindFromLetter(s[4]); k {
		case Knight, Bishop, Rook, Queen:
			m.Promotion = k
		default:
			return NoMove, errors.Errorf("invalid promotion in move %q", s)
		}
	}
	return m, nil
}

// FindMove returns the move in moves that is the Same as m.
func FindMove(moves []Move, m Move) (Move, bool) {
	for _, c := range moves {
		if c.Same(m) {
			return c, true
		}
	}
	return NoMove, false
}
