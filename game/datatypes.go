package game

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	RowNum = 8
	ColNum = 8

	numSquares = RowNum * ColNum
)

// Side is one of the two players.
type Side int8

const (
	White Side = iota
	Black
)

// Other returns the opponent.
func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return "Unknown"
}

// MarshalText encodes the side as "white" or "black".
func (s Side) MarshalText() ([]byte, error) {
	switch s {
	case White, Black:
		return []byte(strings.ToLower(s.String())), nil
	}
	return nil, errors.Errorf("invalid side %d", s)
}

// UnmarshalText accepts "white"/"black" and the FEN letters "w"/"b".
func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "white", "w":
		*s = White
	case "black", "b":
		*s = Black
	default:
		return errors.Errorf("invalid side %q", text)
	}
	return nil
}

// PieceKind is the type of a piece, without its colour.
type PieceKind int8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}

// Letter returns the lower case FEN letter of the kind, or 0 for NoKind.
func (k PieceKind) Letter() byte {
	if k <= NoKind || k > King {
		return 0
	}
	return kindLetters[k]
}

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	}
	return "None"
}

// MarshalText encodes the kind by its lower case name, e.g. "queen".
func (k PieceKind) MarshalText() ([]byte, error) {
	if k <= NoKind || k > King {
		return nil, errors.Errorf("invalid piece kind %d", k)
	}
	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText accepts a kind name or its FEN letter.
func (k *PieceKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	if len(s) == 1 {
		if kind := kindFromLetter(s[0]); kind != NoKind {
			*k = kind
			return nil
		}
	}
	for kind := Pawn; kind <= King; kind++ {
		if s == strings.ToLower(kind.String()) {
			*k = kind
			return nil
		}
	}
	return errors.Errorf("invalid piece kind %q", text)
}

func kindFromLetter(c byte) PieceKind {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	}
	return NoKind
}

// Piece occupies a square. The zero value is an empty square.
type Piece struct {
	Kind PieceKind
	Side Side
}

// Empty reports whether there is no piece.
func (p Piece) Empty() bool { return p.Kind == NoKind }

// FEN returns the FEN letter: upper case for White.
func (p Piece) FEN() byte {
	c := p.Kind.Letter()
	if c == 0 {
		return 0
	}
	if p.Side == White {
		c -= 'a' - 'A'
	}
	return c
}

func (p Piece) String() string {
	if p.Empty() {
		return "."
	}
	return string(p.FEN())
}

// Square indexes the board: a1 is 0, h1 is 7, h8 is 63.
type Square int8

const NoSquare Square = -1

// NewSquare returns the square at file f (0 = a) and rank r (0 = 1).
func NewSquare(f, r int) Square {
	if f < 0 || f >= ColNum || r < 0 || r >= RowNum {
		return NoSquare
	}
	return Square(r*ColNum + f)
}

func (sq Square) File() int { return int(sq) % ColNum }
func (sq Square) Rank() int { return int(sq) / ColNum }

// Valid reports whether sq is on the board.
func (sq Square) Valid() bool { return sq >= 0 && sq < numSquares }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, errors.Errorf("invalid square %q", s)
	}
	sq := NewSquare(int(s[0])-'a', int(s[1])-'1')
	if sq == NoSquare {
		return NoSquare, errors.Errorf("invalid square %q", s)
	}
	return sq, nil
}

// CastlingRights is a bit set of the remaining castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// Has reports whether every right in r is present.
func (c CastlingRights) Has(r CastlingRights) bool { return c&r == r }

// String uses FEN notation, e.g. "KQkq" or "-".
func (c CastlingRights) String() string {
	var b strings.Builder
	for _, r := range []struct {
		right CastlingRights
		c     byte
	}{{WhiteKingSide, 'K'}, {WhiteQueenSide, 'Q'}, {BlackKingSide, 'k'}, {BlackQueenSide, 'q'}} {
		if c.Has(r.right) {
			b.WriteByte(r.c)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// Squares by name.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)
