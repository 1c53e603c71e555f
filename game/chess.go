package game

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a complete, immutable-by-value snapshot of a game: the board,
// the side to move and the auxiliary state the rules need. Positions are
// comparable with ==.
type Position struct {
	Board     [numSquares]Piece
	Turn      Side
	Castling  CastlingRights
	EnPassant Square
	HalfMove  int
	FullMove  int
}

// StartPosition returns the standard initial position.
func StartPosition() Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Piece returns the piece on sq.
func (p Position) Piece(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return p.Board[sq]
}

// King returns the square of side's king, or NoSquare.
func (p Position) King(side Side) Square {
	for sq, pc := range p.Board {
		if pc.Kind == King && pc.Side == side {
			return Square(sq)
		}
	}
	return NoSquare
}

// Key identifies the position for repetition purposes. Clocks are not part of
// the identity.
type Key struct {
	Board     [numSquares]Piece
	Turn      Side
	Castling  CastlingRights
	EnPassant Square
}

func (p Position) Key() Key {
	return Key{Board: p.Board, Turn: p.Turn, Castling: p.Castling, EnPassant: p.EnPassant}
}

// ParseFEN decodes a position in Forsyth-Edwards notation. The clock fields
// may be omitted.
func ParseFEN(fen string) (Position, error) {
	var p Position
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return p, errors.Errorf("fen: expected 4 to 6 fields, got %d in %q", len(fields), fen)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != RowNum {
		return p, errors.Errorf("fen: expected %d ranks in %q", RowNum, fields[0])
	}
	for i, row := range ranks {
		r := RowNum - 1 - i
		f := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				f += int(c - '0')
				continue
			}
			kind := kindFromLetter(c)
			if kind == NoKind {
				return p, errors.Errorf("fen: invalid piece %q", c)
			}
			if f >= ColNum {
				return p, errors.Errorf("fen: rank %d overflows", r+1)
			}
			side := White
			if c >= 'a' {
				side = Black
			}
			p.Board[NewSquare(f, r)] = Piece{Kind: kind, Side: side}
			f++
		}
		if f != ColNum {
			return p, errors.Errorf("fen: rank %d has %d files", r+1, f)
		}
	}

	if err := p.Turn.UnmarshalText([]byte(fields[1])); err != nil {
		return p, errors.WithMessage(err, "fen")
	}

	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			switch fields[2][j] {
			case 'K':
				p.Castling |= WhiteKingSide
			case 'Q':
				p.Castling |= WhiteQueenSide
			case 'k':
				p.Castling |= BlackKingSide
			case 'q':
				p.Castling |= BlackQueenSide
			default:
				return p, errors.Errorf("fen: invalid castling rights %q", fields[2])
			}
		}
	}

	p.EnPassant = NoSquare
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return p, errors.WithMessage(err, "fen: en passant")
		}
		p.EnPassant = sq
	}

	p.FullMove = 1
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return p, errors.Errorf("fen: invalid half-move clock %q", fields[4])
		}
		p.HalfMove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return p, errors.Errorf("fen: invalid full-move number %q", fields[5])
		}
		p.FullMove = n
	}
	return p, nil
}

// FEN encodes the position.
func (p Position) FEN() string {
	var b strings.Builder
	for r := RowNum - 1; r >= 0; r-- {
		empty := 0
		for f := 0; f < ColNum; f++ {
			pc := p.Board[NewSquare(f, r)]
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(pc.FEN())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			b.WriteByte('/')
		}
	}
	turn := "w"
	if p.Turn == Black {
		turn = "b"
	}
	b.WriteByte(' ')
	b.WriteString(turn)
	b.WriteByte(' ')
	b.WriteString(p.Castling.String())
	b.WriteByte(' ')
	b.WriteString(p.EnPassant.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.HalfMove))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.FullMove))
	return b.String()
}

func (p Position) String() string { return p.FEN() }

// Draw renders the board as text, rank 8 on top.
func (p Position) Draw() string {
	var b strings.Builder
	for r := RowNum - 1; r >= 0; r-- {
		b.WriteByte(byte('1' + r))
		for f := 0; f < ColNum; f++ {
			b.WriteByte(' ')
			b.WriteString(p.Board[NewSquare(f, r)].String())
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h\n")
	return b.String()
}
