package rules

import (
	"github.com/dylhunn/dragontoothmg"
	"github.com/pkg/errors"

	"github.com/alphabeth/game"
)

// Fast is a bitboard oracle backed by github.com/dylhunn/dragontoothmg. It
// agrees with Standard on legal moves and successors and is considerably
// quicker, which makes it the better choice for search.
//
// dragontoothmg drops en passant captures by a diagonally pinned pawn even
// when the pawn stays on the pin line, so en passant is generated here and
// checked by playing it out.
type Fast struct{}

var _ game.Oracle = Fast{}

func (Fast) LegalMoves(p game.Position) []game.Move {
	b := dragontoothmg.ParseFen(p.FEN())
	generated := b.GenerateLegalMoves()
	moves := make([]game.Move, 0, len(generated)+2)
	for i := range generated {
		m, err := game.ParseMove(generated[i].String())
		if err != nil {
			continue
		}
		if m.Tag = tagFor(p, m); m.Tag == game.EnPassant {
			continue
		}
		moves = append(moves, m)
	}
	moves = append(moves, enPassantCaptures(p)...)
	sortMoves(moves)
	return moves
}

func (Fast) Apply(p game.Position, m game.Move) (game.Position, error) {
	for _, ep := range enPassantCaptures(p) {
		if ep.Same(m) {
			return playEnPassant(p, ep), nil
		}
	}
	b := dragontoothmg.ParseFen(p.FEN())
	generated := b.GenerateLegalMoves()
	for i := range generated {
		dm := generated[i]
		candidate, err := game.ParseMove(dm.String())
		if err != nil || !candidate.Same(m) || tagFor(p, candidate) == game.EnPassant {
			continue
		}
		b.Apply(dm)
		next, err := game.ParseFEN(b.ToFen())
		if err != nil {
			return p, errors.Wrapf(err, "rules: applying %v", m)
		}
		return next, nil
	}
	return p, errors.Wrapf(game.ErrIllegalMove, "%v in %q", m, p.FEN())
}

func (f Fast) Classify(p game.Position, prior []game.Position) game.Status {
	b := dragontoothmg.ParseFen(p.FEN())
	hasMoves := len(f.LegalMoves(p)) > 0
	return classify(p, prior, hasMoves, !hasMoves && b.OurKingInCheck())
}

// enPassantCaptures returns the en passant captures in p that do not leave
// the mover's king attacked.
func enPassantCaptures(p game.Position) []game.Move {
	if !p.EnPassant.Valid() {
		return nil
	}
	rank := p.EnPassant.Rank() - 1
	if p.Turn == game.Black {
		rank = p.EnPassant.Rank() + 1
	}
	victim := game.NewSquare(p.EnPassant.File(), rank)
	if !victim.Valid() || p.Piece(victim) != (game.Piece{Kind: game.Pawn, Side: p.Turn.Other()}) {
		return nil
	}
	var moves []game.Move
	for _, df := range []int{-1, 1} {
		from := game.NewSquare(p.EnPassant.File()+df, rank)
		if !from.Valid() || p.Piece(from) != (game.Piece{Kind: game.Pawn, Side: p.Turn}) {
			continue
		}
		m := game.Move{From: from, To: p.EnPassant, Tag: game.EnPassant}
		if kingAttacked(playEnPassant(p, m), p.Turn) {
			continue
		}
		moves = append(moves, m)
	}
	return moves
}

func playEnPassant(p game.Position, m game.Move) game.Position {
	next := p
	next.Board[m.To] = p.Board[m.From]
	next.Board[m.From] = game.Piece{}
	next.Board[game.NewSquare(m.To.File(), m.From.Rank())] = game.Piece{}
	next.EnPassant = game.NoSquare
	next.HalfMove = 0
	if p.Turn == game.Black {
		next.FullMove++
	}
	next.Turn = p.Turn.Other()
	return next
}

// kingAttacked reports whether side's king is attacked in p.
func kingAttacked(p game.Position, side game.Side) bool {
	p.Turn = side
	p.EnPassant = game.NoSquare
	b := dragontoothmg.ParseFen(p.FEN())
	return b.OurKingInCheck()
}
