// Package rules provides game.Oracle implementations backed by existing move
// generators.
package rules

import (
	"sort"

	"github.com/alphabeth/game"
)

// sortMoves puts moves in a canonical order so that every oracle enumerates
// the same position identically.
func sortMoves(moves []game.Move) {
	sort.Slice(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Promotion > b.Promotion // queen first
	})
}

// tagFor derives the special-move tag of a legal move played from p.
func tagFor(p game.Position, m game.Move) game.Tag {
	pc := p.Piece(m.From)
	switch pc.Kind {
	case game.King:
		switch m.To.File() - m.From.File() {
		case 2:
			return game.KingSideCastle
		case -2:
			return game.QueenSideCastle
		}
	case game.Pawn:
		if m.To == p.EnPassant && m.From.File() != m.To.File() && p.Piece(m.To).Empty() {
			return game.EnPassant
		}
	}
	return game.NoTag
}

// classify combines the oracle's verdict on mate with the shared draw rules.
func classify(p game.Position, prior []game.Position, hasMoves, inCheck bool) game.Status {
	if !hasMoves {
		if inCheck {
			return game.Checkmate
		}
		return game.Stalemate
	}
	return game.DrawStatus(p, prior)
}
