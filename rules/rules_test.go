package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabeth/game"
)

var oracles = map[string]game.Oracle{
	"standard": Standard{},
	"fast":     Fast{},
}

func mustFEN(t *testing.T, fen string) game.Position {
	t.Helper()
	p, err := game.ParseFEN(fen)
	require.NoError(t, err)
	return p
}

func TestLegalMovesAgree(t *testing.T) {
	fens := []string{
		game.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", // castling both ways
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",        // en passant
		"8/2P5/8/8/8/8/5k2/K7 w - - 0 1",                                        // promotion
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",                                        // stalemate
		pinnedEnPassantFEN,
		rankPinnedEnPassantFEN,
	}
	for _, fen := range fens {
		p := mustFEN(t, fen)
		standard := Standard{}.LegalMoves(p)
		fast := Fast{}.LegalMoves(p)
		assert.Equal(t, standard, fast, fen)
	}
}

const (
	// d5xc6 stays on the a8-g2 diagonal the pawn is pinned along
	pinnedEnPassantFEN = "b1r2kB1/N5bp/1p5n/2pP1ppP/1P3p1N/2PPR3/5PK1/Bq6 w - c6 0 38"
	// e5xd6 would empty the fifth rank between the rook and the king
	rankPinnedEnPassantFEN = "8/8/8/K2pP2r/8/8/8/7k w - d6 0 1"
)

func TestApplyAndClassifyAgree(t *testing.T) {
	fens := []string{
		game.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 5 20",
		"r3k3/8/8/8/8/8/8/4K2R w Kq - 149 120",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/2P5/8/8/8/8/5k2/K7 w - - 3 60",
		pinnedEnPassantFEN,
		rankPinnedEnPassantFEN,
	}
	for _, fen := range fens {
		p := mustFEN(t, fen)
		for _, m := range (Standard{}).LegalMoves(p) {
			standard, err := Standard{}.Apply(p, m)
			require.NoError(t, err, "%s %v", fen, m)
			fast, err := Fast{}.Apply(p, m)
			require.NoError(t, err, "%s %v", fen, m)
			assert.Equal(t, standard, fast, "%s %v", fen, m)

			prior := []game.Position{p}
			assert.Equal(t, Standard{}.Classify(standard, prior), Fast{}.Classify(fast, prior), "%s %v", fen, m)
		}
	}
}

func TestPinnedEnPassant(t *testing.T) {
	p := mustFEN(t, pinnedEnPassantFEN)
	capture := game.Move{From: game.D5, To: game.C6}
	for name, o := range oracles {
		m, ok := game.FindMove(o.LegalMoves(p), capture)
		require.True(t, ok, name)
		assert.Equal(t, game.EnPassant, m.Tag, name)

		g := game.NewMachine(o, p)
		require.NoError(t, g.Commit(capture), name)
		assert.True(t, g.Position().Piece(game.C5).Empty(), name)
		assert.Equal(t, game.Piece{Kind: game.Pawn, Side: game.White}, g.Position().Piece(game.C6), name)
	}

	p = mustFEN(t, rankPinnedEnPassantFEN)
	for name, o := range oracles {
		_, ok := game.FindMove(o.LegalMoves(p), game.Move{From: game.E5, To: game.D6})
		assert.False(t, ok, name)
		_, err := o.Apply(p, game.Move{From: game.E5, To: game.D6})
		assert.ErrorIs(t, err, game.ErrIllegalMove, name)
	}
}

func TestHalfMoveClock(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move game.Move
		want int
	}{
		{"king move losing castling rights", "r3k3/8/8/8/8/8/8/4K2R w Kq - 149 120", game.Move{From: game.E1, To: game.E2}, 150},
		{"rook move losing castling rights", "r3k3/8/8/8/8/8/8/4K2R w Kq - 10 40", game.Move{From: game.H1, To: game.H3}, 11},
		{"castling", "r3k3/8/8/8/8/8/8/4K2R w Kq - 10 40", game.Move{From: game.E1, To: game.G1}, 11},
		{"capture", "r3k3/8/8/8/8/8/8/R3K3 w Qq - 10 40", game.Move{From: game.A1, To: game.A8}, 0},
		{"pawn move", "4k3/8/8/8/8/8/4P3/4K3 w - - 10 40", game.Move{From: game.E2, To: game.E3}, 0},
	}
	for _, tt := range tests {
		for name, o := range oracles {
			next, err := o.Apply(mustFEN(t, tt.fen), tt.move)
			require.NoError(t, err, "%s/%s", tt.name, name)
			assert.Equal(t, tt.want, next.HalfMove, "%s/%s", tt.name, name)
		}
	}

	g := game.NewMachine(Standard{}, mustFEN(t, "r3k3/8/8/8/8/8/8/4K2R w Kq - 149 120"))
	require.NoError(t, g.Commit(game.Move{From: game.E1, To: game.E2}))
	assert.Equal(t, game.SeventyFiveMoveDraw, g.TerminalStatus())
}

func TestStartPositionHasTwentyMoves(t *testing.T) {
	for name, o := range oracles {
		assert.Len(t, o.LegalMoves(game.StartPosition()), 20, name)
	}
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	for name, o := range oracles {
		start := game.StartPosition()
		next, err := o.Apply(start, game.Move{From: game.E2, To: game.E5})
		require.Error(t, err, name)
		assert.ErrorIs(t, err, game.ErrIllegalMove, name)
		assert.Equal(t, start, next, name)
	}
}

func TestApplyAdvancesTurn(t *testing.T) {
	for name, o := range oracles {
		next, err := o.Apply(game.StartPosition(), game.Move{From: game.E2, To: game.E4})
		require.NoError(t, err, name)
		assert.Equal(t, game.Black, next.Turn, name)
		assert.Equal(t, game.Piece{Kind: game.Pawn, Side: game.White}, next.Piece(game.E4), name)
		assert.True(t, next.Piece(game.E2).Empty(), name)
		assert.Equal(t, 1, next.FullMove, name)
	}
}

func TestSpecialMoveTags(t *testing.T) {
	castle := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	ep := mustFEN(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	for name, o := range oracles {
		m, ok := game.FindMove(o.LegalMoves(castle), game.Move{From: game.E1, To: game.G1})
		require.True(t, ok, name)
		assert.Equal(t, game.KingSideCastle, m.Tag, name)

		m, ok = game.FindMove(o.LegalMoves(castle), game.Move{From: game.E8, To: game.C8})
		assert.False(t, ok, "black cannot move on white's turn")

		m, ok = game.FindMove(o.LegalMoves(ep), game.Move{From: game.E5, To: game.F6})
		require.True(t, ok, name)
		assert.Equal(t, game.EnPassant, m.Tag, name)

		next, err := o.Apply(ep, m)
		require.NoError(t, err, name)
		assert.True(t, next.Piece(game.F5).Empty(), "%s: captured pawn removed", name)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want game.Status
	}{
		{"start", game.StartFEN, game.Ongoing},
		{"king and rook against king", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", game.Ongoing},
		{"back rank mate", "R3k3/8/4K3/8/8/8/8/8 b - - 0 1", game.Checkmate},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", game.Checkmate},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", game.Stalemate},
		{"bare kings", "8/8/4k3/8/8/4K3/8/8 w - - 0 1", game.InsufficientMaterial},
		{"king and knight", "8/8/4k3/8/8/4KN2/8/8 w - - 0 1", game.InsufficientMaterial},
		{"seventy-five moves", "4k3/8/8/8/8/8/4P3/4K3 w - - 150 120", game.SeventyFiveMoveDraw},
	}
	for _, tt := range tests {
		for name, o := range oracles {
			assert.Equal(t, tt.want, o.Classify(mustFEN(t, tt.fen), nil), "%s/%s", tt.name, name)
		}
	}
}

func TestClassifyFivefoldRepetition(t *testing.T) {
	o := Standard{}
	shuffle := []game.Move{
		{From: game.G1, To: game.F3}, {From: game.G8, To: game.F6},
		{From: game.F3, To: game.G1}, {From: game.F6, To: game.G8},
	}
	p := game.StartPosition()
	var prior []game.Position
	for i := 0; i < 4; i++ {
		for _, m := range shuffle {
			require.Equal(t, game.Ongoing, o.Classify(p, prior))
			next, err := o.Apply(p, m)
			require.NoError(t, err)
			prior = append(prior, p)
			p = next
		}
	}
	assert.Equal(t, 5, game.Repetitions(p, prior))
	assert.Equal(t, game.FivefoldRepetition, o.Classify(p, prior))
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		want  int
	}{
		{"start", game.StartFEN, 3, 8902},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"rook endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
	}
	for name, o := range oracles {
		for _, tt := range tests {
			got, err := Perft(o, mustFEN(t, tt.fen), tt.depth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s with %s", tt.name, name)
		}
	}
	n, err := Perft(Fast{}, game.StartPosition(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
