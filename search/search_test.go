package search

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
)

func mustFEN(t *testing.T, fen string) game.Position {
	t.Helper()
	p, err := game.ParseFEN(fen)
	require.NoError(t, err)
	return p
}

func TestEvaluate(t *testing.T) {
	p := game.StartPosition()
	assert.Equal(t, 0, Evaluate(p, game.White))
	assert.Equal(t, 0, Evaluate(p, game.Black))

	// white is a queen and a knight up, black a rook
	p = mustFEN(t, "4k2r/8/8/8/8/8/8/QN2K3 w - - 0 1")
	assert.Equal(t, 7, Evaluate(p, game.White))
	assert.Equal(t, -7, Evaluate(p, game.Black))
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		side game.Side
		want string
	}{
		{"back rank", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", game.White, "a1a8"},
		{"queen and bishop", "7k/6pp/6Q1/8/8/2B5/8/6K1 w - - 0 1", game.White, "g6g7"},
		{"black to mate", "6k1/8/8/8/8/8/r4PPP/6K1 b - - 0 1", game.Black, "a2a1"},
	}
	for _, oracle := range []game.Oracle{rules.Standard{}, rules.Fast{}} {
		e := NewEngine(oracle)
		for _, tt := range tests {
			for depth := 1; depth <= 2; depth++ {
				res, err := e.ChooseMove(context.Background(), mustFEN(t, tt.fen), tt.side, Config{Depth: depth})
				require.NoError(t, err, tt.name)
				assert.Equal(t, tt.want, res.Move.String(), "%s at depth %d", tt.name, depth)
				assert.Equal(t, MateScore-1, res.Score, tt.name)
			}
		}
	}
}

func TestChooseMoveIsDeterministic(t *testing.T) {
	e := NewEngine(rules.Fast{})
	p := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	first, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
		require.NoError(t, err)
		assert.Equal(t, first.Move, again.Move)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Nodes, again.Nodes)
	}
}

func TestStartPositionLosesNoMaterial(t *testing.T) {
	oracle := rules.Fast{}
	e := NewEngine(oracle)
	start := game.StartPosition()
	res, err := e.ChooseMove(context.Background(), start, game.White, Config{Depth: 2})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Score, 0)

	piece := start.Piece(res.Move.From)
	assert.Contains(t, []game.PieceKind{game.Pawn, game.Knight}, piece.Kind)

	after, err := oracle.Apply(start, res.Move)
	require.NoError(t, err)
	for _, reply := range oracle.LegalMoves(after) {
		next, err := oracle.Apply(after, reply)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, Evaluate(next, game.White), 0, "%v %v", res.Move, reply)
	}
}

func TestAvoidsHangingQueen(t *testing.T) {
	// the white queen on d4 is attacked by the pawn on e5
	p := mustFEN(t, "rnbqkbnr/pppp1ppp/8/4p3/3Q4/8/PPP1PPPP/RNB1KBNR w KQkq - 0 3")
	e := NewEngine(rules.Fast{})
	res, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
	require.NoError(t, err)
	assert.Equal(t, game.D4, res.Move.From)
	assert.GreaterOrEqual(t, res.Score, 0)
}

func TestTakesFreePiece(t *testing.T) {
	// black's rook on a8 is undefended
	p := mustFEN(t, "r3k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	res, err := NewEngine(rules.Standard{}).ChooseMove(context.Background(), p, game.White, Config{Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, "a1a8", res.Move.String())
	assert.Equal(t, 5, res.Score)
}

func TestMinimizingRoot(t *testing.T) {
	// searching for White while Black is to move: Black picks White's worst
	p := mustFEN(t, "r3k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	res, err := NewEngine(rules.Standard{}).ChooseMove(context.Background(), p, game.White, Config{Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, "a8a1", res.Move.String())
	assert.Equal(t, -5, res.Score)
}

func TestSearchLeavesPositionUntouched(t *testing.T) {
	p := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	before := p
	_, err := NewEngine(rules.Standard{}).ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
	require.NoError(t, err)
	assert.Equal(t, before, p)
}

func TestNoLegalMoves(t *testing.T) {
	p := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	_, err := NewEngine(rules.Standard{}).ChooseMove(context.Background(), p, game.Black, Config{Depth: 2})
	assert.ErrorIs(t, err, ErrNoLegalMoves)
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewEngine(rules.Standard{}).ChooseMove(context.Background(), game.StartPosition(), game.White, Config{})
	assert.Error(t, err)
}

func TestNodeBudgetStillReturnsLegalMove(t *testing.T) {
	oracle := rules.Fast{}
	p := game.StartPosition()
	res, err := NewEngine(oracle).ChooseMove(context.Background(), p, game.White, Config{Depth: 6, Nodes: 50})
	require.NoError(t, err)
	_, ok := game.FindMove(oracle.LegalMoves(p), res.Move)
	assert.True(t, ok)
	assert.Less(t, res.Depth, 6)
	assert.LessOrEqual(t, res.Nodes, 50)
}

func TestNodeBudgetMatchesFixedDepthWhenAmple(t *testing.T) {
	e := NewEngine(rules.Fast{})
	p := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	fixed, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
	require.NoError(t, err)
	bounded, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2, Nodes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, fixed.Move, bounded.Move)
	assert.Equal(t, 2, bounded.Depth)
}

func TestCancelledContextReturnsLegalMove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	oracle := rules.Fast{}
	p := game.StartPosition()
	res, err := NewEngine(oracle).ChooseMove(ctx, p, game.White, Config{Depth: 4, Timeout: time.Minute})
	require.NoError(t, err)
	_, ok := game.FindMove(oracle.LegalMoves(p), res.Move)
	assert.True(t, ok)
}

func TestPruningVisitsFewerNodes(t *testing.T) {
	p := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	res, err := NewEngine(rules.Fast{}).ChooseMove(context.Background(), p, game.White, Config{Depth: 3})
	require.NoError(t, err)
	assert.Greater(t, res.Cutoffs, 0)
}

func TestTraceDOT(t *testing.T) {
	tr := &Trace{MaxNodes: 200}
	e := NewEngine(rules.Standard{}, WithTrace(tr))
	p := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	_, err := e.ChooseMove(context.Background(), p, game.White, Config{Depth: 2})
	require.NoError(t, err)

	nodes := tr.Nodes()
	require.NotEmpty(t, nodes)
	assert.Equal(t, -1, nodes[0].Parent)
	assert.LessOrEqual(t, len(nodes), 200)
	assert.Equal(t, p, tr.Root())

	dot, err := tr.DOT()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph search"))
	assert.Contains(t, dot, "a1a8")
	assert.Regexp(t, `n0\s*->\s*n1`, dot)
}

func TestDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		assert.True(t, d.Config().IsValid(), d.String())
		parsed, err := ParseDifficulty(strings.ToUpper(d.String()))
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	assert.Less(t, Easy.Config().Depth, Hard.Config().Depth)
	_, err := ParseDifficulty("grandmaster")
	assert.Error(t, err)
}
