package rules

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/alphabeth/game"
)

// Standard is the reference oracle, backed by github.com/notnil/chess.
type Standard struct{}

var _ game.Oracle = Standard{}

// NotnilPosition converts p for use with github.com/notnil/chess and its
// uci package.
func NotnilPosition(p game.Position) (*chess.Position, error) {
	fen, err := chess.FEN(p.FEN())
	if err != nil {
		return nil, errors.Wrapf(err, "rules: decoding %q", p.FEN())
	}
	return chess.NewGame(fen).Position(), nil
}

func (Standard) LegalMoves(p game.Position) []game.Move {
	pos, err := NotnilPosition(p)
	if err != nil {
		return nil
	}
	valid := pos.ValidMoves()
	moves := make([]game.Move, 0, len(valid))
	for _, cm := range valid {
		moves = append(moves, fromNotnil(cm))
	}
	sortMoves(moves)
	return moves
}

func (Standard) Apply(p game.Position, m game.Move) (game.Position, error) {
	pos, err := NotnilPosition(p)
	if err != nil {
		return p, err
	}
	for _, cm := range pos.ValidMoves() {
		if !fromNotnil(cm).Same(m) {
			continue
		}
		next, err := game.ParseFEN(pos.Update(cm).String())
		if err != nil {
			return p, errors.Wrapf(err, "rules: applying %v", m)
		}
		// notnil also resets the clock when castling rights change
		next.HalfMove = p.HalfMove + 1
		if p.Piece(m.From).Kind == game.Pawn || !p.Piece(m.To).Empty() {
			next.HalfMove = 0
		}
		return next, nil
	}
	return p, errors.Wrapf(game.ErrIllegalMove, "%v in %q", m, p.FEN())
}

func (Standard) Classify(p game.Position, prior []game.Position) game.Status {
	pos, err := NotnilPosition(p)
	if err != nil {
		return game.OtherDraw
	}
	method := pos.Status()
	return classify(p, prior, method == chess.NoMethod, method == chess.Checkmate)
}

func fromNotnil(cm *chess.Move) game.Move {
	m := game.Move{
		From:      game.Square(cm.S1()),
		To:        game.Square(cm.S2()),
		Promotion: kindFromNotnil(cm.Promo()),
	}
	switch {
	case cm.HasTag(chess.KingSideCastle):
		m.Tag = game.KingSideCastle
	case cm.HasTag(chess.QueenSideCastle):
		m.Tag = game.QueenSideCastle
	case cm.HasTag(chess.EnPassant):
		m.Tag = game.EnPassant
	}
	return m
}

func kindFromNotnil(pt chess.PieceType) game.PieceKind {
	switch pt {
	case chess.Pawn:
		return game.Pawn
	case chess.Knight:
		return game.Knight
	case chess.Bishop:
		return game.Bishop
	case chess.Rook:
		return game.Rook
	case chess.Queen:
		return game.Queen
	case chess.King:
		return game.King
	}
	return game.NoKind
}
