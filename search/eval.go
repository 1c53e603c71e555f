package search

import "github.com/alphabeth/game"

// Evaluate scores p by material alone from side's point of view: pawn 1,
// knight 3, bishop 3, rook 5, queen 9.
func Evaluate(p game.Position, side game.Side) int {
	white, black := game.Material(p)
	if side == game.White {
		return white - black
	}
	return black - white
}
