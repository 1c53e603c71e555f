package rules

import (
	"github.com/pkg/errors"

	"github.com/alphabeth/game"
)

// Perft counts the leaves of the legal move tree of the given depth below
// p. Comparing counts between oracles and against published values checks
// move generation.
func Perft(o game.Oracle, p game.Position, depth int) (int, error) {
	if depth <= 0 {
		return 1, nil
	}
	moves := o.LegalMoves(p)
	if depth == 1 {
		return len(moves), nil
	}
	var total int
	for _, m := range moves {
		next, err := o.Apply(p, m)
		if err != nil {
			return 0, errors.WithMessagef(err, "perft at %q", p.FEN())
		}
		n, err := Perft(o, next, depth-1)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
