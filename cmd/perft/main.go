package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"

	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
)

var (
	fen    = flag.String("fen", game.StartFEN, "position to count from")
	depth  = flag.Int("depth", 3, "depth in plies")
	divide = flag.Bool("divide", false, "print the count below every root move")
)

func main() {
	flag.Parse()

	p, err := game.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("error parsing position: %s", err)
	}

	oracles := []struct {
		name string
		o    game.Oracle
	}{
		{"standard", rules.Standard{}},
		{"fast", rules.Fast{}},
	}

	counts := make([]int, len(oracles))
	for i, oracle := range oracles {
		start := time.Now()
		if counts[i], err = rules.Perft(oracle.o, p, *depth); err != nil {
			log.Fatalf("error counting with %s: %s", oracle.name, err)
		}
		fmt.Printf("%-9s depth %d: %d nodes in %v\n", oracle.name, *depth, counts[i], time.Since(start).Round(time.Millisecond))
	}
	if counts[0] == counts[1] {
		color.Green("oracles agree")
	} else {
		color.Red("oracles disagree")
	}

	if !*divide || *depth < 1 {
		return
	}
	fast := oracles[1].o
	for _, m := range oracles[0].o.LegalMoves(p) {
		var per [2]int
		for i, oracle := range oracles {
			next, err := oracle.o.Apply(p, m)
			if err != nil {
				log.Fatalf("error applying %v with %s: %s", m, oracle.name, err)
			}
			if per[i], err = rules.Perft(oracle.o, next, *depth-1); err != nil {
				log.Fatalf("error counting with %s: %s", oracle.name, err)
			}
		}
		line := fmt.Sprintf("%v: %d", m, per[0])
		if _, ok := game.FindMove(fast.LegalMoves(p), m); !ok || per[0] != per[1] {
			color.Red("%s (fast: %d)", line, per[1])
			continue
		}
		fmt.Println(line)
	}
}
