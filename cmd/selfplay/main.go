package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/alphabeth"
	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
	"github.com/alphabeth/search"
	"github.com/alphabeth/uciengine"
)

var (
	games    = flag.Int("games", 2, "number of games; colours alternate between games")
	depthA   = flag.Int("depth_a", 2, "search depth of player A")
	depthB   = flag.Int("depth_b", 2, "search depth of player B")
	engineB  = flag.String("engine_b", "", "UCI engine path used for player B instead of the built-in search")
	maxPlies = flag.Int("plies", alphabeth.DefaultMaxPlies, "adjourn games after this many plies")
	fen      = flag.String("fen", "", "start every game from this position")
	fast     = flag.Bool("fast", true, "generate moves with the fast oracle")
	verbose  = flag.Bool("v", false, "log to stderr")
)

func oracle() game.Oracle {
	if *fast {
		return rules.Fast{}
	}
	return rules.Standard{}
}

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("error creating logger: %s", err)
		}
	}
	defer logger.Sync()

	o := oracle()
	a := alphabeth.NewEngineSearcher(search.NewEngine(o, search.WithLogger(logger)), search.Config{Depth: *depthA})
	var b alphabeth.Searcher = alphabeth.NewEngineSearcher(search.NewEngine(o, search.WithLogger(logger)), search.Config{Depth: *depthB})
	if *engineB != "" {
		e, err := uciengine.New(uciengine.Config{Path: *engineB, Depth: *depthB}, uciengine.WithLogger(logger))
		if err != nil {
			log.Fatalf("error starting engine: %s", err)
		}
		b = e
	}

	opts := []alphabeth.ArenaOption{alphabeth.WithArenaLogger(logger), alphabeth.WithMaxPlies(*maxPlies)}
	if *fen != "" {
		p, err := game.ParseFEN(*fen)
		if err != nil {
			log.Fatalf("error parsing position: %s", err)
		}
		opts = append(opts, alphabeth.WithStart(p))
	}
	arena := alphabeth.NewArena(o, a, b, opts...)
	defer func() {
		if err := arena.Close(); err != nil {
			log.Printf("error releasing players: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("arena %s: A (depth %d) vs B\n", arena.Name(), *depthA)
	for i := 0; i < *games; i++ {
		rec, err := arena.Play(ctx)
		if err != nil {
			log.Printf("error playing game %d: %s", i+1, err)
			break
		}
		fmt.Printf("game %d  %s-%s  %s  %v, %d plies, %d nodes, %v\n",
			rec.Number, rec.White, rec.Black, colorResult(rec.Result()), rec.Status, rec.Plies, rec.Nodes, rec.Elapsed)
		fmt.Printf("  %s\n", rec.Moves)
		arena.Swap()
	}

	sum := arena.Summary()
	agentA, agentB := arena.Agents()
	fmt.Println()
	fmt.Printf("games %d: white wins %d, black wins %d, draws %d, adjourned %d\n",
		sum.Games, sum.WhiteWins, sum.BlackWins, sum.Draws, sum.Unfinished)
	fmt.Printf("A: %s  B: %s\n",
		color.GreenString("+%d", agentA.Wins)+color.RedString(" -%d", agentA.Loss)+fmt.Sprintf(" =%d", agentA.Draw),
		color.GreenString("+%d", agentB.Wins)+color.RedString(" -%d", agentB.Loss)+fmt.Sprintf(" =%d", agentB.Draw))
	fmt.Printf("plies %.1f ± %.1f, nodes %.0f ± %.0f\n", sum.MeanPlies, sum.StdPlies, sum.MeanNodes, sum.StdNodes)
}

func colorResult(result string) string {
	switch result {
	case "1-0":
		return color.GreenString(result)
	case "0-1":
		return color.RedString(result)
	case "1/2-1/2":
		return color.YellowString(result)
	}
	return result
}
