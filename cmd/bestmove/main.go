package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
	"github.com/alphabeth/search"
)

var (
	fen        = flag.String("fen", game.StartFEN, "position to search")
	difficulty = flag.String("difficulty", "", "easy, medium or hard; overrides depth and timeout")
	depth      = flag.Int("depth", search.DefaultConfig().Depth, "search depth in plies")
	timeout    = flag.Duration("timeout", 0, "stop iterating after this long")
	nodes      = flag.Int("nodes", 0, "stop iterating after this many nodes")
	dotFile    = flag.String("dot", "", "write the explored tree to this Graphviz file")
	maxTrace   = flag.Int("trace_nodes", 2000, "maximum number of nodes written to the dot file")
	fast       = flag.Bool("fast", false, "generate moves with the fast oracle")
	verbose    = flag.Bool("v", false, "log to stderr")
)

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

	p, err := game.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("error parsing position: %s", err)
	}

	conf := search.Config{Depth: *depth, Timeout: *timeout, Nodes: *nodes}
	if *difficulty != "" {
		d, err := search.ParseDifficulty(*difficulty)
		if err != nil {
			log.Fatalf("error parsing difficulty: %s", err)
		}
		conf = d.Config()
	}

	var oracle game.Oracle = rules.Standard{}
	if *fast {
		oracle = rules.Fast{}
	}
	opts := []search.Option{search.WithLogger(logger)}
	var trace *search.Trace
	if *dotFile != "" {
		trace = &search.Trace{MaxNodes: *maxTrace}
		opts = append(opts, search.WithTrace(trace))
	}

	fmt.Println(p.Draw())
	res, err := search.NewEngine(oracle, opts...).ChooseMove(context.Background(), p, p.Turn, conf)
	if err != nil {
		log.Fatalf("error searching: %s", err)
	}

	score := color.YellowString("%d", res.Score)
	switch {
	case res.Score >= search.MateScore-conf.Depth:
		score = color.GreenString("mate in %d", (search.MateScore-res.Score+1)/2)
	case res.Score <= -search.MateScore+conf.Depth:
		score = color.RedString("mated in %d", (search.MateScore+res.Score)/2)
	case res.Score > 0:
		score = color.GreenString("+%d", res.Score)
	case res.Score < 0:
		score = color.RedString("%d", res.Score)
	}
	fmt.Printf("%s plays %s  score %s  depth %d  nodes %d  cutoffs %d  %v\n",
		p.Turn, color.CyanString(res.Move.String()), score, res.Depth, res.Nodes, res.Cutoffs, res.Elapsed.Round(time.Microsecond))

	if trace == nil {
		return
	}
	dot, err := trace.DOT()
	if err != nil {
		log.Fatalf("error rendering trace: %s", err)
	}
	if err = os.WriteFile(*dotFile, []byte(dot), 0644); err != nil {
		log.Fatalf("error writing %s: %s", *dotFile, err)
	}
	fmt.Printf("wrote %d nodes to %s\n", len(trace.Nodes()), *dotFile)
}
