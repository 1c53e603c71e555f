package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/alphabeth"
	"github.com/alphabeth/game"
	"github.com/alphabeth/rules"
	"github.com/alphabeth/search"
	"github.com/alphabeth/term"
	"github.com/alphabeth/uciengine"
)

var (
	configFile = flag.String("config", "", "JSON session config; flags below override it")
	human      = flag.Bool("human", false, "play human against human")
	computer   = flag.String("computer", "", "side played by the computer (white or black)")
	difficulty = flag.String("difficulty", "", "easy, medium or hard")
	engine     = flag.String("engine", "", "path of a UCI engine to play against instead of the built-in search")
	fen        = flag.String("fen", "", "start from this position")
	logFile    = flag.String("log", "", "write debug logs to this file")
)

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	conf := zap.NewDevelopmentConfig()
	conf.OutputPaths = []string{path}
	conf.ErrorOutputPaths = []string{path}
	return conf.Build()
}

func loadConfig() (alphabeth.Config, error) {
	conf := alphabeth.DefaultConfig()
	if *configFile != "" {
		var err error
		if conf, err = alphabeth.LoadConfig(*configFile); err != nil {
			return conf, err
		}
	}
	if *human {
		conf.ComputerEnabled = false
	}
	if *computer != "" {
		if err := conf.ComputerSide.UnmarshalText([]byte(*computer)); err != nil {
			return conf, err
		}
	}
	if *difficulty != "" {
		d, err := search.ParseDifficulty(*difficulty)
		if err != nil {
			return conf, err
		}
		conf.Difficulty = d
	}
	if *fen != "" {
		conf.FEN = *fen
	}
	return conf, nil
}

func main() {
	flag.Parse()

	logger, err := newLogger(*logFile)
	if err != nil {
		log.Fatalf("error creating logger: %s", err)
	}
	defer logger.Sync()

	conf, err := loadConfig()
	if err != nil {
		log.Fatalf("error loading config: %s", err)
	}

	opts := []alphabeth.Option{alphabeth.WithLogger(logger), alphabeth.WithDeferredReplies()}
	if *engine != "" {
		opts = append(opts, alphabeth.WithSearcherFactory(func(c alphabeth.Config, oracle game.Oracle) (alphabeth.Searcher, error) {
			e, err := uciengine.New(uciengine.FromSearch(*engine, c.SearchConfig()),
				uciengine.WithLogger(logger), uciengine.WithOracle(oracle))
			if err != nil {
				return nil, err
			}
			return e, nil
		}))
	}
	session, err := alphabeth.New(conf, rules.Standard{}, opts...)
	if err != nil {
		log.Fatalf("error creating session: %s", err)
	}
	defer session.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("error creating screen: %s", err)
	}
	if err = screen.Init(); err != nil {
		log.Fatalf("error initializing screen: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("session started", zap.String("name", session.Name), zap.Stringer("id", session.ID))
	err = term.New(screen, session, term.WithLogger(logger)).Run(ctx)
	screen.Fini()
	if err != nil {
		log.Fatalf("error running game: %s", err)
	}
}
