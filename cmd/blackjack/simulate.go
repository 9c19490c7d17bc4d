package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays many rounds with the strategy advisor
type SimulateCmd struct {
	RulesFlags `embed:""`

	Rounds  int           `default:"100000" help:"Number of rounds to simulate"`
	Workers int           `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Seed    *int64        `help:"RNG seed (optional)"`
	Spread  int           `default:"1" help:"Maximum bet in units, ramped by true count (1 bets flat)"`
	BaseBet float64       `help:"Betting unit (defaults to the table minimum)"`
	Timeout time.Duration `help:"Abort the run after this long"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	f, patch, err := g.loadConfig(c.RulesFlags)
	if err != nil {
		return err
	}
	logger, closeLog, err := g.setupLogger(f, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	settings := game.DefaultSettings().Apply(patch)

	logger.Info("Starting simulation",
		"rounds", c.Rounds,
		"workers", workers,
		"seed", seed,
		"decks", settings.DeckCount,
		"h17", settings.DealerHitsSoft17,
		"spread", c.Spread)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Workers:  workers,
		Seed:     seed,
		Settings: settings,
		BaseBet:  c.BaseBet,
		Spread:   c.Spread,
		Timeout:  c.Timeout,
		Logger:   logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, stats)
	return nil
}
