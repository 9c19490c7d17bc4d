package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCmd runs the interactive table
type PlayCmd struct {
	RulesFlags `embed:""`

	Store   string   `help:"Storage backend: memory, file or redis (overrides config)"`
	Balance *float64 `help:"Starting balance when none is saved"`
	Seed    *int64   `help:"Deterministic shuffle seed (optional)"`
	NoColor bool     `help:"Disable colours"`
}

func (c *PlayCmd) Run(g *Globals) error {
	f, patch, err := g.loadConfig(c.RulesFlags)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to --log-file
	logger, closeLog, err := g.setupLogger(f, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(f, c.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	balance := f.Balance(game.DefaultBalance)
	if c.Balance != nil {
		balance = *c.Balance
	}

	rng := randutil.NewSecure()
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		rng = randutil.New(*c.Seed)
	}

	session := game.NewSession(
		game.WithLogger(logger),
		game.WithPersister(st),
		game.WithBalance(balance),
		game.WithSettingsPatch(patch),
		game.WithRNG(rng),
	)
	defer session.Save()

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger.Info("Starting blackjack", "config", g.Config, "balance", session.Balance(), "decks", session.Settings().DeckCount)
	return tui.Run(session, logger)
}
