package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
)

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" type:"path" default:"~/.blackjack/blackjack.hcl" help:"Rules file (HCL, or YAML by extension)"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	LogFile  string `help:"Log file path"`
}

// RulesFlags override table rules from the rules file
type RulesFlags struct {
	Decks       *int           `help:"Number of decks (1-8)"`
	Penetration *float64       `help:"Fraction of the shoe dealt before a reshuffle (0.5-0.9)"`
	H17         bool           `name:"h17" help:"Dealer hits soft 17"`
	S17         bool           `name:"s17" help:"Dealer stands on soft 17"`
	Payout      *float64       `help:"Blackjack payout ratio (1.0-2.0)"`
	System      string         `help:"Counting system (hi-lo, ko, hi-opt-i, hi-opt-ii, omega-ii)"`
	NoCount     bool           `help:"Disable card counting"`
	MinBet      *float64       `help:"Table minimum"`
	MaxBet      *float64       `help:"Table maximum"`
	CardDelay   *time.Duration `help:"Pause between dealt cards"`
}

// Patch converts the flags that were set into a settings patch
func (r RulesFlags) Patch() (game.SettingsPatch, error) {
	p := game.SettingsPatch{
		DeckCount:       r.Decks,
		Penetration:     r.Penetration,
		BlackjackPayout: r.Payout,
		MinBet:          r.MinBet,
		MaxBet:          r.MaxBet,
		CardDelay:       r.CardDelay,
	}
	switch {
	case r.H17 && r.S17:
		return p, fmt.Errorf("--h17 and --s17 are mutually exclusive")
	case r.H17:
		p.DealerHitsSoft17 = game.Ptr(true)
	case r.S17:
		p.DealerHitsSoft17 = game.Ptr(false)
	}
	if r.System != "" {
		cs, err := deck.ParseCountingSystem(r.System)
		if err != nil {
			return p, err
		}
		p.CountingSystem = &cs
	}
	if r.NoCount {
		p.CountingEnabled = game.Ptr(false)
	}
	return p, nil
}

// loadConfig reads the rules file and layers the flag overrides on top
func (g *Globals) loadConfig(rules RulesFlags) (*config.File, game.SettingsPatch, error) {
	f, err := config.Load(g.Config)
	if err != nil {
		return nil, game.SettingsPatch{}, err
	}
	patch, err := f.SettingsPatch()
	if err != nil {
		return nil, game.SettingsPatch{}, err
	}
	flags, err := rules.Patch()
	if err != nil {
		return nil, game.SettingsPatch{}, err
	}
	return f, patch.Merge(flags), nil
}

// setupLogger builds the logger. Without --log-file it writes to fallback.
func (g *Globals) setupLogger(f *config.File, fallback io.Writer) (*log.Logger, func(), error) {
	name := g.LogLevel
	if name == "" && f != nil && f.LogLevel != nil {
		name = *f.LogLevel
	}
	level := log.InfoLevel
	if name != "" {
		parsed, err := log.ParseLevel(name)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", name, err)
		}
		level = parsed
	}

	out, closer := fallback, func() {}
	if g.LogFile != "" {
		file, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = file, func() { _ = file.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	return logger, closer, nil
}

// openStore resolves storage config as defaults < file < environment < flag
func openStore(f *config.File, backend string) (store.Store, error) {
	cfg := store.DefaultConfig()
	if f != nil {
		var err error
		if cfg, err = f.StoreConfig(cfg); err != nil {
			return nil, err
		}
	}
	cfg, err := store.FromEnv(cfg)
	if err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return store.Open(cfg, quartz.NewReal())
}
