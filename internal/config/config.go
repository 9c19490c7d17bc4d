// Package config loads the table rules, bankroll and storage settings from
// an HCL or YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
	"gopkg.in/yaml.v3"
)

// File is the decoded config file. Every field is optional; unset fields
// keep their defaults.
type File struct {
	StartingBalance *float64 `hcl:"starting_balance,optional" yaml:"starting_balance"`
	LogLevel        *string  `hcl:"log_level,optional" yaml:"log_level"`
	Rules           *Rules   `hcl:"rules,block" yaml:"rules"`
	Storage         *Storage `hcl:"storage,block" yaml:"storage"`
}

// Rules mirrors game.Settings with file-friendly names
type Rules struct {
	Decks            *int     `hcl:"decks,optional" yaml:"decks"`
	Penetration      *float64 `hcl:"penetration,optional" yaml:"penetration"`
	DealerHitsSoft17 *bool    `hcl:"dealer_hits_soft_17,optional" yaml:"dealer_hits_soft_17"`
	BlackjackPayout  *float64 `hcl:"blackjack_payout,optional" yaml:"blackjack_payout"`
	DoubleAfterSplit *bool    `hcl:"double_after_split,optional" yaml:"double_after_split"`
	DoubleAnyCards   *bool    `hcl:"double_any_cards,optional" yaml:"double_any_cards"`
	ResplitAces      *bool    `hcl:"resplit_aces,optional" yaml:"resplit_aces"`
	Surrender        *bool    `hcl:"surrender,optional" yaml:"surrender"`
	Insurance        *bool    `hcl:"insurance,optional" yaml:"insurance"`
	Counting         *bool    `hcl:"counting,optional" yaml:"counting"`
	CountingSystem   *string  `hcl:"counting_system,optional" yaml:"counting_system"`
	MinBet           *float64 `hcl:"min_bet,optional" yaml:"min_bet"`
	MaxBet           *float64 `hcl:"max_bet,optional" yaml:"max_bet"`
	AutoStandOn21    *bool    `hcl:"auto_stand_on_21,optional" yaml:"auto_stand_on_21"`
	MaxHands         *int     `hcl:"max_hands,optional" yaml:"max_hands"`
	HoleCard         *bool    `hcl:"hole_card,optional" yaml:"hole_card"`
	CardDelay        *string  `hcl:"card_delay,optional" yaml:"card_delay"`
}

// Storage selects where session state is kept
type Storage struct {
	Backend   *string `hcl:"backend,optional" yaml:"backend"`
	Dir       *string `hcl:"dir,optional" yaml:"dir"`
	RedisAddr *string `hcl:"redis_addr,optional" yaml:"redis_addr"`
	RedisDB   *int    `hcl:"redis_db,optional" yaml:"redis_db"`
	TTL       *string `hcl:"ttl,optional" yaml:"ttl"`
}

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes src, choosing YAML for .yaml/.yml names and HCL otherwise
func Parse(src []byte, filename string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		f, err = parseYAML(src)
	default:
		f, err = parseHCL(src, filename)
	}
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func parseHCL(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return &f, nil
}

func parseYAML(src []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return &f, nil
}

// Validate checks the values that cannot be clamped
func (f *File) Validate() error {
	if f.StartingBalance != nil && *f.StartingBalance < 0 {
		return fmt.Errorf("starting_balance must not be negative")
	}
	if _, err := f.SettingsPatch(); err != nil {
		return err
	}
	if _, err := f.StoreConfig(store.Config{}); err != nil {
		return err
	}
	return nil
}

// Balance returns the configured starting balance or def
func (f *File) Balance(def float64) float64 {
	if f.StartingBalance == nil {
		return def
	}
	return *f.StartingBalance
}

// SettingsPatch converts the rules block into a patch. Range checks are
// left to game.Settings.Normalize.
func (f *File) SettingsPatch() (game.SettingsPatch, error) {
	r := f.Rules
	if r == nil {
		return game.SettingsPatch{}, nil
	}
	p := game.SettingsPatch{
		DeckCount:        r.Decks,
		Penetration:      r.Penetration,
		DealerHitsSoft17: r.DealerHitsSoft17,
		BlackjackPayout:  r.BlackjackPayout,
		DoubleAfterSplit: r.DoubleAfterSplit,
		DoubleAnyCards:   r.DoubleAnyCards,
		ResplitAces:      r.ResplitAces,
		SurrenderAllowed: r.Surrender,
		InsuranceAllowed: r.Insurance,
		CountingEnabled:  r.Counting,
		MinBet:           r.MinBet,
		MaxBet:           r.MaxBet,
		AutoStandOn21:    r.AutoStandOn21,
		MaxHands:         r.MaxHands,
		DealerHoleCard:   r.HoleCard,
	}
	if r.CountingSystem != nil {
		cs, err := deck.ParseCountingSystem(*r.CountingSystem)
		if err != nil {
			return p, fmt.Errorf("rules.counting_system: %w", err)
		}
		p.CountingSystem = &cs
	}
	if r.CardDelay != nil {
		d, err := time.ParseDuration(*r.CardDelay)
		if err != nil {
			return p, fmt.Errorf("rules.card_delay: %w", err)
		}
		p.CardDelay = &d
	}
	return p, nil
}

// StoreConfig overlays the storage block onto base
func (f *File) StoreConfig(base store.Config) (store.Config, error) {
	s := f.Storage
	if s == nil {
		return base, nil
	}
	if s.Backend != nil {
		base.Backend = *s.Backend
		if err := base.Validate(); err != nil {
			return base, fmt.Errorf("storage.backend: %w", err)
		}
	}
	if s.Dir != nil {
		base.Dir = *s.Dir
	}
	if s.RedisAddr != nil {
		base.RedisAddr = *s.RedisAddr
	}
	if s.RedisDB != nil {
		base.RedisDB = *s.RedisDB
	}
	if s.TTL != nil {
		d, err := time.ParseDuration(*s.TTL)
		if err != nil {
			return base, fmt.Errorf("storage.ttl: %w", err)
		}
		base.TTL = d
	}
	return base, nil
}
