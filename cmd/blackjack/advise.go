package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

// AdviseCmd prints the recommended play for a hand against an upcard
type AdviseCmd struct {
	Hand      string `arg:"" help:"Player cards, e.g. 'Ts6h'"`
	Upcard    string `arg:"" help:"Dealer upcard, e.g. 'Ah'"`
	TrueCount int    `short:"t" help:"True count for deviations"`
	NoCount   bool   `help:"Ignore count deviations"`

	NoDouble    bool `help:"Doubling is not allowed"`
	NoSplit     bool `help:"Splitting is not allowed"`
	NoSurrender bool `help:"Surrender is not allowed"`
}

func (c *AdviseCmd) Run(_ *Globals) error {
	return c.advise(os.Stdout)
}

func (c *AdviseCmd) advise(w io.Writer) error {
	sit, err := c.situation()
	if err != nil {
		return err
	}

	h := sit.Hand
	kind := "hard"
	if h.IsSoft() {
		kind = "soft"
	}
	fmt.Fprintf(w, "Hand: %s (%s %d) vs dealer %s\n", h, kind, h.Value(), sit.Upcard)
	fmt.Fprintf(w, "Available: %s\n", sit.Available)
	fmt.Fprintf(w, "Basic: %s\n", strategy.Basic(sit))
	fmt.Fprintf(w, "Recommended: %s\n", strategy.Recommend(sit))
	if ex, ok := strategy.Explain(sit); ok && sit.Counting {
		fmt.Fprintf(w, "Deviation: %s\n", ex.Reason)
	}
	if sit.Upcard.IsAce() {
		take := "decline"
		if sit.Counting && strategy.TakeInsurance(sit.TrueCount) {
			take = "take"
		}
		fmt.Fprintf(w, "Insurance: %s\n", take)
	}
	return nil
}

func (c *AdviseCmd) situation() (strategy.Situation, error) {
	cards, err := deck.ParseCards(c.Hand)
	if err != nil {
		return strategy.Situation{}, fmt.Errorf("parse hand: %w", err)
	}
	if len(cards) < 2 {
		return strategy.Situation{}, fmt.Errorf("hand needs at least two cards, got %d", len(cards))
	}
	up, err := deck.ParseCards(c.Upcard)
	if err != nil {
		return strategy.Situation{}, fmt.Errorf("parse upcard: %w", err)
	}
	if len(up) != 1 {
		return strategy.Situation{}, fmt.Errorf("expected one upcard, got %d", len(up))
	}

	h := hand.New(0)
	for _, card := range cards {
		h.AddCard(card)
	}
	if h.IsBust() {
		return strategy.Situation{}, fmt.Errorf("hand %s is already bust", h)
	}

	avail := strategy.NewActionSet(strategy.Hit, strategy.Stand)
	if !c.NoDouble && h.CanDouble(false) {
		avail = avail.With(strategy.Double)
	}
	if !c.NoSplit && h.CanSplit() {
		avail = avail.With(strategy.Split)
	}
	if !c.NoSurrender && h.CanSurrender() {
		avail = avail.With(strategy.Surrender)
	}

	return strategy.Situation{
		Hand:      h,
		Upcard:    up[0],
		Available: avail,
		TrueCount: c.TrueCount,
		Counting:  !c.NoCount,
	}, nil
}
