package game

import (
	"math"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// Table limits enforced by Normalize
const (
	MinPayout      = 1.0
	MaxPayout      = 2.0
	MinHands       = 1
	MaxHands       = 4
	MaxCardDelay   = 2 * time.Second
	DefaultBalance = 10000.0
)

// Settings holds the table rules. Every field is range-checked by
// Normalize before a session uses it.
type Settings struct {
	DeckCount        int                 `json:"deckCount"`
	Penetration      float64             `json:"penetration"`
	DealerHitsSoft17 bool                `json:"dealerHitsSoft17"`
	BlackjackPayout  float64             `json:"blackjackPayout"`
	DoubleAfterSplit bool                `json:"doubleAfterSplit"`
	DoubleAnyCards   bool                `json:"doubleAnyCards"`
	ResplitAces      bool                `json:"resplitAces"`
	SurrenderAllowed bool                `json:"surrenderAllowed"`
	InsuranceAllowed bool                `json:"insuranceAllowed"`
	CountingEnabled  bool                `json:"countingEnabled"`
	CountingSystem   deck.CountingSystem `json:"countingSystem"`
	MinBet           float64             `json:"minBet"`
	MaxBet           float64             `json:"maxBet"`
	AutoStandOn21    bool                `json:"autoStandOn21"`
	MaxHands         int                 `json:"maxHands"`
	DealerHoleCard   bool                `json:"dealerHoleCard"`
	CardDelay        time.Duration       `json:"cardDelay"`
}

// DefaultSettings returns a six-deck S17 table paying 3:2
func DefaultSettings() Settings {
	return Settings{
		DeckCount:        6,
		Penetration:      deck.DefaultPenetration,
		BlackjackPayout:  1.5,
		DoubleAfterSplit: true,
		SurrenderAllowed: true,
		InsuranceAllowed: true,
		CountingEnabled:  true,
		CountingSystem:   deck.HiLo,
		MinBet:           10,
		MaxBet:           1000,
		AutoStandOn21:    true,
		MaxHands:         MaxHands,
		DealerHoleCard:   true,
		CardDelay:        300 * time.Millisecond,
	}
}

// Normalize clamps every field into its legal range
func (s Settings) Normalize() Settings {
	s.DeckCount = clampInt(s.DeckCount, deck.MinDecks, deck.MaxDecks)
	s.Penetration = deck.ClampPenetration(s.Penetration)
	if math.IsNaN(s.BlackjackPayout) {
		s.BlackjackPayout = 1.5
	}
	s.BlackjackPayout = math.Max(MinPayout, math.Min(MaxPayout, s.BlackjackPayout))
	if !s.CountingSystem.Valid() {
		s.CountingSystem = deck.HiLo
	}
	if math.IsNaN(s.MinBet) || s.MinBet < 1 {
		s.MinBet = 1
	}
	if math.IsNaN(s.MaxBet) || s.MaxBet < s.MinBet {
		s.MaxBet = s.MinBet
	}
	s.MaxHands = clampInt(s.MaxHands, MinHands, MaxHands)
	if s.CardDelay < 0 {
		s.CardDelay = 0
	}
	if s.CardDelay > MaxCardDelay {
		s.CardDelay = MaxCardDelay
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SettingsPatch is a partial update; nil fields are left untouched
type SettingsPatch struct {
	DeckCount        *int
	Penetration      *float64
	DealerHitsSoft17 *bool
	BlackjackPayout  *float64
	DoubleAfterSplit *bool
	DoubleAnyCards   *bool
	ResplitAces      *bool
	SurrenderAllowed *bool
	InsuranceAllowed *bool
	CountingEnabled  *bool
	CountingSystem   *deck.CountingSystem
	MinBet           *float64
	MaxBet           *float64
	AutoStandOn21    *bool
	MaxHands         *int
	DealerHoleCard   *bool
	CardDelay        *time.Duration
}

// Empty reports whether the patch sets nothing
func (p SettingsPatch) Empty() bool {
	return p == SettingsPatch{}
}

// Merge overlays other onto p, other winning where both are set
func (p SettingsPatch) Merge(other SettingsPatch) SettingsPatch {
	set(&p.DeckCount, other.DeckCount)
	set(&p.Penetration, other.Penetration)
	set(&p.DealerHitsSoft17, other.DealerHitsSoft17)
	set(&p.BlackjackPayout, other.BlackjackPayout)
	set(&p.DoubleAfterSplit, other.DoubleAfterSplit)
	set(&p.DoubleAnyCards, other.DoubleAnyCards)
	set(&p.ResplitAces, other.ResplitAces)
	set(&p.SurrenderAllowed, other.SurrenderAllowed)
	set(&p.InsuranceAllowed, other.InsuranceAllowed)
	set(&p.CountingEnabled, other.CountingEnabled)
	set(&p.CountingSystem, other.CountingSystem)
	set(&p.MinBet, other.MinBet)
	set(&p.MaxBet, other.MaxBet)
	set(&p.AutoStandOn21, other.AutoStandOn21)
	set(&p.MaxHands, other.MaxHands)
	set(&p.DealerHoleCard, other.DealerHoleCard)
	set(&p.CardDelay, other.CardDelay)
	return p
}

func set[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Apply merges the patch field by field and normalizes the result
func (s Settings) Apply(p SettingsPatch) Settings {
	apply(&s.DeckCount, p.DeckCount)
	apply(&s.Penetration, p.Penetration)
	apply(&s.DealerHitsSoft17, p.DealerHitsSoft17)
	apply(&s.BlackjackPayout, p.BlackjackPayout)
	apply(&s.DoubleAfterSplit, p.DoubleAfterSplit)
	apply(&s.DoubleAnyCards, p.DoubleAnyCards)
	apply(&s.ResplitAces, p.ResplitAces)
	apply(&s.SurrenderAllowed, p.SurrenderAllowed)
	apply(&s.InsuranceAllowed, p.InsuranceAllowed)
	apply(&s.CountingEnabled, p.CountingEnabled)
	apply(&s.CountingSystem, p.CountingSystem)
	apply(&s.MinBet, p.MinBet)
	apply(&s.MaxBet, p.MaxBet)
	apply(&s.AutoStandOn21, p.AutoStandOn21)
	apply(&s.MaxHands, p.MaxHands)
	apply(&s.DealerHoleCard, p.DealerHoleCard)
	apply(&s.CardDelay, p.CardDelay)
	return s.Normalize()
}

// Ptr returns a pointer to v, for building patches
func Ptr[T any](v T) *T {
	return &v
}
