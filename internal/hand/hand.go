// Package hand models a single blackjack betting unit: the cards held, the
// stake riding on them and the flags the round sets as the hand is played.
package hand

import (
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Hand is an ordered set of cards with a stake. Its value is always derived
// from the cards because an ace may count 1 or 11.
type Hand struct {
	Cards       []deck.Card
	Bet         float64
	Insurance   float64
	Doubled     bool
	Split       bool
	Stood       bool
	Busted      bool
	Surrendered bool
}

// New creates an empty hand carrying the given stake
func New(bet float64) *Hand {
	return &Hand{Bet: bet}
}

// AddCard appends a card and re-derives bust status
func (h *Hand) AddCard(c deck.Card) {
	h.Cards = append(h.Cards, c)
	h.Busted = h.Value() > 21
}

// Value returns the best total, counting aces as 11 until that would bust
func (h *Hand) Value() int {
	return total(h.Cards, false)
}

// VisibleValue is the total of the face-up cards only
func (h *Hand) VisibleValue() int {
	return total(h.Cards, true)
}

func total(cards []deck.Card, visibleOnly bool) int {
	sum, aces := 0, 0
	for _, c := range cards {
		if visibleOnly && !c.FaceUp {
			continue
		}
		sum += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for sum > 21 && aces > 0 {
		sum -= 10
		aces--
	}
	return sum
}

// HardValue is the total with every ace counted as 1
func (h *Hand) HardValue() int {
	sum := 0
	for _, c := range h.Cards {
		if c.IsAce() {
			sum++
			continue
		}
		sum += c.Value()
	}
	return sum
}

// IsSoft reports whether an ace is still being counted as 11
func (h *Hand) IsSoft() bool {
	for _, c := range h.Cards {
		if c.IsAce() {
			return h.HardValue()+10 <= 21
		}
	}
	return false
}

// IsBlackjack reports a natural: two cards totalling 21 on a hand that did
// not come from a split.
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.Value() == 21 && !h.Split
}

// IsBust reports a total over 21
func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

// IsPair reports two cards of equal rank
func (h *Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// CanSplit reports whether the hand's shape allows a split. Table limits
// and funds are checked by the round.
func (h *Hand) CanSplit() bool {
	return h.IsPair()
}

// CanDouble reports whether the hand's shape allows a double down
func (h *Hand) CanDouble(allowAnyCount bool) bool {
	if h.Doubled {
		return false
	}
	return allowAnyCount || len(h.Cards) == 2
}

// CanSurrender reports an untouched two-card hand
func (h *Hand) CanSurrender() bool {
	return len(h.Cards) == 2 && !h.Split && !h.Doubled && !h.Stood && !h.Surrendered
}

// IsSplitAces reports a hand created by splitting aces
func (h *Hand) IsSplitAces() bool {
	return h.Split && len(h.Cards) > 0 && h.Cards[0].IsAce()
}

// Done reports whether the hand needs no further player decisions
func (h *Hand) Done() bool {
	return h.Stood || h.Busted || h.Surrendered
}

// Clear resets every field to the empty state
func (h *Hand) Clear() {
	*h = Hand{}
}

// Clone returns a deep copy of the hand
func (h *Hand) Clone() *Hand {
	c := *h
	c.Cards = append([]deck.Card(nil), h.Cards...)
	return &c
}

// String renders the cards, e.g. "A♠ K♥"
func (h *Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
