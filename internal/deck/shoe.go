package deck

import (
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/blackjack/internal/randutil"
)

const (
	// CardsPerDeck is the size of one standard deck
	CardsPerDeck = 52

	MinDecks = 1
	MaxDecks = 8

	// Penetration is the dealt fraction at which a reshuffle is due.
	MinPenetration     = 0.5
	MaxPenetration     = 0.9
	DefaultPenetration = 0.75
)

// ErrShoeEmpty signals a deal from an exhausted shoe
var ErrShoeEmpty = errors.New("shoe is empty")

// Shoe is one or more decks combined into a single draw pile plus the
// discard pile of cards dealt since the last shuffle.
type Shoe struct {
	cards       []Card
	dealt       []Card
	decks       int
	penetration float64
	running     int
	system      CountingSystem
	rng         *rand.Rand
}

// NewShoe creates a shuffled shoe of the given number of decks. A nil rng
// uses a cryptographically seeded generator.
func NewShoe(decks int, rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = randutil.NewSecure()
	}
	s := &Shoe{
		decks:       clampDecks(decks),
		penetration: DefaultPenetration,
		system:      HiLo,
		rng:         rng,
	}
	s.Initialize()
	s.Shuffle()
	return s
}

// Initialize rebuilds every deck in natural order, empties the discard
// pile and resets the running count.
func (s *Shoe) Initialize() {
	total := s.decks * CardsPerDeck
	s.cards = make([]Card, 0, total)
	s.dealt = make([]Card, 0, total)
	for range s.decks {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.running = 0
}

// Shuffle returns the discard pile to the draw pile and applies a
// Fisher-Yates shuffle over the whole shoe. The running count restarts
// because it only tracks cards seen since the last shuffle.
func (s *Shoe) Shuffle() {
	s.cards = append(s.cards, s.dealt...)
	s.dealt = s.dealt[:0]
	for i := range s.cards {
		s.cards[i].FaceUp = true
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	s.running = 0
}

// Reshuffle rebuilds the shoe from fresh decks and shuffles it
func (s *Shoe) Reshuffle() {
	s.Initialize()
	s.Shuffle()
}

// Deal removes the top card of the draw pile and moves it to the discard
// pile. It returns false when the shoe is empty.
func (s *Shoe) Deal() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	s.dealt = append(s.dealt, card)
	return card, true
}

// UpdateCount adds the active system's weight for a face-up card.
// Face-down cards are ignored until they are revealed.
func (s *Shoe) UpdateCount(card Card) {
	if !card.FaceUp {
		return
	}
	s.running += s.system.Weight(card.Rank)
}

// RunningCount returns the tally since the last shuffle
func (s *Shoe) RunningCount() int {
	return s.running
}

// DecksRemaining returns the undealt portion of the shoe in decks
func (s *Shoe) DecksRemaining() float64 {
	return float64(len(s.cards)) / CardsPerDeck
}

// TrueCount returns the running count per remaining deck, rounded to the
// nearest integer. With less than half a deck left the running count is
// returned unscaled.
func (s *Shoe) TrueCount() int {
	remaining := s.DecksRemaining()
	if remaining < 0.5 {
		return s.running
	}
	// Halves round away from zero in both directions: -2.5 is -3, +2.5 is +3.
	return int(math.Round(float64(s.running) / remaining))
}

// NeedsReshuffle reports whether the dealt fraction has reached the
// penetration threshold
func (s *Shoe) NeedsReshuffle() bool {
	return s.DealtFraction() >= s.penetration
}

// DealtFraction returns the share of the shoe currently in the discard pile
func (s *Shoe) DealtFraction() float64 {
	return float64(len(s.dealt)) / float64(s.Total())
}

// Recycle shuffles the discard pile back into the draw pile, keeping out
// the given cards that are still on the table. The count restarts with the
// face-up cards still in play.
func (s *Shoe) Recycle(inPlay []Card) int {
	keep := make([]Card, 0, len(inPlay))
	pool := make([]Card, 0, len(s.dealt))
	pending := append([]Card(nil), inPlay...)

	for _, c := range s.dealt {
		matched := false
		for i, p := range pending {
			if p.Same(c) {
				pending = append(pending[:i], pending[i+1:]...)
				matched = true
				break
			}
		}
		if matched {
			keep = append(keep, c)
		} else {
			c.FaceUp = true
			pool = append(pool, c)
		}
	}

	s.cards = append(s.cards, pool...)
	s.dealt = keep
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}

	s.running = 0
	for _, c := range inPlay {
		s.UpdateCount(c)
	}
	return len(pool)
}

// Stack moves the given cards to the top of the draw pile so that they
// are dealt next, in order. Cards must still be in the draw pile.
func (s *Shoe) Stack(cards ...Card) error {
	if len(cards) > len(s.cards) {
		return fmt.Errorf("%w: cannot stack %d cards on %d", ErrShoeEmpty, len(cards), len(s.cards))
	}
	for i, want := range cards {
		pos := len(s.cards) - 1 - i
		found := -1
		for j := pos; j >= 0; j-- {
			if s.cards[j].Same(want) {
				found = j
				break
			}
		}
		if found < 0 {
			return fmt.Errorf("%w: %s is not in the draw pile", ErrInvalidCard, NewCard(want.Suit, want.Rank))
		}
		s.cards[pos], s.cards[found] = s.cards[found], s.cards[pos]
	}
	return nil
}

// SetDeckCount changes the number of decks and rebuilds a shuffled shoe
func (s *Shoe) SetDeckCount(n int) {
	s.decks = clampDecks(n)
	s.Reshuffle()
}

// SetCountingSystem switches the tally table. The running count is kept.
func (s *Shoe) SetCountingSystem(cs CountingSystem) {
	if !cs.Valid() {
		cs = HiLo
	}
	s.system = cs
}

// SetPenetration sets the reshuffle threshold, clamped to
// [MinPenetration, MaxPenetration]
func (s *Shoe) SetPenetration(level float64) {
	s.penetration = ClampPenetration(level)
}

// ClampPenetration limits a penetration level to the supported range
func ClampPenetration(level float64) float64 {
	if math.IsNaN(level) {
		return DefaultPenetration
	}
	return math.Min(MaxPenetration, math.Max(MinPenetration, level))
}

func clampDecks(n int) int {
	return min(MaxDecks, max(MinDecks, n))
}

// Remaining returns the number of undealt cards
func (s *Shoe) Remaining() int { return len(s.cards) }

// Dealt returns the number of cards in the discard pile
func (s *Shoe) Dealt() int { return len(s.dealt) }

// Total returns the full size of the shoe
func (s *Shoe) Total() int { return s.decks * CardsPerDeck }

// DeckCount returns the number of decks in the shoe
func (s *Shoe) DeckCount() int { return s.decks }

// Penetration returns the reshuffle threshold
func (s *Shoe) Penetration() float64 { return s.penetration }

// CountingSystem returns the active tally table
func (s *Shoe) CountingSystem() CountingSystem { return s.system }
