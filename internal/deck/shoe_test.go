package deck

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardCounts(cards []Card) map[Card]int {
	counts := make(map[Card]int)
	for _, c := range cards {
		c.FaceUp = true
		counts[c]++
	}
	return counts
}

func TestShuffleIsPermutation(t *testing.T) {
	for decks := MinDecks; decks <= MaxDecks; decks++ {
		s := NewShoe(decks, randutil.New(int64(decks)))
		require.Equal(t, decks*CardsPerDeck, s.Remaining())

		counts := cardCounts(s.cards)
		assert.Len(t, counts, CardsPerDeck, "every distinct card present")
		for card, n := range counts {
			assert.Equal(t, decks, n, "card %s appears %d times", card, n)
		}
	}
}

func TestShuffleChangesOrder(t *testing.T) {
	s := NewShoe(1, randutil.New(7))
	natural := NewShoe(1, randutil.New(7))
	natural.Initialize()

	moved := 0
	for i := range s.cards {
		if !s.cards[i].Same(natural.cards[i]) {
			moved++
		}
	}
	assert.Greater(t, moved, 40)
}

func TestDealMovesCardToDiscard(t *testing.T) {
	s := NewShoe(2, randutil.New(1))
	top := s.cards[len(s.cards)-1]

	card, ok := s.Deal()
	require.True(t, ok)
	assert.Equal(t, top, card)
	assert.Equal(t, 103, s.Remaining())
	assert.Equal(t, 1, s.Dealt())
	assert.Equal(t, s.Total(), s.Remaining()+s.Dealt())
}

func TestDealFromEmptyShoe(t *testing.T) {
	s := NewShoe(1, randutil.New(1))
	for range CardsPerDeck {
		_, ok := s.Deal()
		require.True(t, ok)
	}
	_, ok := s.Deal()
	assert.False(t, ok)
}

func TestShuffleMergesDiscards(t *testing.T) {
	s := NewShoe(1, randutil.New(3))
	for range 20 {
		s.Deal()
	}
	s.UpdateCount(NewCard(Spades, Two))
	s.Shuffle()

	assert.Equal(t, CardsPerDeck, s.Remaining())
	assert.Zero(t, s.Dealt())
	assert.Zero(t, s.RunningCount())
	assert.Len(t, cardCounts(s.cards), CardsPerDeck)
}

func TestRunningCountHiLo(t *testing.T) {
	s := NewShoe(6, randutil.New(1))
	for _, c := range MustParseCards("2s3h4d5c6s7h8d9cTsJhQdKcAs") {
		s.UpdateCount(c)
	}
	// +5 low cards, 0 neutrals, -5 tens and ace
	assert.Equal(t, 0, s.RunningCount())

	for _, c := range MustParseCards("2s5h6d") {
		s.UpdateCount(c)
	}
	assert.Equal(t, 3, s.RunningCount())
}

func TestRunningCountPerSystem(t *testing.T) {
	cards := MustParseCards("2s4h5dTcAs9h")
	want := map[CountingSystem]int{
		HiLo:    1 + 1 + 1 - 1 - 1 + 0,
		KO:      1 + 1 + 1 - 1 - 1 + 0,
		OmegaII: 1 + 2 + 2 - 2 + 0 - 1,
		HiOptI:  0 + 1 + 1 - 1 + 0 + 0,
		HiOptII: 1 + 2 + 2 - 2 + 0 + 0,
	}
	for cs, expected := range want {
		s := NewShoe(1, randutil.New(1))
		s.SetCountingSystem(cs)
		for _, c := range cards {
			s.UpdateCount(c)
		}
		assert.Equal(t, expected, s.RunningCount(), cs.String())
	}
}

func TestFaceDownCardsAreNotCounted(t *testing.T) {
	s := NewShoe(1, randutil.New(1))
	hole := NewCard(Hearts, Five)
	hole.FaceUp = false

	s.UpdateCount(hole)
	assert.Zero(t, s.RunningCount())

	hole.FaceUp = true
	s.UpdateCount(hole)
	assert.Equal(t, 1, s.RunningCount())
}

func TestTrueCount(t *testing.T) {
	s := NewShoe(6, randutil.New(1))
	s.running = 10
	// 312 cards = 6 decks; 10/6 = 1.67
	assert.Equal(t, 2, s.TrueCount())

	for range 156 {
		s.Deal()
	}
	// 3 decks left; 10/3 = 3.33
	assert.Equal(t, 3, s.TrueCount())

	s.running = -5
	// 3 decks left; -5/3 = -1.67
	assert.Equal(t, -2, s.TrueCount())
}

func TestTrueCountRoundsHalvesAwayFromZero(t *testing.T) {
	s := NewShoe(6, randutil.New(1))
	for range 208 {
		s.Deal()
	}
	require.Equal(t, 104, s.Remaining())

	// 2 decks left
	s.running = 5
	assert.Equal(t, 3, s.TrueCount())
	s.running = -5
	assert.Equal(t, -3, s.TrueCount())
	s.running = -3
	assert.Equal(t, -2, s.TrueCount())
}

func TestTrueCountNearlyExhausted(t *testing.T) {
	s := NewShoe(1, randutil.New(1))
	for range 30 {
		s.Deal()
	}
	s.running = 4
	// 22 cards left is 0.42 decks: running count is returned as is
	assert.Equal(t, 4, s.TrueCount())

	s2 := NewShoe(1, randutil.New(1))
	for range 26 {
		s2.Deal()
	}
	s2.running = 4
	// exactly half a deck scales normally
	assert.Equal(t, 8, s2.TrueCount())
}

func TestPenetrationBounds(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		want  float64
	}{
		{"below minimum", 0.2, MinPenetration},
		{"minimum", 0.5, 0.5},
		{"typical", 0.75, 0.75},
		{"maximum", 0.9, 0.9},
		{"above maximum", 1.0, MaxPenetration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShoe(1, randutil.New(1))
			s.SetPenetration(tt.level)
			assert.Equal(t, tt.want, s.Penetration())
		})
	}
}

func TestNeedsReshuffleAtExtremes(t *testing.T) {
	low := NewShoe(2, randutil.New(1))
	low.SetPenetration(MinPenetration)
	for range 51 {
		low.Deal()
	}
	assert.False(t, low.NeedsReshuffle())
	low.Deal()
	assert.True(t, low.NeedsReshuffle(), "52 of 104 dealt reaches 0.5")

	high := NewShoe(1, randutil.New(1))
	high.SetPenetration(MaxPenetration)
	for range 46 {
		high.Deal()
	}
	assert.False(t, high.NeedsReshuffle(), "46/52 is below 0.9")
	high.Deal()
	assert.True(t, high.NeedsReshuffle(), "47/52 passes 0.9")
}

func TestReshuffleRestoresShoe(t *testing.T) {
	s := NewShoe(4, randutil.New(9))
	for range 150 {
		c, _ := s.Deal()
		s.UpdateCount(c)
	}
	s.Reshuffle()

	assert.Equal(t, 4, s.DeckCount())
	assert.Equal(t, 208, s.Remaining())
	assert.Zero(t, s.Dealt())
	assert.Zero(t, s.RunningCount())
}

func TestSetDeckCountClamps(t *testing.T) {
	s := NewShoe(6, randutil.New(1))
	s.SetDeckCount(12)
	assert.Equal(t, MaxDecks, s.DeckCount())
	assert.Equal(t, MaxDecks*CardsPerDeck, s.Remaining())

	s.SetDeckCount(0)
	assert.Equal(t, MinDecks, s.DeckCount())
	assert.Equal(t, CardsPerDeck, s.Remaining())
}

func TestStackDealsInOrder(t *testing.T) {
	s := NewShoe(1, randutil.New(5))
	want := MustParseCards("KsAh7d")
	require.NoError(t, s.Stack(want...))

	for _, w := range want {
		got, ok := s.Deal()
		require.True(t, ok)
		assert.True(t, got.Same(w), "got %s want %s", got, w)
	}
	assert.Equal(t, s.Total(), s.Remaining()+s.Dealt())
}

func TestStackRejectsDealtCard(t *testing.T) {
	s := NewShoe(1, randutil.New(5))
	require.NoError(t, s.Stack(MustParseCards("As")...))
	s.Deal()

	err := s.Stack(MustParseCards("As")...)
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestRecycleKeepsCardsInPlay(t *testing.T) {
	s := NewShoe(1, randutil.New(2))
	for range 50 {
		s.Deal()
	}
	inPlay := []Card{s.dealt[48], s.dealt[49]}
	hidden := inPlay[1]
	hidden.FaceUp = false
	inPlay[1] = hidden

	returned := s.Recycle(inPlay)
	assert.Equal(t, 48, returned)
	assert.Equal(t, 50, s.Remaining())
	assert.Equal(t, 2, s.Dealt())
	assert.Len(t, cardCounts(append(append([]Card{}, s.cards...), s.dealt...)), CardsPerDeck)
	assert.Equal(t, HiLo.Weight(inPlay[0].Rank), s.RunningCount())
}
