package hand

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
)

func handOf(notation string) *Hand {
	h := New(10)
	for _, c := range deck.MustParseCards(notation) {
		h.AddCard(c)
	}
	return h
}

func TestValue(t *testing.T) {
	tests := []struct {
		cards string
		value int
		soft  bool
	}{
		{"AsKh", 21, true},
		{"AsAh9d", 21, true},
		{"AsAhAd9c", 12, false},
		{"AsAh", 12, true},
		{"Ts6h", 16, false},
		{"As6h", 17, true},
		{"As6hTd", 17, false},
		{"KsQhJd", 30, false},
		{"5s5h5d5c", 20, false},
		{"AsAhAdAc7s", 21, true},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			h := handOf(tt.cards)
			assert.Equal(t, tt.value, h.Value())
			assert.Equal(t, tt.soft, h.IsSoft())
		})
	}
}

func TestValueNeverExceeds21WhileAceReducible(t *testing.T) {
	h := New(0)
	for _, c := range deck.MustParseCards("As9hAdAc5s") {
		h.AddCard(c)
		if h.HardValue() <= 21 {
			assert.LessOrEqual(t, h.Value(), 21, h.String())
		}
	}
}

func TestAddCardDerivesBust(t *testing.T) {
	h := handOf("Ts6h")
	assert.False(t, h.Busted)
	h.AddCard(deck.NewCard(deck.Clubs, deck.Nine))
	assert.True(t, h.Busted)
	assert.True(t, h.IsBust())
}

func TestIsBlackjack(t *testing.T) {
	h := handOf("AsKh")
	assert.True(t, h.IsBlackjack())

	h.Split = true
	assert.False(t, h.IsBlackjack(), "split hands are never naturals")

	assert.False(t, handOf("As5h5d").IsBlackjack(), "three-card 21")
	assert.False(t, handOf("Ts9h").IsBlackjack())
}

func TestCanSplit(t *testing.T) {
	assert.True(t, handOf("8s8h").CanSplit())
	assert.True(t, handOf("AsAh").CanSplit())
	assert.False(t, handOf("KsQh").CanSplit(), "equal value is not equal rank")
	assert.False(t, handOf("8s8h8d").CanSplit())
}

func TestCanDouble(t *testing.T) {
	h := handOf("5s6h")
	assert.True(t, h.CanDouble(false))

	h.AddCard(deck.NewCard(deck.Clubs, deck.Two))
	assert.False(t, h.CanDouble(false))
	assert.True(t, h.CanDouble(true))

	h.Doubled = true
	assert.False(t, h.CanDouble(true))
}

func TestCanSurrender(t *testing.T) {
	h := handOf("Ts6h")
	assert.True(t, h.CanSurrender())

	h.Split = true
	assert.False(t, h.CanSurrender())
	assert.False(t, handOf("Ts3h3d").CanSurrender())
}

func TestVisibleValue(t *testing.T) {
	h := New(0)
	h.AddCard(deck.NewCard(deck.Spades, deck.Six))
	hole := deck.NewCard(deck.Hearts, deck.King)
	hole.FaceUp = false
	h.AddCard(hole)

	assert.Equal(t, 6, h.VisibleValue())
	assert.Equal(t, 16, h.Value())
}

func TestClear(t *testing.T) {
	h := handOf("AsKh")
	h.Doubled, h.Stood, h.Insurance = true, true, 5
	h.Clear()
	assert.Empty(t, h.Cards)
	assert.Zero(t, h.Bet)
	assert.False(t, h.Doubled)
	assert.False(t, h.Stood)
	assert.Zero(t, h.Insurance)
}

func TestClone(t *testing.T) {
	h := handOf("8s8h")
	c := h.Clone()
	c.Cards[0] = deck.NewCard(deck.Clubs, deck.Two)
	assert.Equal(t, deck.Eight, h.Cards[0].Rank)
}
