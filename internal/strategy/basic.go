package strategy

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// Situation is everything the advisor looks at for one decision
type Situation struct {
	Hand      *hand.Hand
	Upcard    deck.Card
	Available ActionSet
	// TrueCount is only consulted when Counting is set
	TrueCount int
	Counting  bool
}

// pairSplits lists, per paired card value, the dealer up-values to split
// against. Tens and fives are never split.
var pairSplits = map[int][]int{
	11: {2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	9:  {2, 3, 4, 5, 6, 8, 9},
	8:  {2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	7:  {2, 3, 4, 5, 6, 7},
	6:  {2, 3, 4, 5, 6},
	4:  {5, 6},
	3:  {2, 3, 4, 5, 6, 7},
	2:  {2, 3, 4, 5, 6, 7},
}

// UpValue is the dealer up-card value used to index the tables (A=11)
func UpValue(c deck.Card) int {
	return c.Value()
}

func shouldSplit(pairValue, dealer int) bool {
	for _, d := range pairSplits[pairValue] {
		if d == dealer {
			return true
		}
	}
	return false
}

// Basic returns the basic strategy action, ignoring the count
func Basic(sit Situation) Action {
	h := sit.Hand
	dealer := UpValue(sit.Upcard)
	avail := sit.Available

	if h.IsPair() && avail.Has(Split) && shouldSplit(h.Cards[0].Value(), dealer) {
		return Split
	}
	if h.IsSoft() {
		return soft(h.Value(), dealer, avail)
	}
	return hard(h.Value(), dealer, avail)
}

func soft(total, dealer int, avail ActionSet) Action {
	canDouble := avail.Has(Double)
	switch {
	case total >= 20:
		return Stand
	case total == 19:
		if dealer == 6 && canDouble {
			return Double
		}
		return Stand
	case total == 18:
		if dealer >= 2 && dealer <= 6 {
			if canDouble {
				return Double
			}
			return Stand
		}
		if dealer == 7 || dealer == 8 {
			return Stand
		}
		return Hit
	case total == 17:
		return doubleOrHit(dealer >= 3 && dealer <= 6, canDouble)
	case total == 15 || total == 16:
		return doubleOrHit(dealer >= 4 && dealer <= 6, canDouble)
	case total == 13 || total == 14:
		return doubleOrHit(dealer == 5 || dealer == 6, canDouble)
	}
	return Hit
}

func hard(total, dealer int, avail ActionSet) Action {
	canDouble := avail.Has(Double)
	canSurrender := avail.Has(Surrender)
	switch {
	case total >= 17:
		return Stand
	case total == 16:
		if dealer >= 9 && canSurrender {
			return Surrender
		}
		return standOrHit(dealer <= 6)
	case total == 15:
		if dealer == 10 && canSurrender {
			return Surrender
		}
		return standOrHit(dealer <= 6)
	case total == 13 || total == 14:
		return standOrHit(dealer <= 6)
	case total == 12:
		return standOrHit(dealer >= 4 && dealer <= 6)
	case total == 11:
		return doubleOrHit(dealer <= 10, canDouble)
	case total == 10:
		return doubleOrHit(dealer <= 9, canDouble)
	case total == 9:
		return doubleOrHit(dealer >= 3 && dealer <= 6, canDouble)
	}
	return Hit
}

func doubleOrHit(wantDouble, canDouble bool) Action {
	if wantDouble && canDouble {
		return Double
	}
	return Hit
}

func standOrHit(stand bool) Action {
	if stand {
		return Stand
	}
	return Hit
}
