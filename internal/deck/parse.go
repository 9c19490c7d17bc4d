package deck

import (
	"fmt"
	"strings"
)

// ParseCards parses a string of card notation into a slice of face-up cards.
// Format: "AsKh9d" where each card is [Rank][Suit]
// Ranks: A, K, Q, J, T (or 10), 9 ... 2
// Suits: s (spades), h (hearts), d (diamonds), c (clubs)
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "10", "T")

	cards := []Card{}
	for i := 0; i < len(s); i += 2 {
		if i+1 >= len(s) {
			return nil, fmt.Errorf("%w: incomplete card at position %d", ErrInvalidCard, i)
		}

		rank, err := parseRank(s[i])
		if err != nil {
			return nil, fmt.Errorf("%w: rank %q at position %d", ErrInvalidCard, s[i], i)
		}
		suit, err := parseSuit(s[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: suit %q at position %d", ErrInvalidCard, s[i+1], i+1)
		}

		cards = append(cards, NewCard(suit, rank))
	}

	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// ParseRank parses a single rank character such as "A", "T", "10" or "7"
func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(s)
	if s == "10" {
		return Ten, nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: rank %q", ErrInvalidCard, s)
	}
	return parseRank(s[0])
}

func parseRank(c byte) (Rank, error) {
	switch c {
	case 'A', 'a':
		return Ace, nil
	case 'K', 'k':
		return King, nil
	case 'Q', 'q':
		return Queen, nil
	case 'J', 'j':
		return Jack, nil
	case 'T', 't':
		return Ten, nil
	}
	if c >= '2' && c <= '9' {
		return Rank(c - '0'), nil
	}
	return 0, ErrInvalidCard
}

func parseSuit(c byte) (Suit, error) {
	switch c {
	case 's', 'S':
		return Spades, nil
	case 'h', 'H':
		return Hearts, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'c', 'C':
		return Clubs, nil
	}
	return 0, ErrInvalidCard
}
