package deck

import (
	"errors"
	"testing"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "natural",
			input: "AsKh",
			expected: []Card{
				NewCard(Spades, Ace),
				NewCard(Hearts, King),
			},
		},
		{
			name:  "ten as digits",
			input: "10d 9c",
			expected: []Card{
				NewCard(Diamonds, Ten),
				NewCard(Clubs, Nine),
			},
		},
		{
			name:  "case insensitive",
			input: "asTHqD",
			expected: []Card{
				NewCard(Spades, Ace),
				NewCard(Hearts, Ten),
				NewCard(Diamonds, Queen),
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCard) {
					t.Errorf("expected ErrInvalidCard, got %v", err)
				}
				return
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseCards() got %d cards, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("card %d = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCardValues(t *testing.T) {
	tests := []struct {
		rank  Rank
		value int
	}{
		{Ace, 11}, {Two, 2}, {Five, 5}, {Nine, 9},
		{Ten, 10}, {Jack, 10}, {Queen, 10}, {King, 10},
	}
	for _, tt := range tests {
		if got := NewCard(Spades, tt.rank).Value(); got != tt.value {
			t.Errorf("%s value = %d, want %d", tt.rank, got, tt.value)
		}
	}
}

func TestCardFlags(t *testing.T) {
	ace := NewCard(Hearts, Ace)
	if !ace.IsAce() || ace.IsFaceCard() {
		t.Error("ace flags wrong")
	}
	if ace.Color() != Red {
		t.Errorf("hearts should be red, got %s", ace.Color())
	}
	king := NewCard(Clubs, King)
	if !king.IsFaceCard() || king.IsAce() {
		t.Error("king flags wrong")
	}
	if king.Color() != Black {
		t.Errorf("clubs should be black, got %s", king.Color())
	}
	if NewCard(Clubs, Ten).IsFaceCard() {
		t.Error("ten is not a face card")
	}
}

func TestCardString(t *testing.T) {
	c := NewCard(Spades, Ace)
	if c.String() != "A♠" {
		t.Errorf("got %q", c.String())
	}
	c.FaceUp = false
	if c.String() != "??" {
		t.Errorf("face-down card should be hidden, got %q", c.String())
	}
	if NewCard(Diamonds, Ten).String() != "10♦" {
		t.Errorf("got %q", NewCard(Diamonds, Ten).String())
	}
}

func TestParseCountingSystem(t *testing.T) {
	tests := map[string]CountingSystem{
		"hi-lo":     HiLo,
		"HiLo":      HiLo,
		"ko":        KO,
		"omega-ii":  OmegaII,
		"Omega II":  OmegaII,
		"hi-opt-i":  HiOptI,
		"hi_opt_2":  HiOptII,
		"hi-opt-ii": HiOptII,
	}
	for name, want := range tests {
		got, err := ParseCountingSystem(name)
		if err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%q = %s, want %s", name, got, want)
		}
	}

	if _, err := ParseCountingSystem("wong-halves"); !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestCountingSystemsAreBalanced(t *testing.T) {
	// Every system except KO sums to zero over a full deck
	for _, cs := range CountingSystems {
		sum := 0
		for _, r := range Ranks {
			sum += 4 * cs.Weight(r)
		}
		if cs == KO {
			if sum != 4 {
				t.Errorf("KO should be unbalanced by +4, got %d", sum)
			}
			continue
		}
		if sum != 0 {
			t.Errorf("%s sums to %d over a deck", cs, sum)
		}
	}
}
