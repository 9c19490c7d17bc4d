package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// HandView is a read-only copy of a hand. Face-down cards are masked.
type HandView struct {
	Cards       []deck.Card
	Value       int
	Soft        bool
	Bet         float64
	Insurance   float64
	Doubled     bool
	Split       bool
	Stood       bool
	Busted      bool
	Surrendered bool
	Blackjack   bool
	Settled     bool
	Result      Result
	Net         float64
}

// Snapshot is a consistent view of the whole table
type Snapshot struct {
	RoundID       string
	Phase         Phase
	Balance       float64
	Bet           float64
	InsuranceCost float64
	Insurance     float64
	Dealer        HandView
	Hands         []HandView
	Active        int
	ShoeRemaining int
	ShoeTotal     int
	RunningCount  int
	TrueCount     int
	Settings      Settings
	Stats         Statistics
}

// Snapshot copies the current state for rendering
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		RoundID:       s.roundID,
		Phase:         s.phase,
		Balance:       s.balance,
		Bet:           s.bet,
		InsuranceCost: s.bet / 2,
		Insurance:     s.insurance,
		Dealer:        viewHand(s.dealer),
		Active:        s.active,
		ShoeRemaining: s.shoe.Remaining(),
		ShoeTotal:     s.shoe.Total(),
		RunningCount:  s.shoe.RunningCount(),
		TrueCount:     s.shoe.TrueCount(),
		Settings:      s.settings,
		Stats:         s.stats,
	}
	for i, h := range s.hands {
		v := viewHand(h)
		if i < len(s.outcomes) {
			o := s.outcomes[i]
			v.Settled, v.Result, v.Net = o.Settled, o.Result, o.Net
		}
		snap.Hands = append(snap.Hands, v)
	}
	return snap
}

func viewHand(h *hand.Hand) HandView {
	v := HandView{
		Cards:       make([]deck.Card, len(h.Cards)),
		Value:       h.VisibleValue(),
		Bet:         h.Bet,
		Insurance:   h.Insurance,
		Doubled:     h.Doubled,
		Split:       h.Split,
		Stood:       h.Stood,
		Busted:      h.Busted,
		Surrendered: h.Surrendered,
	}
	hidden := false
	for i, c := range h.Cards {
		if !c.FaceUp {
			hidden = true
			c = deck.Card{}
		}
		v.Cards[i] = c
	}
	if !hidden {
		v.Soft = h.IsSoft()
		v.Blackjack = h.IsBlackjack()
	}
	return v
}
