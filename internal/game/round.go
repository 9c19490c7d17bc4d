package game

import (
	"math"

	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

// dealerIndex is the HandIndex reported for dealer cards
const dealerIndex = -1

// begin claims the session for one action. It fails while another action
// is still running, including one paused on a card delay.
func (s *Session) begin() bool {
	if !s.op.TryLock() {
		s.logger.Debug("action rejected, session busy")
		return false
	}
	s.mu.Lock()
	return true
}

// end persists the bankroll if the action moved it and delivers the
// events it raised once the state lock is released
func (s *Session) end() {
	s.persistBankroll()
	events := s.takeEvents()
	s.mu.Unlock()
	s.deliver(events)
	s.op.Unlock()
}

// PlaceBet stakes amount on the next round. The bet must lie within the
// table limits and the balance, and only one bet may be pending.
func (s *Session) PlaceBet(amount float64) bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if s.phase != PhaseBetting || s.bet > 0 {
		return false
	}
	if math.IsNaN(amount) || amount < s.settings.MinBet || amount > s.settings.MaxBet || amount > s.balance {
		s.logger.Debug("bet rejected", "amount", amount, "balance", s.balance)
		return false
	}
	s.bet = amount
	s.stats.TotalWagered += amount
	s.adjustBalance(-amount)
	return true
}

// ClearBet refunds a pending bet before the deal
func (s *Session) ClearBet() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if s.phase != PhaseBetting || s.bet == 0 {
		return false
	}
	refund := s.bet
	s.bet = 0
	s.stats.TotalWagered -= refund
	s.adjustBalance(refund)
	return true
}

// Deal starts the round: player, dealer, player, dealer
func (s *Session) Deal() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if s.phase != PhaseBetting || s.bet == 0 {
		return false
	}
	s.setPhase(PhaseDealing)

	if s.shoe.NeedsReshuffle() {
		s.reshuffle()
	}

	s.roundID = uuid.NewString()
	s.roundNet = 0
	s.insurance = 0
	s.active = 0
	s.dealer = hand.New(0)
	s.hands = []*hand.Hand{hand.New(s.bet)}
	s.outcomes = make([]outcome, 1)
	s.logger.Debug("dealing", "round", s.roundID, "bet", s.bet)

	s.dealPlayer(0)
	s.dealDealer(true)
	s.dealPlayer(0)
	s.dealDealer(!s.settings.DealerHoleCard)

	// Without a hole card the dealer hand is in plain view: a natural
	// settles at once and there is nothing to insure against.
	if !s.settings.DealerHoleCard {
		if s.dealer.IsBlackjack() {
			s.resolveDealerNatural()
			return true
		}
		s.afterPeek()
		return true
	}
	if s.dealer.Cards[0].IsAce() && s.settings.InsuranceAllowed {
		s.setPhase(PhaseInsurance)
		s.publish(InsuranceOfferedEvent{Cost: s.bet / 2, timestamp: s.clock.Now()})
		return true
	}
	s.afterPeek()
	return true
}

// Insurance settles the insurance decision. The hole card is turned over
// whether or not insurance was taken.
func (s *Session) Insurance(take bool) bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if s.phase != PhaseInsurance {
		return false
	}
	cost := s.bet / 2
	if take && cost <= s.balance {
		s.insurance = cost
		s.hands[0].Insurance = cost
		s.stats.InsuranceTaken++
		s.stats.TotalWagered += cost
		s.adjustBalance(-cost)
	}

	s.revealHole()

	if s.dealer.IsBlackjack() {
		s.resolveDealerNatural()
		return true
	}

	if s.insurance > 0 {
		s.roundNet -= s.insurance
	}
	s.afterPeek()
	return true
}

// resolveDealerNatural ends the round on a dealer blackjack: insurance pays
// 2:1 and the player hand pushes only with a natural of its own
func (s *Session) resolveDealerNatural() {
	s.setPhase(PhasePayout)
	if s.insurance > 0 {
		s.roundNet += 2 * s.insurance
		s.adjustBalance(3 * s.insurance)
	}
	if s.hands[0].IsBlackjack() {
		s.adjustBalance(s.bet)
		s.settle(0, ResultPush, 0)
	} else {
		s.settle(0, ResultLose, -s.bet)
	}
	s.finishRound()
}

// afterPeek continues a round once a dealer natural has been ruled out
// or not looked for
func (s *Session) afterPeek() {
	if s.hands[0].IsBlackjack() {
		s.resolveNatural()
		return
	}
	s.setPhase(PhasePlayerTurn)
}

// resolveNatural pays a player blackjack, or pushes it against a dealer
// natural
func (s *Session) resolveNatural() {
	s.revealHole()
	s.setPhase(PhasePayout)
	if s.dealer.IsBlackjack() {
		s.adjustBalance(s.bet)
		s.settle(0, ResultPush, 0)
	} else {
		payout := s.bet * (1 + s.settings.BlackjackPayout)
		s.adjustBalance(payout)
		s.settle(0, ResultBlackjack, payout-s.bet)
	}
	s.finishRound()
}

// Hit draws a card to the active hand
func (s *Session) Hit() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.available().Has(strategy.Hit) {
		return false
	}
	h := s.hands[s.active]
	s.dealPlayer(s.active)
	if s.checkComplete(h) {
		s.advance()
	}
	return true
}

// Stand ends play on the active hand
func (s *Session) Stand() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.available().Has(strategy.Stand) {
		return false
	}
	s.hands[s.active].Stood = true
	s.advance()
	return true
}

// Double doubles the stake, draws exactly one card and stands
func (s *Session) Double() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.available().Has(strategy.Double) {
		return false
	}
	h := s.hands[s.active]
	stake := h.Bet
	h.Bet += stake
	h.Doubled = true
	s.stats.Doubles++
	s.stats.TotalWagered += stake
	s.adjustBalance(-stake)

	s.dealPlayer(s.active)
	if !s.checkComplete(h) {
		h.Stood = true
	}
	s.advance()
	return true
}

// Split moves the second card of a pair into a new hand played after the
// active one, matching its stake
func (s *Session) Split() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.available().Has(strategy.Split) {
		return false
	}
	h := s.hands[s.active]
	stake := h.Bet
	s.stats.Splits++
	s.stats.TotalWagered += stake
	s.adjustBalance(-stake)

	second := h.Cards[1]
	h.Cards = h.Cards[:1]
	h.Split = true
	h.Busted = false

	nh := hand.New(stake)
	nh.Split = true
	nh.AddCard(second)

	at := s.active + 1
	s.hands = append(s.hands[:at], append([]*hand.Hand{nh}, s.hands[at:]...)...)
	s.outcomes = append(s.outcomes[:at], append([]outcome{{}}, s.outcomes[at:]...)...)
	s.logger.Debug("split", "hand", s.active, "hands", len(s.hands))

	s.dealPlayer(s.active)
	if s.checkComplete(h) {
		s.advance()
	}
	return true
}

// Surrender forfeits half the stake of an untouched hand
func (s *Session) Surrender() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.available().Has(strategy.Surrender) {
		return false
	}
	h := s.hands[s.active]
	h.Surrendered = true
	refund := h.Bet / 2
	s.adjustBalance(refund)
	s.settle(s.active, ResultSurrender, refund-h.Bet)
	s.advance()
	return true
}

// checkComplete marks a hand finished when it busts or, with auto-stand,
// reaches 21
func (s *Session) checkComplete(h *hand.Hand) bool {
	if h.Busted {
		s.stats.Busts++
		return true
	}
	if s.settings.AutoStandOn21 && h.Value() == 21 {
		h.Stood = true
	}
	return h.Done()
}

// advance moves to the next unplayed hand, giving split hands their
// second card, or hands over to the dealer when none remain
func (s *Session) advance() {
	for {
		next := -1
		for i := s.active; i < len(s.hands); i++ {
			if !s.hands[i].Done() {
				next = i
				break
			}
		}
		if next < 0 {
			s.dealerTurn()
			return
		}
		s.active = next
		h := s.hands[next]
		if len(h.Cards) >= 2 {
			return
		}
		s.dealPlayer(next)
		if !s.checkComplete(h) {
			return
		}
	}
}

func (s *Session) dealerTurn() {
	s.setPhase(PhaseDealerTurn)
	s.revealHole()

	live := false
	for _, h := range s.hands {
		if !h.Busted && !h.Surrendered {
			live = true
			break
		}
	}
	if live {
		for s.shouldDealerHit() {
			s.dealDealer(true)
		}
	}
	s.payout()
}

func (s *Session) shouldDealerHit() bool {
	v := s.dealer.Value()
	if v < 17 {
		return true
	}
	return v == 17 && s.dealer.IsSoft() && s.settings.DealerHitsSoft17
}

// payout settles every hand still open against the dealer total
func (s *Session) payout() {
	s.setPhase(PhasePayout)
	dv := s.dealer.Value()
	dealerBust := dv > 21

	for i, h := range s.hands {
		if s.outcomes[i].Settled {
			continue
		}
		pv := h.Value()
		switch {
		case h.Busted:
			s.settle(i, ResultLose, -h.Bet)
		case dealerBust || pv > dv:
			s.adjustBalance(2 * h.Bet)
			s.settle(i, ResultWin, h.Bet)
		case pv < dv:
			s.settle(i, ResultLose, -h.Bet)
		default:
			s.adjustBalance(h.Bet)
			s.settle(i, ResultPush, 0)
		}
	}
	s.finishRound()
}

// settle records the result of one hand
func (s *Session) settle(i int, r Result, net float64) {
	s.outcomes[i] = outcome{Settled: true, Result: r, Net: net}
	s.roundNet += net
	s.stats.recordHand(r)
	s.publish(HandResolvedEvent{
		RoundID:   s.roundID,
		HandIndex: i,
		Result:    r,
		Amount:    net,
		timestamp: s.clock.Now(),
	})
}

func (s *Session) finishRound() {
	s.stats.recordRound(s.roundNet)
	result := outcomeOf(s.roundNet)
	s.logger.Info("round resolved", "round", s.roundID, "outcome", result, "net", s.roundNet, "balance", s.balance)
	s.publish(RoundResolvedEvent{
		RoundID:   s.roundID,
		Outcome:   result,
		Net:       s.roundNet,
		timestamp: s.clock.Now(),
	})
	s.setPhase(PhaseGameOver)
	s.save(KeyStatistics, s.stats)
}

// NewRound clears the table and returns to betting. The shoe, balance and
// statistics carry over.
func (s *Session) NewRound() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if s.phase != PhaseGameOver {
		return false
	}
	s.hands = nil
	s.outcomes = nil
	s.dealer = hand.New(0)
	s.active = 0
	s.bet = 0
	s.insurance = 0
	s.roundNet = 0
	s.setPhase(PhaseBetting)
	return true
}

// Reshuffle rebuilds the shoe between rounds
func (s *Session) Reshuffle() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.betweenRounds() {
		return false
	}
	s.reshuffle()
	return true
}

// AddFunds tops up the bankroll
func (s *Session) AddFunds(amount float64) bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return false
	}
	s.adjustBalance(amount)
	return true
}

// UpdateSettings merges a patch into the rules between rounds. A change
// of deck count rebuilds the shoe.
func (s *Session) UpdateSettings(p SettingsPatch) bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.betweenRounds() {
		return false
	}
	s.settings = s.settings.Apply(p)
	if s.configureShoe() {
		s.publishReshuffle()
	}
	s.logger.Debug("settings updated", "decks", s.settings.DeckCount, "system", s.settings.CountingSystem)
	s.save(KeySettings, s.settings)
	return true
}

// ResetStatistics clears the lifetime statistics between rounds
func (s *Session) ResetStatistics() bool {
	if !s.begin() {
		return false
	}
	defer s.end()

	if !s.betweenRounds() {
		return false
	}
	s.stats = Statistics{}
	s.save(KeyStatistics, s.stats)
	return true
}

func (s *Session) betweenRounds() bool {
	return s.phase == PhaseBetting || s.phase == PhaseGameOver
}

func (s *Session) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	from := s.phase
	s.phase = p
	s.logger.Debug("phase changed", "from", from, "to", p)
	s.publish(PhaseChangedEvent{From: from, To: p, timestamp: s.clock.Now()})
}

func (s *Session) adjustBalance(delta float64) {
	s.balance += delta
	s.publish(BalanceChangedEvent{Balance: s.balance, Delta: delta, timestamp: s.clock.Now()})
}

// bankroll is the balance plus every chip still riding on the table. A
// pending bet, open hand stakes and undecided insurance all count, so an
// abandoned round is refunded when the state is restored.
func (s *Session) bankroll() float64 {
	switch s.phase {
	case PhaseBetting:
		return s.balance + s.bet
	case PhaseGameOver:
		return s.balance
	}
	if len(s.hands) == 0 {
		return s.balance + s.bet
	}
	total := s.balance
	for i, h := range s.hands {
		if i < len(s.outcomes) && s.outcomes[i].Settled {
			continue
		}
		total += h.Bet
	}
	if s.phase == PhaseInsurance {
		total += s.insurance
	}
	return total
}

func (s *Session) persistBankroll() {
	if s.store == nil {
		return
	}
	b := s.bankroll()
	if b == s.saved {
		return
	}
	s.saved = b
	s.save(KeyBalance, b)
}

func (s *Session) reshuffle() {
	s.shoe.Reshuffle()
	s.logger.Info("shoe reshuffled", "cards", s.shoe.Remaining())
	s.publishReshuffle()
}

func (s *Session) publishReshuffle() {
	s.publish(ShoeReshuffledEvent{Cards: s.shoe.Remaining(), timestamp: s.clock.Now()})
	s.publishCount()
}

func (s *Session) dealPlayer(i int) {
	c := s.draw(true)
	s.hands[i].AddCard(c)
	s.publish(CardDealtEvent{Card: c, HandIndex: i, timestamp: s.clock.Now()})
}

func (s *Session) dealDealer(faceUp bool) {
	c := s.draw(faceUp)
	s.dealer.AddCard(c)
	s.publish(CardDealtEvent{Card: c, Dealer: true, HandIndex: dealerIndex, timestamp: s.clock.Now()})
}

// revealHole turns the dealer's face-down cards over and counts them
func (s *Session) revealHole() {
	for i := range s.dealer.Cards {
		c := &s.dealer.Cards[i]
		if c.FaceUp {
			continue
		}
		c.FaceUp = true
		s.count(*c)
		s.publish(CardDealtEvent{Card: *c, Dealer: true, HandIndex: dealerIndex, Reveal: true, timestamp: s.clock.Now()})
	}
}

// draw takes the next card after the pacing delay. An exhausted shoe is
// refilled from the discards that are no longer on the table.
func (s *Session) draw(faceUp bool) deck.Card {
	s.pause()

	c, ok := s.shoe.Deal()
	if !ok {
		n := s.shoe.Recycle(s.tableCards())
		s.logger.Warn("shoe exhausted mid-round, recycled discards", "cards", n)
		s.publish(ShoeReshuffledEvent{Cards: s.shoe.Remaining(), timestamp: s.clock.Now()})
		if c, ok = s.shoe.Deal(); !ok {
			panic(deck.ErrShoeEmpty)
		}
	}
	c.FaceUp = faceUp
	if faceUp {
		s.count(c)
	}
	s.logger.Debug("card dealt", "card", c)
	return c
}

func (s *Session) tableCards() []deck.Card {
	cards := append([]deck.Card(nil), s.dealer.Cards...)
	for _, h := range s.hands {
		cards = append(cards, h.Cards...)
	}
	return cards
}

func (s *Session) count(c deck.Card) {
	s.shoe.UpdateCount(c)
	s.publishCount()
}

func (s *Session) publishCount() {
	if !s.settings.CountingEnabled {
		return
	}
	s.publish(CountUpdatedEvent{
		Running:   s.shoe.RunningCount(),
		True:      s.shoe.TrueCount(),
		timestamp: s.clock.Now(),
	})
}

// pause waits out the card delay with the state lock released. The
// action lock is still held, so other actions are rejected meanwhile.
func (s *Session) pause() {
	d := s.settings.CardDelay
	if d <= 0 {
		return
	}
	events := s.takeEvents()
	s.mu.Unlock()
	defer s.mu.Lock()
	s.deliver(events)

	t := s.clock.NewTimer(d, "game", "pace")
	defer t.Stop()
	<-t.C
}

// publish queues e for delivery once the state lock is released
func (s *Session) publish(e Event) {
	s.pending = append(s.pending, e)
}

func (s *Session) takeEvents() []Event {
	events := s.pending
	s.pending = nil
	return events
}

func (s *Session) deliver(events []Event) {
	for _, e := range events {
		s.bus.Publish(e)
	}
}
