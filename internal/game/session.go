package game

import (
	"io"
	"math"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

// Session is one player's seat at the table: the shoe, the dealer hand,
// the player's hands, the bankroll and the lifetime statistics.
//
// Mutating methods return false when the action is illegal in the current
// phase, when its precondition fails, or when another action is still in
// progress. A rejected call leaves the state unchanged.
type Session struct {
	// op serialises actions; mu guards state and is released while an
	// action waits on a pacing delay so queries stay responsive.
	op sync.Mutex
	mu sync.Mutex

	settings Settings
	shoe     *deck.Shoe
	phase    Phase

	dealer   *hand.Hand
	hands    []*hand.Hand
	outcomes []outcome
	active   int

	balance   float64
	bet       float64
	insurance float64
	stats     Statistics
	roundID   string
	roundNet  float64

	// pending holds events raised under mu until it is released
	pending []Event
	// saved is the bankroll last written to the store, NaN before the
	// first write
	saved float64

	bus    *EventBus
	clock  quartz.Clock
	logger *log.Logger
	store  Persister
}

// outcome records a settled player hand
type outcome struct {
	Settled bool
	Result  Result
	Net     float64
}

// Option configures a Session during creation
type Option func(*sessionConfig)

type sessionConfig struct {
	settings Settings
	patch    SettingsPatch
	balance  float64
	rng      *rand.Rand
	shoe     *deck.Shoe
	clock    quartz.Clock
	logger   *log.Logger
	store    Persister
	bus      *EventBus
}

// WithSettings sets the base table rules
func WithSettings(s Settings) Option {
	return func(c *sessionConfig) { c.settings = s }
}

// WithSettingsPatch overrides rules after persisted settings are restored
func WithSettingsPatch(p SettingsPatch) Option {
	return func(c *sessionConfig) { c.patch = c.patch.Merge(p) }
}

// WithBalance sets the starting bankroll used when none is persisted
func WithBalance(b float64) Option {
	return func(c *sessionConfig) { c.balance = b }
}

// WithRNG sets the shuffle source for a session-created shoe
func WithRNG(rng *rand.Rand) Option {
	return func(c *sessionConfig) { c.rng = rng }
}

// WithShoe uses an existing shoe instead of building one
func WithShoe(s *deck.Shoe) Option {
	return func(c *sessionConfig) { c.shoe = s }
}

// WithClock sets the clock used for pacing delays and event timestamps
func WithClock(clock quartz.Clock) Option {
	return func(c *sessionConfig) { c.clock = clock }
}

// WithLogger sets the session logger
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithPersister enables saving and restoring balance, settings and
// statistics
func WithPersister(p Persister) Option {
	return func(c *sessionConfig) { c.store = p }
}

// WithEventBus publishes events on an existing bus
func WithEventBus(bus *EventBus) Option {
	return func(c *sessionConfig) { c.bus = bus }
}

// NewSession creates a session in the betting phase.
//
// Example usage:
//
//	// Deterministic shuffles, no pacing
//	s := NewSession(
//	    WithRNG(randutil.New(42)),
//	    WithSettingsPatch(SettingsPatch{CardDelay: Ptr(time.Duration(0))}))
func NewSession(opts ...Option) *Session {
	cfg := &sessionConfig{
		settings: DefaultSettings(),
		balance:  DefaultBalance,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}

	s := &Session{
		settings: cfg.settings.Normalize(),
		balance:  cfg.balance,
		phase:    PhaseBetting,
		dealer:   hand.New(0),
		bus:      cfg.bus,
		clock:    cfg.clock,
		logger:   cfg.logger.WithPrefix("game"),
		store:    cfg.store,
		saved:    math.NaN(),
	}
	s.restore()
	s.settings = s.settings.Apply(cfg.patch)

	s.shoe = cfg.shoe
	if s.shoe == nil {
		s.shoe = deck.NewShoe(s.settings.DeckCount, cfg.rng)
	}
	s.configureShoe()

	s.logger.Debug("session created", "balance", s.balance, "decks", s.settings.DeckCount)
	return s
}

// configureShoe pushes the rules into the shoe. Changing the deck count
// rebuilds the shoe.
func (s *Session) configureShoe() bool {
	rebuilt := false
	if s.shoe.DeckCount() != s.settings.DeckCount {
		s.shoe.SetDeckCount(s.settings.DeckCount)
		rebuilt = true
	}
	s.shoe.SetPenetration(s.settings.Penetration)
	s.shoe.SetCountingSystem(s.settings.CountingSystem)
	return rebuilt
}

// Events returns the bus the session publishes on
func (s *Session) Events() *EventBus {
	return s.bus
}

// Subscribe registers a subscriber on the session's bus. Events reach
// subscribers with the session unlocked, so OnEvent may call queries such
// as Balance or Snapshot. Actions started from OnEvent are rejected while
// the action that raised the event is still in progress.
func (s *Session) Subscribe(sub EventSubscriber) (unsubscribe func()) {
	return s.bus.Subscribe(sub)
}

// Phase returns the current phase
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Balance returns the bankroll, excluding chips on the table. The
// persisted figure includes them, see Save.
func (s *Session) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Bet returns the original wager of the current round
func (s *Session) Bet() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bet
}

// InsuranceCost returns the price of insurance for the current round
func (s *Session) InsuranceCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bet / 2
}

// Settings returns the active rules
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Statistics returns the lifetime statistics
func (s *Session) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RoundID identifies the round in progress, empty before the first deal
func (s *Session) RoundID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundID
}

// ShoeRemaining returns the number of undealt cards
func (s *Session) ShoeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shoe.Remaining()
}

// ShoeTotal returns the full size of the shoe
func (s *Session) ShoeTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shoe.Total()
}

// RunningCount returns the tally of face-up cards since the last shuffle
func (s *Session) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shoe.RunningCount()
}

// TrueCount returns the running count per deck remaining
func (s *Session) TrueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shoe.TrueCount()
}

// Available returns the actions legal on the active hand
func (s *Session) Available() strategy.ActionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available()
}

// CanHit and friends mirror Available for callers that check one action
func (s *Session) CanHit() bool       { return s.Available().Has(strategy.Hit) }
func (s *Session) CanStand() bool     { return s.Available().Has(strategy.Stand) }
func (s *Session) CanDouble() bool    { return s.Available().Has(strategy.Double) }
func (s *Session) CanSplit() bool     { return s.Available().Has(strategy.Split) }
func (s *Session) CanSurrender() bool { return s.Available().Has(strategy.Surrender) }

func (s *Session) available() strategy.ActionSet {
	var set strategy.ActionSet
	if s.phase != PhasePlayerTurn || s.active >= len(s.hands) {
		return set
	}
	h := s.hands[s.active]
	if h.Done() {
		return set
	}
	set = strategy.NewActionSet(strategy.Hit, strategy.Stand)

	if h.CanDouble(s.settings.DoubleAnyCards) && (!h.Split || s.settings.DoubleAfterSplit) && s.balance >= h.Bet {
		set = set.With(strategy.Double)
	}
	if h.CanSplit() && len(s.hands) < s.settings.MaxHands && s.balance >= h.Bet &&
		(!h.IsSplitAces() || s.settings.ResplitAces) {
		set = set.With(strategy.Split)
	}
	if s.settings.SurrenderAllowed && len(s.hands) == 1 && h.CanSurrender() {
		set = set.With(strategy.Surrender)
	}
	return set
}

// Hint returns the advised action for the active hand. The count is only
// consulted when counting is enabled.
func (s *Session) Hint() (strategy.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sit, ok := s.situation()
	if !ok {
		return strategy.Hit, false
	}
	return strategy.Recommend(sit), true
}

// DeviationHint explains whether a count deviation applies to the active
// hand. It reports false without counting or without an index.
func (s *Session) DeviationHint() (strategy.Explanation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sit, ok := s.situation()
	if !ok || !sit.Counting {
		return strategy.Explanation{}, false
	}
	return strategy.Explain(sit)
}

// InsuranceHint advises on the pending insurance decision
func (s *Session) InsuranceHint() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseInsurance && s.settings.CountingEnabled && strategy.TakeInsurance(s.shoe.TrueCount())
}

func (s *Session) situation() (strategy.Situation, bool) {
	avail := s.available()
	if avail == 0 || len(s.dealer.Cards) == 0 {
		return strategy.Situation{}, false
	}
	return strategy.Situation{
		Hand:      s.hands[s.active].Clone(),
		Upcard:    s.dealer.Cards[0],
		Available: avail,
		TrueCount: s.shoe.TrueCount(),
		Counting:  s.settings.CountingEnabled,
	}, true
}
