package game

import (
	"sync"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType names a session notification
type EventType string

const (
	EventTypePhaseChanged     EventType = "phase_changed"
	EventTypeCardDealt        EventType = "card_dealt"
	EventTypeHandResolved     EventType = "hand_resolved"
	EventTypeRoundResolved    EventType = "round_resolved"
	EventTypeBalanceChanged   EventType = "balance_changed"
	EventTypeCountUpdated     EventType = "count_updated"
	EventTypeInsuranceOffered EventType = "insurance_offered"
	EventTypeShoeReshuffled   EventType = "shoe_reshuffled"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything a session publishes
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// PhaseChangedEvent fires on every state machine transition
type PhaseChangedEvent struct {
	From, To  Phase
	timestamp time.Time
}

func (e PhaseChangedEvent) EventType() EventType { return EventTypePhaseChanged }
func (e PhaseChangedEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent fires when a card lands on the table or a hole card is
// turned over. HandIndex is -1 for the dealer.
type CardDealtEvent struct {
	Card      deck.Card
	Dealer    bool
	HandIndex int
	Reveal    bool
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// HandResolvedEvent carries the signed net of one player hand
type HandResolvedEvent struct {
	RoundID   string
	HandIndex int
	Result    Result
	Amount    float64
	timestamp time.Time
}

func (e HandResolvedEvent) EventType() EventType { return EventTypeHandResolved }
func (e HandResolvedEvent) Timestamp() time.Time { return e.timestamp }

// RoundResolvedEvent summarises a finished round across all hands
type RoundResolvedEvent struct {
	RoundID   string
	Outcome   Outcome
	Net       float64
	timestamp time.Time
}

func (e RoundResolvedEvent) EventType() EventType { return EventTypeRoundResolved }
func (e RoundResolvedEvent) Timestamp() time.Time { return e.timestamp }

// BalanceChangedEvent fires whenever chips move
type BalanceChangedEvent struct {
	Balance   float64
	Delta     float64
	timestamp time.Time
}

func (e BalanceChangedEvent) EventType() EventType { return EventTypeBalanceChanged }
func (e BalanceChangedEvent) Timestamp() time.Time { return e.timestamp }

// CountUpdatedEvent fires after a counted card when counting is enabled
type CountUpdatedEvent struct {
	Running   int
	True      int
	timestamp time.Time
}

func (e CountUpdatedEvent) EventType() EventType { return EventTypeCountUpdated }
func (e CountUpdatedEvent) Timestamp() time.Time { return e.timestamp }

// InsuranceOfferedEvent prompts for an insurance decision
type InsuranceOfferedEvent struct {
	Cost      float64
	timestamp time.Time
}

func (e InsuranceOfferedEvent) EventType() EventType { return EventTypeInsuranceOffered }
func (e InsuranceOfferedEvent) Timestamp() time.Time { return e.timestamp }

// ShoeReshuffledEvent fires after the shoe is rebuilt
type ShoeReshuffledEvent struct {
	Cards     int
	timestamp time.Time
}

func (e ShoeReshuffledEvent) EventType() EventType { return EventTypeShoeReshuffled }
func (e ShoeReshuffledEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives session events
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus fans events out to subscribers synchronously, in subscription
// order.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]EventSubscriber
	order  []int
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]EventSubscriber)}
}

// Subscribe registers s and returns a function that removes it again
func (bus *EventBus) Subscribe(s EventSubscriber) (unsubscribe func()) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	id := bus.nextID
	bus.nextID++
	bus.subs[id] = s
	bus.order = append(bus.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { bus.remove(id) })
	}
}

func (bus *EventBus) remove(id int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	delete(bus.subs, id)
	for i, v := range bus.order {
		if v == id {
			bus.order = append(bus.order[:i], bus.order[i+1:]...)
			break
		}
	}
}

// Publish delivers event to every subscriber
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, 0, len(bus.order))
	for _, id := range bus.order {
		subs = append(subs, bus.subs[id])
	}
	bus.mu.RUnlock()

	for _, s := range subs {
		s.OnEvent(event)
	}
}

// Len returns the number of subscribers
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.order)
}
