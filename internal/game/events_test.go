package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusOrderAndUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	var got []string

	unA := bus.Subscribe(SubscriberFunc(func(e Event) { got = append(got, "a:"+e.EventType().String()) }))
	bus.Subscribe(SubscriberFunc(func(e Event) { got = append(got, "b:"+e.EventType().String()) }))
	assert.Equal(t, 2, bus.Len())

	bus.Publish(PhaseChangedEvent{From: PhaseBetting, To: PhaseDealing})
	assert.Equal(t, []string{"a:phase_changed", "b:phase_changed"}, got)

	unA()
	unA()
	assert.Equal(t, 1, bus.Len())

	got = nil
	bus.Publish(ShoeReshuffledEvent{Cards: 312})
	assert.Equal(t, []string{"b:shoe_reshuffled"}, got)
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "PLAYER_TURN", PhasePlayerTurn.String())
	assert.Equal(t, "GAME_OVER", PhaseGameOver.String())
	assert.Equal(t, "BLACKJACK", ResultBlackjack.String())
	assert.Equal(t, "LOSE", outcomeOf(-1).String())
	assert.Equal(t, "PUSH", outcomeOf(0).String())
}
