package tui

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) (*Model, *deck.Shoe) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	shoe := deck.NewShoe(6, randutil.New(1))
	session := game.NewSession(
		game.WithShoe(shoe),
		game.WithLogger(logger),
		game.WithSettingsPatch(game.SettingsPatch{CardDelay: game.Ptr(time.Duration(0))}),
	)
	m := NewModel(session, logger)
	t.Cleanup(m.Close)
	return m, shoe
}

// exec submits a line and runs the resulting command to completion
func exec(t *testing.T, m *Model, input string) {
	t.Helper()
	cmd := m.submit(input)
	require.NotNil(t, cmd, "command %q", input)
	m.Update(cmd())
}

func flush(m *Model) {
	m.Update(eventsMsg(m.feed.drain()))
}

func logContains(m *Model, want string) bool {
	for _, line := range m.Log() {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestPlayRound(t *testing.T) {
	m, shoe := newTestModel(t)
	require.NoError(t, shoe.Stack(deck.MustParseCards("Ts 7h 9d Kc")...))

	exec(t, m, "bet 50")
	assert.Equal(t, 50.0, m.session.Bet())

	exec(t, m, "deal")
	require.Equal(t, game.PhasePlayerTurn, m.session.Phase())

	exec(t, m, "s")
	assert.Equal(t, game.PhaseGameOver, m.session.Phase())
	assert.Equal(t, 10050.0, m.session.Balance())

	flush(m)
	assert.True(t, logContains(m, "--- New round ---"))
	assert.True(t, logContains(m, "Hand 1: 10♠"))
	assert.True(t, logContains(m, "Dealer: 7♥"))
	assert.True(t, logContains(m, "Dealer reveals K♣"))
	assert.True(t, logContains(m, "Hand 1: WIN +$50.00"))
	assert.True(t, logContains(m, "Round WIN, net +$50.00"))
}

func TestEnterTakesNextStep(t *testing.T) {
	m, shoe := newTestModel(t)
	require.NoError(t, shoe.Stack(deck.MustParseCards("Ts 7h 9d Kc")...))

	// Empty input bets the table minimum and deals
	exec(t, m, "")
	assert.Equal(t, game.PhasePlayerTurn, m.session.Phase())
	assert.Equal(t, 10.0, m.session.Bet())

	// In the player's turn it only prints advice
	assert.Nil(t, m.submit(""))
	assert.True(t, logContains(m, "Basic strategy says stand"))

	exec(t, m, "stand")
	exec(t, m, "")
	assert.Equal(t, game.PhaseBetting, m.session.Phase())
}

func TestInsuranceCommands(t *testing.T) {
	m, shoe := newTestModel(t)
	require.NoError(t, shoe.Stack(deck.MustParseCards("Ts As 9d 7c")...))

	exec(t, m, "bet 20")
	exec(t, m, "deal")
	require.Equal(t, game.PhaseInsurance, m.session.Phase())

	assert.Nil(t, m.submit(""))
	assert.True(t, logContains(m, "Insurance? y/n"))

	exec(t, m, "n")
	assert.Equal(t, game.PhasePlayerTurn, m.session.Phase())

	flush(m)
	assert.True(t, logContains(m, "Insurance costs $10.00"))
}

func TestRejectedCommands(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Nil(t, m.submit("bet"))
	assert.True(t, logContains(m, "Expected an amount"))

	assert.Nil(t, m.submit("bet lots"))
	assert.True(t, logContains(m, `Invalid amount "lots"`))

	assert.Nil(t, m.submit("dance"))
	assert.True(t, logContains(m, `Unknown command "dance"`))

	exec(t, m, "hit")
	assert.True(t, logContains(m, "Cannot hit now"))

	exec(t, m, "bet 5")
	assert.True(t, logContains(m, "Cannot bet now"))
	assert.Zero(t, m.session.Bet())
}

func TestBusyRejectsSecondAction(t *testing.T) {
	m, _ := newTestModel(t)

	first := m.submit("bet $25")
	require.NotNil(t, first)
	assert.Nil(t, m.submit("funds 100"))
	assert.True(t, logContains(m, "please wait"))

	m.Update(first())
	assert.False(t, m.busy)
	assert.Equal(t, 25.0, m.session.Bet())
}

func TestBetweenRoundCommands(t *testing.T) {
	m, _ := newTestModel(t)

	exec(t, m, "funds 500")
	assert.Equal(t, 10500.0, m.session.Balance())

	exec(t, m, "shuffle")
	flush(m)
	assert.True(t, logContains(m, "Shoe reshuffled (312 cards)"))

	exec(t, m, "bet 10")
	exec(t, m, "clear")
	assert.Zero(t, m.session.Bet())

	exec(t, m, "reset")
	assert.Zero(t, m.session.Statistics().RoundsPlayed)

	assert.Nil(t, m.submit("hint"))
	assert.True(t, m.showHint)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		event game.Event
		want  string
	}{
		{"player card", game.CardDealtEvent{Card: deck.NewCard(deck.Hearts, deck.Queen), HandIndex: 1}, "Hand 2: Q♥"},
		{"hole card", game.CardDealtEvent{Card: deck.Card{Suit: deck.Spades, Rank: deck.Nine}, Dealer: true, HandIndex: -1}, "Dealer: ??"},
		{"reveal", game.CardDealtEvent{Card: deck.NewCard(deck.Spades, deck.Nine), Dealer: true, HandIndex: -1, Reveal: true}, "Dealer reveals 9♠"},
		{"loss", game.HandResolvedEvent{HandIndex: 0, Result: game.ResultLose, Amount: -25}, "Hand 1: LOSE -$25.00"},
		{"push", game.RoundResolvedEvent{Outcome: game.OutcomePush}, "Round PUSH, net +$0.00"},
		{"dealer turn", game.PhaseChangedEvent{From: game.PhasePlayerTurn, To: game.PhaseDealerTurn}, "Dealer plays"},
		{"quiet phase", game.PhaseChangedEvent{From: game.PhaseDealerTurn, To: game.PhasePayout}, ""},
		{"balance", game.BalanceChangedEvent{Balance: 10, Delta: 5}, ""},
		{"count", game.CountUpdatedEvent{Running: 3, True: 1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.event))
		})
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Balance: $10000.00")
	assert.Contains(t, view, "Shoe: 312/312")
	assert.Contains(t, view, "Count: +0 (true +0)")
	assert.Contains(t, view, "No hands in play")
	assert.Contains(t, view, "[bet 10]")
}

func TestCloseUnsubscribes(t *testing.T) {
	m, _ := newTestModel(t)
	bus := m.session.Events()
	require.Equal(t, 1, bus.Len())

	m.Close()
	assert.Equal(t, 0, bus.Len())
}

func TestFeedDeliversQueuedEvents(t *testing.T) {
	f := newFeed()
	f.OnEvent(game.ShoeReshuffledEvent{Cards: 52})
	f.OnEvent(game.CountUpdatedEvent{})

	msg := f.wait()()
	events, ok := msg.(eventsMsg)
	require.True(t, ok)
	assert.Len(t, events, 2)
	assert.Empty(t, f.drain())
}
