package simulator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(nil, log.Options{Level: log.WarnLevel})
}

func TestNew(t *testing.T) {
	simulator := New(Config{Rounds: 100, Seed: 12345, Settings: game.DefaultSettings()})

	assert.Equal(t, 1, simulator.config.Workers)
	assert.Equal(t, 10.0, simulator.config.BaseBet)
	assert.NotNil(t, simulator.config.Logger)
}

func TestRunSimulation_Convenience(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 50, 12345, game.DefaultSettings(), testLogger())
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 50, stats.Rounds)
	assert.Equal(t, stats.Rounds, stats.Wins+stats.Losses+stats.Pushes)
	assert.GreaterOrEqual(t, stats.Hands, stats.Rounds)
	assert.GreaterOrEqual(t, stats.Wagered, float64(stats.Rounds))
	require.NoError(t, stats.Validate())
}

func TestSimulator_Deterministic(t *testing.T) {
	config := Config{
		Rounds:   200,
		Seed:     7,
		Settings: game.DefaultSettings(),
		Spread:   8,
		Logger:   testLogger(),
	}

	a, err := New(config).Run(context.Background())
	require.NoError(t, err)
	b, err := New(config).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Wagered, b.Wagered)
}

func TestSimulator_WorkersSplitRounds(t *testing.T) {
	config := Config{
		Rounds:   101,
		Workers:  4,
		Seed:     99,
		Settings: game.DefaultSettings(),
		Logger:   testLogger(),
	}

	stats, err := New(config).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 101, stats.Rounds)
	assert.Len(t, stats.Values, 101)
	require.NoError(t, stats.Validate())
}

func TestSimulator_MoreWorkersThanRounds(t *testing.T) {
	stats, err := New(Config{Rounds: 3, Workers: 8, Settings: game.DefaultSettings()}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Rounds)
}

func TestSimulator_FlatBetWithoutCounting(t *testing.T) {
	settings := game.DefaultSettings()
	settings.CountingEnabled = false
	simulator := New(Config{Settings: settings, Spread: 8})

	for _, tc := range []int{-5, 0, 3, 12} {
		assert.Equal(t, 10.0, simulator.betFor(tc), "tc %d", tc)
	}
}

func TestSimulator_BetRamp(t *testing.T) {
	settings := game.DefaultSettings()
	settings.MaxBet = 50
	simulator := New(Config{Settings: settings, Spread: 8})

	tests := []struct {
		tc   int
		want float64
	}{
		{-3, 10},
		{1, 10},
		{2, 10},
		{3, 20},
		{5, 40},
		{7, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, simulator.betFor(tt.tc), "tc %d", tt.tc)
	}
}

func TestSimulator_RejectsNoRounds(t *testing.T) {
	_, err := New(Config{Settings: game.DefaultSettings()}).Run(context.Background())
	assert.Error(t, err)
}

func TestSimulator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Rounds: 1000, Settings: game.DefaultSettings()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_Timeout(t *testing.T) {
	config := Config{
		Rounds:   1_000_000_000,
		Settings: game.DefaultSettings(),
		Timeout:  20 * time.Millisecond,
	}
	_, err := New(config).Run(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPrintSummary(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 20, 1, game.DefaultSettings(), testLogger())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "Rounds played: 20")
	assert.Contains(t, out, "95% CI")
	assert.Contains(t, out, "TRUE COUNT ANALYSIS")
}

func BenchmarkSimulator_Run(b *testing.B) {
	config := Config{
		Rounds:   1000,
		Settings: game.DefaultSettings(),
		Logger:   testLogger(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		config.Seed = int64(i)
		if _, err := New(config).Run(context.Background()); err != nil {
			b.Fatalf("Run() failed: %v", err)
		}
	}
}
