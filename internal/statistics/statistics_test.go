package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	stats := New()

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.EdgePercent())
	assert.Error(t, stats.Validate())
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := New()
	stats.Add(RoundResult{NetUnits: 1.5, Wagered: 1, TrueCount: 2, Blackjack: true, Hands: 1, Outcome: Win})

	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, 1.5, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Equal(t, 1.5, stats.Median())
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Blackjacks)
	assert.InDelta(t, 150.0, stats.EdgePercent(), 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := New()
	results := []RoundResult{
		{NetUnits: 1, Wagered: 1, Hands: 1, Outcome: Win},
		{NetUnits: -2, Wagered: 2, Hands: 1, Outcome: Loss},
		{NetUnits: 3, Wagered: 3, TrueCount: 3, Hands: 2, Outcome: Win},
		{NetUnits: 0, Wagered: 1, Hands: 1, Outcome: Push},
		{NetUnits: -1, Wagered: 1, TrueCount: -1, Hands: 1, Outcome: Loss},
	}
	for _, r := range results {
		stats.Add(r)
	}

	// mean 0.2; sum of squares 15
	assert.InDelta(t, 0.2, stats.Mean(), 1e-9)
	assert.InDelta(t, (15-5*0.04)/4, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt((15-5*0.04)/4), stats.StdDev(), 1e-9)
	assert.InDelta(t, stats.StdDev()/math.Sqrt(5), stats.StdError(), 1e-9)
	assert.Equal(t, 0.0, stats.Median())
	assert.Equal(t, -2.0, stats.Percentile(0))
	assert.Equal(t, 3.0, stats.Percentile(1))
	assert.InDelta(t, -0.5, stats.Percentile(0.125), 1e-9)

	lo, hi := stats.ConfidenceInterval95()
	assert.InDelta(t, stats.Mean(), (lo+hi)/2, 1e-9)
	assert.InDelta(t, 1.96*stats.StdError(), hi-stats.Mean(), 1e-9)

	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 2, stats.Losses)
	assert.Equal(t, 1, stats.Pushes)
	assert.Equal(t, 6, stats.Hands)
	assert.InDelta(t, 100*1.0/8.0, stats.EdgePercent(), 1e-9)
	assert.Equal(t, []int{-1, 0, 3}, stats.Counts())
	assert.Equal(t, 3, stats.ByCount[0].Rounds)
	assert.InDelta(t, -1.0/3.0, stats.ByCount[0].Mean(), 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_EvenMedian(t *testing.T) {
	stats := New()
	for _, v := range []float64{4, 1, 3, 2} {
		stats.Add(RoundResult{NetUnits: v, Wagered: 1, Outcome: Win})
	}
	assert.Equal(t, 2.5, stats.Median())
	// Add must not reorder the stored values
	assert.Equal(t, []float64{4, 1, 3, 2}, stats.Values)
}

func TestStatistics_CountBucketsClamp(t *testing.T) {
	stats := New()
	stats.Add(RoundResult{NetUnits: 1, TrueCount: 25, Outcome: Win})
	stats.Add(RoundResult{NetUnits: -1, TrueCount: -40, Outcome: Loss})

	assert.Equal(t, []int{MinBucket, MaxBucket}, stats.Counts())
	require.NoError(t, stats.Validate())
}

func TestStatistics_Merge(t *testing.T) {
	a, b := New(), New()
	a.Add(RoundResult{NetUnits: 1, Wagered: 1, TrueCount: 1, Hands: 1, Outcome: Win})
	b.Add(RoundResult{NetUnits: -1, Wagered: 1, TrueCount: 1, Hands: 1, Outcome: Loss})
	b.Add(RoundResult{NetUnits: 1.5, Wagered: 1, Blackjack: true, Hands: 1, Outcome: Win})

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 3, a.Rounds)
	assert.InDelta(t, 1.5, a.SumNet, 1e-9)
	assert.Equal(t, 2, a.ByCount[1].Rounds)
	assert.Equal(t, 1, a.Blackjacks)
	assert.Len(t, a.Values, 3)
	require.NoError(t, a.Validate())

	// merging into a zero value works too
	var z Statistics
	z.Merge(a)
	assert.Equal(t, 3, z.Rounds)
	require.NoError(t, z.Validate())
}

func TestStatistics_ValidateDetectsMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Statistics)
	}{
		{"values", func(s *Statistics) { s.Values = s.Values[:1] }},
		{"outcomes", func(s *Statistics) { s.Pushes++ }},
		{"blackjacks", func(s *Statistics) { s.Blackjacks = 5 }},
		{"buckets", func(s *Statistics) { s.ByCount[0].Rounds++ }},
		{"ledger", func(s *Statistics) { s.SumNet += 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := New()
			stats.Add(RoundResult{NetUnits: 1, Outcome: Win})
			stats.Add(RoundResult{NetUnits: -1, Outcome: Loss})
			require.NoError(t, stats.Validate())

			tt.mutate(stats)
			assert.Error(t, stats.Validate())
		})
	}
}
