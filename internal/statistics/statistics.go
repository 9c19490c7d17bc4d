// Package statistics aggregates simulated blackjack rounds into expected
// value estimates with confidence intervals.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Outcome classifies a round by the sign of its net
type Outcome int

const (
	Push Outcome = iota
	Win
	Loss
)

// RoundResult is the outcome of one simulated round
type RoundResult struct {
	NetUnits  float64 // Net result in betting units
	Wagered   float64 // Units staked, including doubles, splits and insurance
	TrueCount int     // True count when the bet was placed
	Blackjack bool
	Hands     int // Hands played after splits
	Outcome   Outcome
}

// CountStats tracks results for one true count
type CountStats struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64
	Wagered float64
}

// Mean returns the average net per round at this count
func (c CountStats) Mean() float64 {
	if c.Rounds == 0 {
		return 0
	}
	return c.SumNet / float64(c.Rounds)
}

// MinBucket and MaxBucket bound the per-count buckets; counts beyond them
// are folded into the end buckets.
const (
	MinBucket = -10
	MaxBucket = 10
)

// Statistics tracks a simulation run
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	Wagered    float64
	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	Hands      int

	ByCount map[int]*CountStats
}

// New returns empty statistics
func New() *Statistics {
	return &Statistics{ByCount: make(map[int]*CountStats)}
}

// Mean returns the arithmetic mean net units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(0, s.Variance()))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// EdgePercent returns net over total wagered, as a percentage
func (s *Statistics) EdgePercent() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return 100 * s.SumNet / s.Wagered
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(r RoundResult) {
	if s.ByCount == nil {
		s.ByCount = make(map[int]*CountStats)
	}
	net := r.NetUnits
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.Wagered += r.Wagered
	s.Hands += r.Hands

	switch r.Outcome {
	case Win:
		s.Wins++
	case Loss:
		s.Losses++
	default:
		s.Pushes++
	}
	if r.Blackjack {
		s.Blackjacks++
	}

	tc := min(MaxBucket, max(MinBucket, r.TrueCount))
	b, ok := s.ByCount[tc]
	if !ok {
		b = &CountStats{}
		s.ByCount[tc] = b
	}
	b.Rounds++
	b.SumNet += net
	b.SumNet2 += net * net
	b.Wagered += r.Wagered
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	if s.ByCount == nil {
		s.ByCount = make(map[int]*CountStats)
	}
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wagered += other.Wagered
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Hands += other.Hands
	for tc, o := range other.ByCount {
		b, ok := s.ByCount[tc]
		if !ok {
			b = &CountStats{}
			s.ByCount[tc] = b
		}
		b.Rounds += o.Rounds
		b.SumNet += o.SumNet
		b.SumNet2 += o.SumNet2
		b.Wagered += o.Wagered
	}
}

// Counts returns the populated true counts in ascending order
func (s *Statistics) Counts() []int {
	counts := make([]int, 0, len(s.ByCount))
	for tc := range s.ByCount {
		counts = append(counts, tc)
	}
	sort.Ints(counts)
	return counts
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// Validate checks that the tallies agree with each other
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}
	if s.Wins+s.Losses+s.Pushes != s.Rounds {
		return fmt.Errorf("outcomes (%d) do not match rounds (%d)", s.Wins+s.Losses+s.Pushes, s.Rounds)
	}
	if s.Blackjacks > s.Rounds {
		return fmt.Errorf("blackjacks (%d) exceed rounds (%d)", s.Blackjacks, s.Rounds)
	}

	bucketRounds := 0
	bucketNet := 0.0
	for _, b := range s.ByCount {
		bucketRounds += b.Rounds
		bucketNet += b.SumNet
	}
	if bucketRounds != s.Rounds {
		return fmt.Errorf("count buckets total (%d) does not match rounds (%d)", bucketRounds, s.Rounds)
	}
	if math.Abs(bucketNet-s.SumNet) > 1e-6 {
		return fmt.Errorf("ledger mismatch: net=%.6f, buckets=%.6f", s.SumNet, bucketNet)
	}
	return nil
}
