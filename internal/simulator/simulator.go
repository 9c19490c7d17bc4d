// Package simulator plays many rounds of blackjack unattended to estimate
// the edge of a rule set under basic strategy and count deviations.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// bankroll is the per worker float. It is topped up whenever it runs low
// so a losing streak never stops the run.
const bankroll = 1_000_000.0

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Seed     int64
	Settings game.Settings
	BaseBet  float64 // One betting unit; defaults to the table minimum
	Spread   int     // Maximum units bet at high counts; 0 or 1 bets flat
	Timeout  time.Duration
	Logger   *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	config.Settings = config.Settings.Normalize()
	if config.BaseBet <= 0 {
		config.BaseBet = config.Settings.MinBet
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns merged results
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	workers := min(s.config.Workers, s.config.Rounds)
	perWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers

	g, ctx := errgroup.WithContext(ctx)
	results := make([]*statistics.Statistics, workers)

	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++
		}
		seed := s.config.Seed + int64(w)

		g.Go(func() error {
			stats, err := s.runWorker(ctx, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.New()
	for _, r := range results {
		stats.Merge(r)
	}

	// Validate statistics before returning
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.config.Logger.Info("simulation complete", "rounds", stats.Rounds, "edge", fmt.Sprintf("%.3f%%", stats.EdgePercent()))
	return stats, nil
}

func (s *Simulator) runWorker(ctx context.Context, seed int64, rounds int) (*statistics.Statistics, error) {
	logger := s.config.Logger.WithPrefix("sim")
	logger.SetLevel(max(log.WarnLevel, s.config.Logger.GetLevel()))

	session := game.NewSession(
		game.WithSettings(s.config.Settings),
		game.WithSettingsPatch(game.SettingsPatch{CardDelay: game.Ptr(time.Duration(0))}),
		game.WithBalance(bankroll),
		game.WithRNG(randutil.New(seed)),
		game.WithLogger(logger),
	)

	var resolved *game.RoundResolvedEvent
	session.Subscribe(game.SubscriberFunc(func(e game.Event) {
		if rr, ok := e.(game.RoundResolvedEvent); ok {
			resolved = &rr
		}
	}))

	stats := statistics.New()
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resolved = nil
		result, err := s.playRound(session)
		if err != nil {
			return nil, fmt.Errorf("round %d (seed %d): %w", i+1, seed, err)
		}
		if resolved == nil {
			return nil, fmt.Errorf("round %d (seed %d): %w", i+1, seed, errUnresolved)
		}
		result.NetUnits = resolved.Net / s.config.BaseBet
		stats.Add(result)

		if !session.NewRound() {
			return nil, fmt.Errorf("round %d (seed %d): cannot start new round in %s", i+1, seed, session.Phase())
		}
	}
	return stats, nil
}

var errUnresolved = errors.New("round did not resolve")

// playRound plays one round to GAME_OVER. NetUnits is filled in by the
// caller from the resolved event.
func (s *Simulator) playRound(session *game.Session) (statistics.RoundResult, error) {
	before := session.Statistics()
	tc := session.TrueCount()
	bet := s.betFor(tc)

	if session.Balance() < bet*10 {
		session.AddFunds(bankroll)
	}
	if !session.PlaceBet(bet) {
		return statistics.RoundResult{}, fmt.Errorf("bet %.2f rejected", bet)
	}
	if !session.Deal() {
		return statistics.RoundResult{}, errors.New("deal rejected")
	}

	if session.Phase() == game.PhaseInsurance {
		if !session.Insurance(session.InsuranceHint()) {
			return statistics.RoundResult{}, errors.New("insurance decision rejected")
		}
	}

	for session.Phase() == game.PhasePlayerTurn {
		action, ok := session.Hint()
		if !ok {
			return statistics.RoundResult{}, errors.New("no legal action in player turn")
		}
		if !perform(session, action) && !session.Stand() {
			return statistics.RoundResult{}, fmt.Errorf("%s rejected", action)
		}
	}
	if session.Phase() != game.PhaseGameOver {
		return statistics.RoundResult{}, fmt.Errorf("round stopped in %s", session.Phase())
	}

	after := session.Statistics()
	return statistics.RoundResult{
		Wagered:   (after.TotalWagered - before.TotalWagered) / s.config.BaseBet,
		TrueCount: tc,
		Blackjack: after.Blackjacks > before.Blackjacks,
		Hands:     after.HandsPlayed - before.HandsPlayed,
		Outcome:   outcomeOf(after.NetProfit - before.NetProfit),
	}, nil
}

// betFor ramps the bet with the true count: one unit at +2 or below, then
// true count minus one units up to the spread.
func (s *Simulator) betFor(trueCount int) float64 {
	units := 1
	if s.config.Spread > 1 && s.config.Settings.CountingEnabled {
		units = min(s.config.Spread, max(1, trueCount-1))
	}
	bet := s.config.BaseBet * float64(units)
	return min(s.config.Settings.MaxBet, max(s.config.Settings.MinBet, bet))
}

func perform(session *game.Session, action strategy.Action) bool {
	switch action {
	case strategy.Hit:
		return session.Hit()
	case strategy.Stand:
		return session.Stand()
	case strategy.Double:
		return session.Double()
	case strategy.Split:
		return session.Split()
	case strategy.Surrender:
		return session.Surrender()
	default:
		return false
	}
}

func outcomeOf(net float64) statistics.Outcome {
	switch {
	case net > 0:
		return statistics.Win
	case net < 0:
		return statistics.Loss
	default:
		return statistics.Push
	}
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, rounds int, seed int64, settings game.Settings, logger *log.Logger) (*statistics.Statistics, error) {
	config := Config{
		Rounds:   rounds,
		Workers:  1,
		Seed:     seed,
		Settings: settings,
		Logger:   logger,
	}
	return New(config).Run(ctx)
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d (%d hands)\n", stats.Rounds, stats.Hands)
	fmt.Fprintf(w, "Won: %d  Lost: %d  Pushed: %d  Blackjacks: %d\n", stats.Wins, stats.Losses, stats.Pushes, stats.Blackjacks)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Edge: %.3f%% of amount wagered\n", stats.EdgePercent())
	fmt.Fprintf(w, "Mean: %.4f units/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f units/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f units\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.2f, P25=%.2f, P75=%.2f, P95=%.2f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== TRUE COUNT ANALYSIS ===\n")
	for _, tc := range stats.Counts() {
		b := stats.ByCount[tc]
		fmt.Fprintf(w, "TC %+3d: %7d rounds, %+.4f units/round\n", tc, b.Rounds, b.Mean())
	}
}
