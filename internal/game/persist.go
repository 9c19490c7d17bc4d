package game

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/lox/blackjack/internal/store"
)

// Keys under which the session persists its state
const (
	KeyBalance    = "balance"
	KeySettings   = "settings"
	KeyStatistics = "statistics"
)

const persistTimeout = 2 * time.Second

// Persister stores opaque blobs by key. Mechanics such as expiry belong to
// the implementation.
type Persister interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Save writes balance, settings and statistics. The saved balance
// includes chips still on the table, so quitting mid-round gives the stake
// back on the next start.
func (s *Session) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = s.bankroll()
	s.save(KeyBalance, s.saved)
	s.save(KeySettings, s.settings)
	s.save(KeyStatistics, s.stats)
}

func (s *Session) save(key string, v any) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("encode state", "key", key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.Put(ctx, key, data); err != nil {
		s.logger.Warn("persist state", "key", key, "error", err)
	}
}

// restore loads persisted state over the defaults. Anything missing,
// expired or unreadable is left at its default.
func (s *Session) restore() {
	if s.store == nil {
		return
	}

	var balance float64
	if s.load(KeyBalance, &balance) {
		if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
			s.logger.Warn("ignoring persisted balance", "balance", balance)
		} else {
			s.balance = balance
			s.saved = balance
		}
	}

	settings := s.settings
	if s.load(KeySettings, &settings) {
		s.settings = settings.Normalize()
	}

	var stats Statistics
	if s.load(KeyStatistics, &stats) {
		s.stats = stats
	}
}

func (s *Session) load(key string, v any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	data, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debug("no persisted state", "key", key)
		return false
	case err != nil:
		s.logger.Warn("load state", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("decode state", "key", key, "error", err)
		return false
	}
	return true
}
