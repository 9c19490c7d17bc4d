// Package store keeps small JSON blobs by key with an expiry window. It
// backs session persistence with memory, file or Redis storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
)

var (
	// ErrNotFound is returned when nothing is stored under a key
	ErrNotFound = errors.New("store: not found")
	// ErrExpired is returned when a value outlived its expiry window
	ErrExpired = errors.New("store: expired")
	// ErrCorrupt is returned when a stored value cannot be decoded
	ErrCorrupt = errors.New("store: corrupt value")
)

// DefaultTTL is the expiry window applied when none is configured
const DefaultTTL = 30 * 24 * time.Hour

// Store is implemented by every backend. Values must be JSON documents.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options are shared by all backends
type Options struct {
	// TTL is the expiry window; zero means DefaultTTL, negative never expires
	TTL   time.Duration
	Clock quartz.Clock
}

func (o Options) withDefaults() Options {
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	return o
}

// envelope wraps a value with the times it was saved and goes stale
type envelope struct {
	SavedAt   time.Time       `json:"savedAt"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	Data      json.RawMessage `json:"data"`
}

func seal(opts Options, data []byte) ([]byte, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("store: value is not a JSON document")
	}
	now := opts.Clock.Now()
	env := envelope{SavedAt: now, Data: data}
	if opts.TTL > 0 {
		exp := now.Add(opts.TTL)
		env.ExpiresAt = &exp
	}
	return json.Marshal(env)
}

func open(opts Options, key string, raw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty value", ErrCorrupt, key)
	}
	if env.ExpiresAt != nil && !opts.Clock.Now().Before(*env.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s saved %s", ErrExpired, key, env.SavedAt.Format(time.RFC3339))
	}
	return env.Data, nil
}

// Info describes a stored value without decoding it
type Info struct {
	Key       string
	SavedAt   time.Time
	ExpiresAt *time.Time
	Data      json.RawMessage
}

// Inspect reads the raw envelope under key, expired or not
func Inspect(ctx context.Context, s Store, key string) (Info, error) {
	r, ok := s.(rawReader)
	if !ok {
		return Info{}, fmt.Errorf("store: %T cannot be inspected", s)
	}
	raw, err := r.raw(ctx, key)
	if err != nil {
		return Info{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return Info{Key: key, SavedAt: env.SavedAt, ExpiresAt: env.ExpiresAt, Data: env.Data}, nil
}

// rawReader returns the stored envelope bytes
type rawReader interface {
	raw(ctx context.Context, key string) ([]byte, error)
}
