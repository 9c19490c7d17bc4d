package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
	"github.com/sanity-io/litter"
)

// StateCmd dumps or clears the persisted session
type StateCmd struct {
	Store string `help:"Storage backend: memory, file or redis (overrides config)"`
	Reset bool   `help:"Delete the saved balance, settings and statistics"`
}

var stateKeys = []string{game.KeyBalance, game.KeySettings, game.KeyStatistics}

func (c *StateCmd) Run(g *Globals) error {
	f, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	st, err := openStore(f, c.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.Reset {
		return resetState(ctx, os.Stdout, st)
	}
	return dumpState(ctx, os.Stdout, st)
}

// stateEntry is the dump shape of one stored key
type stateEntry struct {
	Key       string
	SavedAt   string
	ExpiresAt string
	Expired   bool
	Value     any
}

func dumpState(ctx context.Context, w io.Writer, st store.Store) error {
	for _, key := range stateKeys {
		info, err := store.Inspect(ctx, st, key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(w, "%s: not saved\n", key)
			continue
		case err != nil:
			return fmt.Errorf("inspect %s: %w", key, err)
		}

		entry := stateEntry{
			Key:       key,
			SavedAt:   info.SavedAt.Format(time.RFC3339),
			ExpiresAt: "never",
		}
		if info.ExpiresAt != nil {
			entry.ExpiresAt = info.ExpiresAt.Format(time.RFC3339)
			entry.Expired = !time.Now().Before(*info.ExpiresAt)
		}
		if err := json.Unmarshal(info.Data, &entry.Value); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		fmt.Fprintln(w, litter.Sdump(entry))
	}
	return nil
}

func resetState(ctx context.Context, w io.Writer, st store.Store) error {
	for _, key := range stateKeys {
		if err := st.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		fmt.Fprintf(w, "%s: cleared\n", key)
	}
	return nil
}
