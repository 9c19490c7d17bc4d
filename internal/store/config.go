package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

// Backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a backend. Fields left empty fall back to
// DefaultConfig when opened.
type Config struct {
	Backend   string        `env:"BLACKJACK_STORE_BACKEND" yaml:"backend"`
	Dir       string        `env:"BLACKJACK_STORE_DIR" yaml:"dir"`
	RedisAddr string        `env:"BLACKJACK_REDIS_ADDR" yaml:"redis_addr"`
	RedisDB   int           `env:"BLACKJACK_REDIS_DB" yaml:"redis_db"`
	TTL       time.Duration `env:"BLACKJACK_STATE_TTL" yaml:"ttl"`
}

// DefaultConfig stores state as files under ~/.blackjack
func DefaultConfig() Config {
	dir := ".blackjack"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".blackjack")
	}
	return Config{
		Backend:   BackendFile,
		Dir:       dir,
		RedisAddr: "localhost:6379",
		TTL:       DefaultTTL,
	}
}

// FromEnv overlays any BLACKJACK_* variables that are set onto cfg
func FromEnv(cfg Config) (Config, error) {
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse store environment: %w", err)
	}
	return cfg, nil
}

// ExpandDir resolves a leading ~ in Dir
func (c Config) ExpandDir() string {
	if c.Dir == "~" || strings.HasPrefix(c.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(c.Dir, "~"))
		}
	}
	return c.Dir
}

// Validate reports an unknown backend
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendRedis:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
}

// Open builds the configured backend
func Open(cfg Config, clock quartz.Clock) (Store, error) {
	def := DefaultConfig()
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = def.RedisAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{TTL: cfg.TTL, Clock: clock}
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(opts), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return NewRedis(client, opts), nil
	default:
		return NewFile(cfg.ExpandDir(), opts)
	}
}
