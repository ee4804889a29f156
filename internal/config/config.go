// Package config loads the engine's settings from MICRORTS_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/IlikeChooros/go-mcts-rts/pkg/mcts"
	"github.com/IlikeChooros/go-mcts-rts/pkg/skirmish"
)

const Prefix = "MICRORTS_"

var ErrUnboundedBudget = errors.New("at least one of MOVETIME_MS or ITERATIONS must be set")

// Config holds the planner budget, logging and the skirmish game settings.
type Config struct {
	MovetimeMs   int     `env:"MOVETIME_MS" envDefault:"100"`
	Iterations   int     `env:"ITERATIONS" envDefault:"0"`
	MaxDepth     int     `env:"MAX_DEPTH" envDefault:"0"`
	Exploration  float64 `env:"EXPLORATION" envDefault:"0.75"`
	RolloutTicks int     `env:"ROLLOUT_TICKS" envDefault:"60"`
	Seed         int64   `env:"SEED" envDefault:"0"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`

	BoardWidth  int `env:"BOARD_WIDTH" envDefault:"8"`
	BoardHeight int `env:"BOARD_HEIGHT" envDefault:"8"`
	MaxTicks    int `env:"MAX_TICKS" envDefault:"400"`

	ArenaGames   int `env:"ARENA_GAMES" envDefault:"10"`
	ArenaWorkers int `env:"ARENA_WORKERS" envDefault:"2"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom is Load over the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative values and a budget without any limit.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"MOVETIME_MS", c.MovetimeMs},
		{"ITERATIONS", c.Iterations},
		{"MAX_DEPTH", c.MaxDepth},
		{"ROLLOUT_TICKS", c.RolloutTicks},
		{"MAX_TICKS", c.MaxTicks},
		{"ARENA_GAMES", c.ArenaGames},
	}
	for _, check := range checks {
		if check.value < 0 {
			return fmt.Errorf("%s%s must not be negative, got %d", Prefix, check.name, check.value)
		}
	}
	if c.Exploration < 0 {
		return fmt.Errorf("%sEXPLORATION must not be negative, got %v", Prefix, c.Exploration)
	}
	if c.BoardWidth < 2 || c.BoardHeight < 2 {
		return fmt.Errorf("board must be at least 2x2, got %dx%d", c.BoardWidth, c.BoardHeight)
	}
	if c.ArenaWorkers < 1 {
		return fmt.Errorf("%sARENA_WORKERS must be positive, got %d", Prefix, c.ArenaWorkers)
	}
	// A depth limit alone is not reached when the game ends before it
	if c.MovetimeMs == 0 && c.Iterations == 0 {
		return ErrUnboundedBudget
	}
	return nil
}

// Limits converts the budget settings, zero values stay unlimited.
func (c Config) Limits() *mcts.Limits {
	limits := mcts.DefaultLimits()
	if c.MovetimeMs > 0 {
		limits.SetMovetime(c.MovetimeMs)
	}
	if c.Iterations > 0 {
		limits.SetCycles(uint32(c.Iterations))
	}
	if c.MaxDepth > 0 {
		limits.SetDepth(c.MaxDepth)
	}
	return limits
}

// Skirmish returns the game settings.
func (c Config) Skirmish() skirmish.Config {
	cfg := skirmish.DefaultConfig()
	cfg.Width, cfg.Height, cfg.MaxTicks = c.BoardWidth, c.BoardHeight, c.MaxTicks
	return cfg
}
