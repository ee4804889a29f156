package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MovetimeMs)
	assert.Equal(t, 0, cfg.Iterations)
	assert.Equal(t, 0.75, cfg.Exploration)
	assert.Equal(t, 60, cfg.RolloutTicks)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 8, cfg.BoardWidth)
	assert.Equal(t, 400, cfg.MaxTicks)
	assert.Equal(t, 10, cfg.ArenaGames)
	assert.Equal(t, 2, cfg.ArenaWorkers)

	limits := cfg.Limits()
	assert.False(t, limits.Infinite)
	assert.Equal(t, 100, limits.Movetime)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MICRORTS_MOVETIME_MS": "0",
		"MICRORTS_ITERATIONS":  "500",
		"MICRORTS_MAX_DEPTH":   "12",
		"MICRORTS_BOARD_WIDTH": "6",
		"MICRORTS_LOG_PRETTY":  "false",
		"MICRORTS_ARENA_GAMES": "4",
		"MOVETIME_MS":          "999",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MovetimeMs, "unprefixed variables are ignored")
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 6, cfg.Skirmish().Width)
	assert.Equal(t, 8, cfg.Skirmish().Height)

	limits := cfg.Limits()
	assert.Equal(t, uint32(500), limits.Cycles)
	assert.Equal(t, 12, limits.Depth)
	assert.Equal(t, -1, limits.Movetime)
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"negative iterations", map[string]string{"MICRORTS_ITERATIONS": "-1"}},
		{"negative exploration", map[string]string{"MICRORTS_EXPLORATION": "-0.5"}},
		{"tiny board", map[string]string{"MICRORTS_BOARD_HEIGHT": "1"}},
		{"no workers", map[string]string{"MICRORTS_ARENA_WORKERS": "0"}},
		{"not a number", map[string]string{"MICRORTS_MAX_TICKS": "many"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadFrom(c.env)
			assert.Error(t, err)
		})
	}
}

func TestLoadUnboundedBudget(t *testing.T) {
	_, err := LoadFrom(map[string]string{"MICRORTS_MOVETIME_MS": "0"})
	assert.True(t, errors.Is(err, ErrUnboundedBudget))

	_, err = LoadFrom(map[string]string{"MICRORTS_MOVETIME_MS": "0", "MICRORTS_MAX_DEPTH": "8"})
	assert.True(t, errors.Is(err, ErrUnboundedBudget), "depth alone does not bound the search")

	cfg, err := LoadFrom(map[string]string{"MICRORTS_MOVETIME_MS": "0", "MICRORTS_ITERATIONS": "10"})
	require.NoError(t, err)
	assert.True(t, cfg.Limits().Bounded())
}
