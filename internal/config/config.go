package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

const envPrefix = "DUTYROSTER_"

// EngineConfig holds the default search limits; roster files and CLI flags
// override them per run.
type EngineConfig struct {
	MaxConsecutiveDays int `env:"MAX_CONSECUTIVE_DAYS" envDefault:"2"`
	BeamWidth          int `env:"BEAM_WIDTH" envDefault:"5"`
	CSPTimeoutSecs     int `env:"CSP_TIMEOUT_SECS" envDefault:"10"`
	NeighborExpansion  int `env:"NEIGHBOR_EXPANSION" envDefault:"10"`
	MaxBacktracks      int `env:"MAX_BACKTRACKS" envDefault:"20"`
	SwapSearchDepth    int `env:"SWAP_SEARCH_DEPTH" envDefault:"3"`
	SearchBudgetSecs   int `env:"SEARCH_BUDGET_SECS" envDefault:"120"`
}

type Config struct {
	DBPath      string `env:"DB"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogUseCases bool   `env:"LOG_USE_CASES" envDefault:"false"`
	NoColor     bool   `env:"NO_COLOR" envDefault:"false"`
	Engine      EngineConfig
}

// LoadConfig reads DUTYROSTER_* variables, falling back to defaults for
// any unset values. Malformed values are errors.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("config: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Constraints().Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dutyroster", "dutyroster.db")
	}
	return filepath.Join(home, ".dutyroster", "dutyroster.db")
}

// Constraints converts the engine defaults into domain constraints.
func (c *Config) Constraints() domain.ScheduleConstraints {
	e := c.Engine
	return domain.ScheduleConstraints{
		MaxConsecutiveDays: e.MaxConsecutiveDays,
		BeamWidth:          e.BeamWidth,
		CSPTimeoutSecs:     e.CSPTimeoutSecs,
		NeighborExpansion:  e.NeighborExpansion,
		MaxBacktracks:      e.MaxBacktracks,
		SwapSearchDepth:    e.SwapSearchDepth,
		SearchBudgetSecs:   e.SearchBudgetSecs,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
