package domain

import (
	"fmt"
	"time"
)

// ScheduleConstraints are the tunable limits of one engine run.
type ScheduleConstraints struct {
	MaxConsecutiveDays int
	BeamWidth          int
	CSPTimeoutSecs     int
	NeighborExpansion  int
	MaxBacktracks      int
	SwapSearchDepth    int
	SearchBudgetSecs   int
}

func DefaultConstraints() ScheduleConstraints {
	return ScheduleConstraints{
		MaxConsecutiveDays: 2,
		BeamWidth:          5,
		CSPTimeoutSecs:     10,
		NeighborExpansion:  10,
		MaxBacktracks:      20,
		SwapSearchDepth:    3,
		SearchBudgetSecs:   120,
	}
}

func (c ScheduleConstraints) CSPTimeout() time.Duration {
	return time.Duration(c.CSPTimeoutSecs) * time.Second
}

func (c ScheduleConstraints) SearchBudget() time.Duration {
	return time.Duration(c.SearchBudgetSecs) * time.Second
}

// Validate rejects limits the engine cannot run with.
func (c ScheduleConstraints) Validate() error {
	switch {
	case c.MaxConsecutiveDays < 1:
		return fmt.Errorf("max consecutive days must be at least 1, got %d", c.MaxConsecutiveDays)
	case c.BeamWidth < 1:
		return fmt.Errorf("beam width must be at least 1, got %d", c.BeamWidth)
	case c.CSPTimeoutSecs < 0:
		return fmt.Errorf("csp timeout must not be negative, got %d", c.CSPTimeoutSecs)
	case c.NeighborExpansion < 0:
		return fmt.Errorf("neighbor expansion must not be negative, got %d", c.NeighborExpansion)
	case c.MaxBacktracks < 0:
		return fmt.Errorf("max backtracks must not be negative, got %d", c.MaxBacktracks)
	case c.SwapSearchDepth < 0:
		return fmt.Errorf("swap search depth must not be negative, got %d", c.SwapSearchDepth)
	case c.SearchBudgetSecs < 0:
		return fmt.Errorf("search budget must not be negative, got %d", c.SearchBudgetSecs)
	}
	return nil
}
