package domain

import "time"

// Run is a persisted engine run: the chosen schedule plus what was left open.
type Run struct {
	ID             string
	Seed           int64
	Score          float64
	FillRate       float64
	TotalSlots     int
	FilledSlots    int
	DirectFills    int
	SwapChains     int
	Backtracks     int
	DurationMillis int64
	Constraints    ScheduleConstraints
	Assignments    []Assignment
	RemainingGaps  []RunGap
	CreatedAt      time.Time
}

// RunGap is an unfilled slot recorded with the reason it stayed open.
type RunGap struct {
	Date   Date
	Role   Role
	Reason string
}
