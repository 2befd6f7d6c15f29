package service

import (
	"context"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/repository"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

type PlanService interface {
	// Plan runs generation, CSP completion and auto-fill, and saves the run
	// when asked.
	Plan(ctx context.Context, req PlanRequest) (*PlanResult, error)
	// Prepare stops before auto-fill and hands back a resolver for
	// interactive gap resolution.
	Prepare(ctx context.Context, req PlanRequest) (*Prepared, error)
	Feasibility(ctx context.Context, roster *domain.Roster) []scheduler.Problem
	Validate(ctx context.Context, roster *domain.Roster, s *domain.Schedule, c domain.ScheduleConstraints) scheduler.ScheduleResult
}

type RunService interface {
	Save(ctx context.Context, run *domain.Run) error
	Get(ctx context.Context, idOrPrefix string) (*domain.Run, error)
	List(ctx context.Context, limit int) ([]repository.RunSummary, error)
	Delete(ctx context.Context, id string) error
}

// RunMetrics receives engine measurements; *metrics.Recorder implements it.
type RunMetrics interface {
	ObserveRun(run *domain.Run, stoppedBy string)
	ObserveCSP(nodes, backtracks int, timedOut bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRun(*domain.Run, string) {}
func (noopMetrics) ObserveCSP(int, int, bool)      {}
