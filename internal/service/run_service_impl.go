package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/dutyroster/internal/db"
	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/repository"
)

type runService struct {
	runs     repository.RunRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewRunService(runs repository.RunRepo, uow db.UnitOfWork, observers ...UseCaseObserver) RunService {
	return &runService{runs: runs, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *runService) Save(ctx context.Context, run *domain.Run) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "save-run",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"run_id": run.ID, "assignments": len(run.Assignments)},
		})
	}()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = startedAt
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteRunRepo(tx).Create(ctx, run)
	})
}

// Get accepts a full id or a unique prefix of one.
func (s *runService) Get(ctx context.Context, idOrPrefix string) (*domain.Run, error) {
	run, err := s.runs.GetByID(ctx, idOrPrefix)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	run, err = s.runs.GetByPrefix(ctx, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("finding run %q: %w", idOrPrefix, err)
	}
	return run, nil
}

func (s *runService) List(ctx context.Context, limit int) ([]repository.RunSummary, error) {
	return s.runs.List(ctx, limit)
}

func (s *runService) Delete(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.runs.Delete(ctx, run.ID)
}
