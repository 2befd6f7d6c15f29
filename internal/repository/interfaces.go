package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// RunSummary is the list view of a run without its assignment rows.
type RunSummary struct {
	ID          string
	Seed        int64
	Score       float64
	FillRate    float64
	TotalSlots  int
	FilledSlots int
	Gaps        int
	CreatedAt   string
}

type RunRepo interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id string) (*domain.Run, error)
	GetByPrefix(ctx context.Context, prefix string) (*domain.Run, error)
	List(ctx context.Context, limit int) ([]RunSummary, error)
	Delete(ctx context.Context, id string) error
}
