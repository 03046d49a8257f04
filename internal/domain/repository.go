package domain

import (
	"context"

	"github.com/google/uuid"
)

// RunRepository defines the interface for projection run persistence operations
type RunRepository interface {
	// Create stores a finished run with its portfolio series and distribution ledger
	Create(ctx context.Context, run *ProjectionRun) error

	// GetByID retrieves a run; returns ErrNotFound when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*ProjectionRun, error)

	// List retrieves run headers, newest first
	List(ctx context.Context, limit, offset int) ([]*ProjectionRun, error)
}

// PresetRepository defines the interface for named assumption set persistence
type PresetRepository interface {
	// GetByName retrieves a preset; returns ErrNotFound when it does not exist
	GetByName(ctx context.Context, name string) (*AssumptionPreset, error)

	// Create stores a new preset
	Create(ctx context.Context, preset *AssumptionPreset) error
}
