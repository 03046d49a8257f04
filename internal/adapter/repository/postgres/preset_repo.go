package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

// presetRepository implements domain.PresetRepository
type presetRepository struct {
	db *DB
}

// NewPresetRepository creates a new preset repository
func NewPresetRepository(db *DB) domain.PresetRepository {
	return &presetRepository{db: db}
}

// GetByName retrieves a preset by its unique name
func (r *presetRepository) GetByName(ctx context.Context, name string) (*domain.AssumptionPreset, error) {
	query := `
		SELECT id, name, assumptions
		FROM assumption_presets
		WHERE name = $1
	`

	var preset domain.AssumptionPreset
	var assumptions []byte

	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&preset.ID,
		&preset.Name,
		&assumptions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("preset %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get preset by name: %w", err)
	}

	if err := json.Unmarshal(assumptions, &preset.Assumptions); err != nil {
		return nil, fmt.Errorf("failed to decode preset assumptions: %w", err)
	}

	return &preset, nil
}

// Create stores a new preset
func (r *presetRepository) Create(ctx context.Context, preset *domain.AssumptionPreset) error {
	if err := preset.Validate(); err != nil {
		return err
	}

	assumptions, err := json.Marshal(preset.Assumptions)
	if err != nil {
		return fmt.Errorf("failed to encode preset assumptions: %w", err)
	}

	query := `
		INSERT INTO assumption_presets (id, name, assumptions)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, preset.ID, preset.Name, assumptions); err != nil {
		return fmt.Errorf("failed to insert preset: %w", err)
	}

	return nil
}
