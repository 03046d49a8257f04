package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Fixed UUIDs for the built-in assumption presets
var (
	PresetConservativeID = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	PresetExpandedID     = uuid.MustParse("00000000-0000-0000-0000-000000000102")
)

const (
	PresetConservative = "conservative"
	PresetExpanded     = "expanded"
)

// PresetSeeder handles seeding of the built-in assumption presets
type PresetSeeder struct {
	repo domain.PresetRepository
}

// NewPresetSeeder creates a new PresetSeeder instance
func NewPresetSeeder(repo domain.PresetRepository) *PresetSeeder {
	return &PresetSeeder{
		repo: repo,
	}
}

// Presets returns the built-in presets
func Presets() []domain.AssumptionPreset {
	conservative := ConservativeAssumptions()

	expanded := conservative
	expanded.HoldPeriods = 7
	expanded.PaymentsPerPeriod = 12

	return []domain.AssumptionPreset{
		{ID: PresetConservativeID, Name: PresetConservative, Assumptions: conservative},
		{ID: PresetExpandedID, Name: PresetExpanded, Assumptions: expanded},
	}
}

// ConservativeAssumptions is a single leveraged duplex held five years:
// 75% LTV at 4.6% over 25 years, 8% preferred, 20% promote, 75/25 LP/GP split
func ConservativeAssumptions() domain.AssumptionSet {
	return domain.AssumptionSet{
		VacancyRate:         decimal.RequireFromString("0.05"),
		MaintenanceRatio:    decimal.RequireFromString("0.08"),
		ManagementRatio:     decimal.RequireFromString("0.08"),
		InsuranceRate:       decimal.RequireFromString("0.002"),
		RentGrowth:          decimal.RequireFromString("0.02"),
		Appreciation:        decimal.RequireFromString("0.025"),
		ExpenseGrowth:       decimal.Zero,
		DispositionCostRate: decimal.RequireFromString("0.01"),
		LTV:                 decimal.RequireFromString("0.75"),
		InterestRate:        decimal.RequireFromString("0.046"),
		AmortizationPeriods: 25,
		PaymentsPerPeriod:   1,
		HoldPeriods:         5,
		ManagementFeeRate:   decimal.RequireFromString("0.02"),
		PreferredRate:       decimal.RequireFromString("0.08"),
		PromoteRate:         decimal.RequireFromString("0.20"),
		CatchUp:             domain.CatchUpProfitToDate,
		LPCapital:           decimal.NewFromInt(131250),
		GPCapital:           decimal.NewFromInt(43750),
	}
}

// Seed ensures all built-in presets exist in the database
// If a preset doesn't exist, it creates it; existing presets are left untouched
func (s *PresetSeeder) Seed(ctx context.Context) error {
	for _, preset := range Presets() {
		_, err := s.repo.GetByName(ctx, preset.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("look up preset %s: %w", preset.Name, err)
		}

		// Validate before creating
		if err := preset.Validate(); err != nil {
			return err
		}

		p := preset
		if err := s.repo.Create(ctx, &p); err != nil {
			return fmt.Errorf("create preset %s: %w", preset.Name, err)
		}
	}

	return nil
}
