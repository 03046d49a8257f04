package fund

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/metrics"
	"github.com/simaogato/fundflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundflow-backend/internal/usecase/waterfall"
)

// RunInput describes one projection request.
// Assumptions wins over Preset when both are given.
type RunInput struct {
	Name        string
	Preset      string
	Assumptions *domain.AssumptionSet
	Properties  []domain.PropertyArchetype
}

// Service runs the projection pipeline and stores finished runs
type Service struct {
	RunRepo    domain.RunRepository
	PresetRepo domain.PresetRepository
	Logger     *logrus.Logger
	Now        func() time.Time
}

// NewService creates a new Service instance.
// Either repository may be nil when the caller never persists runs or resolves presets.
func NewService(runRepo domain.RunRepository, presetRepo domain.PresetRepository, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		RunRepo:    runRepo,
		PresetRepo: presetRepo,
		Logger:     logger,
		Now:        time.Now,
	}
}

// Run projects the input and stores the result
func (s *Service) Run(ctx context.Context, input RunInput) (*domain.ProjectionRun, error) {
	if s.RunRepo == nil {
		return nil, fmt.Errorf("fund service: no run repository configured")
	}

	run, err := s.Project(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.RunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("save run %s: %w", run.ID, err)
	}

	s.Logger.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"periods": run.Periods(),
	}).Info("projection run stored")

	return run, nil
}

// Project runs the pipeline without storing anything.
// Logic:
//  1. Resolve the assumption set (inline or preset) and validate it
//  2. Project every property in parallel over its own hold, each inheriting the run assumptions
//     unless it has its own; fund-level terms (fee, waterfall, capital) must match the run
//  3. Aggregate into the portfolio series with the management fee on committed capital
//  4. Distribute through the LP/GP waterfall
//  5. Compute fund, LP and GP return metrics
func (s *Service) Project(ctx context.Context, input RunInput) (*domain.ProjectionRun, error) {
	assumptions, err := s.resolveAssumptions(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := assumptions.Validate(); err != nil {
		return nil, err
	}
	if len(input.Properties) == 0 {
		return nil, domain.NewValidationError("run", "properties", 0, "needs at least one property")
	}

	runID := uuid.New()
	log := s.Logger.WithField("run_id", runID)

	archetypes := make([]domain.PropertyArchetype, len(input.Properties))
	for i, p := range input.Properties {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Assumptions == nil {
			p.Assumptions = assumptions
		} else if field, ok := p.Assumptions.FundTermMismatch(assumptions); ok {
			return nil, domain.NewValidationError(p.Label(), field, "override", "is a fund-level term and cannot be set per property")
		}
		archetypes[i] = p
	}

	projections, err := portfolio.ProjectAll(ctx, archetypes)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	committed := assumptions.CommittedCapital()
	equity := portfolio.TotalEquity(projections)
	if !equity.Equal(committed) {
		log.WithFields(logrus.Fields{
			"committed": committed.String(),
			"equity":    equity.String(),
		}).Warn("committed capital differs from property equity")
	}

	series, err := portfolio.Aggregate(projections, committed, assumptions.ManagementFeeRate)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	terms, err := waterfall.TermsFor(assumptions)
	if err != nil {
		return nil, err
	}
	ledger, err := waterfall.Distribute(series, terms)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	run := &domain.ProjectionRun{
		ID:          runID,
		Name:        input.Name,
		CreatedAt:   s.Now().UTC(),
		Assumptions: *assumptions,
		Properties:  projections,
		Portfolio:   series,
		Ledger:      ledger.Entries,
		Accounts:    ledger.Snapshots,
		TotalCost:   portfolio.TotalCost(projections),
		TotalEquity: equity,
	}

	if run.FundMetrics, err = s.metricsFor(log, "fund", portfolio.NetSeries(series), committed); err != nil {
		return nil, err
	}
	if run.LPMetrics, err = s.metricsFor(log, string(domain.ClassLP), ledger.Series(domain.ClassLP), assumptions.LPCapital); err != nil {
		return nil, err
	}
	if run.GPMetrics, err = s.metricsFor(log, string(domain.ClassGP), ledger.Series(domain.ClassGP), assumptions.GPCapital); err != nil {
		return nil, err
	}

	fees := decimal.Zero
	for _, entry := range series {
		fees = fees.Add(entry.ManagementFee)
	}
	run.GPFeesAndPromote = fees.Add(ledger.GP.ProfitDistributed)

	log.WithFields(logrus.Fields{
		"properties": len(projections),
		"periods":    run.Periods(),
	}).Debug("projection complete")

	return run, nil
}

// GetRun retrieves a stored run
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*domain.ProjectionRun, error) {
	if s.RunRepo == nil {
		return nil, fmt.Errorf("fund service: no run repository configured")
	}
	return s.RunRepo.GetByID(ctx, id)
}

// ListRuns retrieves stored run headers, newest first
func (s *Service) ListRuns(ctx context.Context, limit, offset int) ([]*domain.ProjectionRun, error) {
	if s.RunRepo == nil {
		return nil, fmt.Errorf("fund service: no run repository configured")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.RunRepo.List(ctx, limit, offset)
}

func (s *Service) resolveAssumptions(ctx context.Context, input RunInput) (*domain.AssumptionSet, error) {
	if input.Assumptions != nil {
		return input.Assumptions, nil
	}
	if input.Preset == "" {
		return nil, domain.NewValidationError("run", "assumptions", "none", "set assumptions or a preset")
	}
	if s.PresetRepo == nil {
		return nil, fmt.Errorf("preset %q: no preset repository configured", input.Preset)
	}

	preset, err := s.PresetRepo.GetByName(ctx, input.Preset)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", input.Preset, err)
	}
	assumptions := preset.Assumptions
	return &assumptions, nil
}

// metricsFor skips classes without capital; an unsolved IRR is logged, not returned
func (s *Service) metricsFor(log *logrus.Entry, entity string, series []decimal.Decimal, outlay decimal.Decimal) (domain.ReturnMetrics, error) {
	if !outlay.IsPositive() {
		return domain.ReturnMetrics{}, nil
	}
	result, err := metrics.Compute(series, outlay)
	if err != nil {
		return domain.ReturnMetrics{}, fmt.Errorf("%s metrics: %w", entity, err)
	}
	if result.IRRError != nil {
		log.WithField("entity", entity).WithError(result.IRRError).Warn("IRR undefined")
	}
	return result, nil
}
