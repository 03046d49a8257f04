package portfolio

import (
	"context"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/cashflow"
)

// ProjectAll runs cashflow.Project for every archetype concurrently, each over the
// hold of its own assumption set. Results are written into their own slot, so the
// output keeps the input order.
// The first invalid property cancels the rest and its error is returned.
func ProjectAll(ctx context.Context, archetypes []domain.PropertyArchetype) ([]domain.PropertyProjection, error) {
	projections := make([]domain.PropertyProjection, len(archetypes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range archetypes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := cashflow.Project(archetypes[i], holdOf(archetypes[i]))
			if err != nil {
				return err
			}
			projections[i] = domain.PropertyProjection{
				Archetype: archetypes[i],
				Entries:   entries,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return projections, nil
}

// holdOf returns 0 for a missing assumption set; Project rejects the archetype first
func holdOf(archetype domain.PropertyArchetype) int {
	if archetype.Assumptions == nil {
		return 0
	}
	return archetype.Assumptions.HoldPeriods
}

// Aggregate sums property projections into the portfolio-level stream.
// Logic:
//  1. A property's period t lands on portfolio period AcquisitionPeriod + t;
//     earlier periods get nothing from it
//  2. Each property counts Count times (identical assets)
//  3. The management fee, feeRate x committedCapital, is deducted from every period
//     before the waterfall sees the cash
//
// The output has max(AcquisitionPeriod + hold) periods.
func Aggregate(projections []domain.PropertyProjection, committedCapital, feeRate decimal.Decimal) ([]domain.PortfolioCashFlowEntry, error) {
	if len(projections) == 0 {
		return nil, domain.NewValidationError("portfolio", "properties", 0, "must not be empty")
	}
	if committedCapital.IsNegative() {
		return nil, domain.NewValidationError("portfolio", "committed_capital", committedCapital, "must not be negative")
	}
	if feeRate.IsNegative() || feeRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, domain.NewValidationError("portfolio", "management_fee_rate", feeRate, "must be between 0 and 1")
	}

	periods := 0
	for _, p := range projections {
		if p.Archetype.AcquisitionPeriod < 0 {
			return nil, domain.NewValidationError(p.Archetype.Label(), "acquisition_period", p.Archetype.AcquisitionPeriod, "must not be negative")
		}
		if end := p.Archetype.AcquisitionPeriod + len(p.Entries); end > periods {
			periods = end
		}
	}

	fee := committedCapital.Mul(feeRate)
	portfolio := make([]domain.PortfolioCashFlowEntry, periods)
	for i := range portfolio {
		portfolio[i].Period = i + 1
		portfolio[i].ManagementFee = fee
	}

	for _, p := range projections {
		weight := decimal.NewFromInt(int64(p.Archetype.Weight()))
		offset := p.Archetype.AcquisitionPeriod

		for t, entry := range p.Entries {
			slot := &portfolio[offset+t]
			slot.OperatingCashFlow = slot.OperatingCashFlow.Add(entry.NetCashFlow.Mul(weight))
			slot.PropertyValue = slot.PropertyValue.Add(entry.PropertyValue.Mul(weight))
			slot.DispositionValue = slot.DispositionValue.Add(entry.DispositionValue.Mul(weight))
		}
	}

	for i := range portfolio {
		portfolio[i].NetCashFlow = portfolio[i].OperatingCashFlow.Sub(portfolio[i].ManagementFee)
	}

	return portfolio, nil
}

// TotalCost returns the sum of purchase prices, weighted by Count
func TotalCost(projections []domain.PropertyProjection) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projections {
		total = total.Add(p.Archetype.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Archetype.Weight()))))
	}
	return total
}

// TotalEquity returns the sum of property equity (price - loan), weighted by Count
func TotalEquity(projections []domain.PropertyProjection) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projections {
		total = total.Add(p.Archetype.Equity().Mul(decimal.NewFromInt(int64(p.Archetype.Weight()))))
	}
	return total
}

// NetSeries extracts the distributable cash per period
func NetSeries(portfolio []domain.PortfolioCashFlowEntry) []decimal.Decimal {
	series := make([]decimal.Decimal, len(portfolio))
	for i, entry := range portfolio {
		series[i] = entry.NetCashFlow
	}
	return series
}
