package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// flows builds a projection with hand-written net cash flows and values
func flows(name string, acquisition, count int, nets ...string) domain.PropertyProjection {
	entries := make([]domain.PropertyCashFlowEntry, len(nets))
	for i, net := range nets {
		entries[i] = domain.PropertyCashFlowEntry{
			Period:        i + 1,
			NetCashFlow:   d(net),
			PropertyValue: d("1000"),
		}
	}
	return domain.PropertyProjection{
		Archetype: domain.PropertyArchetype{
			Name:              name,
			PurchasePrice:     d("1000"),
			AcquisitionPeriod: acquisition,
			Count:             count,
		},
		Entries: entries,
	}
}

func assumptions() *domain.AssumptionSet {
	return &domain.AssumptionSet{
		VacancyRate:         d("0.05"),
		MaintenanceRatio:    d("0.08"),
		ManagementRatio:     d("0.08"),
		InsuranceRate:       d("0.002"),
		RentGrowth:          d("0.02"),
		Appreciation:        d("0.025"),
		DispositionCostRate: d("0.01"),
		LTV:                 d("0.75"),
		InterestRate:        d("0.046"),
		AmortizationPeriods: 25,
		HoldPeriods:         5,
		ManagementFeeRate:   d("0.02"),
		PreferredRate:       d("0.08"),
		PromoteRate:         d("0.20"),
		LPCapital:           d("131250"),
		GPCapital:           d("43750"),
	}
}

func TestAggregate_SumsAlignedPeriodsExactly(t *testing.T) {
	a := flows("a", 0, 1, "100", "200", "300")
	b := flows("b", 1, 1, "10", "20", "30")

	portfolio, err := Aggregate([]domain.PropertyProjection{a, b}, decimal.Zero, decimal.Zero)

	require.NoError(t, err)
	// b is acquired one period later, so the series runs 4 periods
	require.Len(t, portfolio, 4)

	expected := []string{"100", "210", "320", "30"}
	for i, want := range expected {
		assert.Equal(t, i+1, portfolio[i].Period)
		assert.True(t, portfolio[i].NetCashFlow.Equal(d(want)), "period %d: got %s want %s", i+1, portfolio[i].NetCashFlow, want)
	}

	// Unacquired property contributes no value either
	assert.True(t, portfolio[0].PropertyValue.Equal(d("1000")))
	assert.True(t, portfolio[1].PropertyValue.Equal(d("2000")))
	assert.True(t, portfolio[3].PropertyValue.Equal(d("1000")))
}

func TestAggregate_EveryPropertyCountedOnce(t *testing.T) {
	projections := []domain.PropertyProjection{
		flows("a", 0, 1, "1.11", "-2.22", "3.33", "4.44", "5.55"),
		flows("b", 0, 1, "10.01", "20.02", "30.03", "40.04", "50.05"),
		flows("c", 2, 1, "7", "7", "7"),
	}

	portfolio, err := Aggregate(projections, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, portfolio, 5)

	for period := 1; period <= len(portfolio); period++ {
		want := decimal.Zero
		for _, p := range projections {
			local := period - p.Archetype.AcquisitionPeriod
			if local >= 1 && local <= len(p.Entries) {
				want = want.Add(p.Entries[local-1].NetCashFlow)
			}
		}
		assert.True(t, portfolio[period-1].NetCashFlow.Equal(want), "period %d", period)
	}

	total := decimal.Zero
	for _, entry := range portfolio {
		total = total.Add(entry.NetCashFlow)
	}
	assert.True(t, total.Equal(d("183.36")), "no contribution lost or duplicated, got %s", total)
}

func TestAggregate_CountWeightsIdenticalAssets(t *testing.T) {
	portfolio, err := Aggregate([]domain.PropertyProjection{flows("triplex", 0, 3, "50", "60")}, decimal.Zero, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, portfolio[0].NetCashFlow.Equal(d("150")))
	assert.True(t, portfolio[1].NetCashFlow.Equal(d("180")))
	assert.True(t, portfolio[1].PropertyValue.Equal(d("3000")))
}

func TestAggregate_ManagementFeeEveryPeriod(t *testing.T) {
	portfolio, err := Aggregate(
		[]domain.PropertyProjection{flows("a", 0, 1, "5000", "5000", "90000")},
		d("175000"),
		d("0.02"),
	)

	require.NoError(t, err)
	for _, entry := range portfolio {
		assert.True(t, entry.ManagementFee.Equal(d("3500")))
		assert.True(t, entry.NetCashFlow.Equal(entry.OperatingCashFlow.Sub(d("3500"))))
	}
	assert.True(t, portfolio[0].NetCashFlow.Equal(d("1500")))
	assert.True(t, portfolio[2].NetCashFlow.Equal(d("86500")))
}

func TestAggregate_InvalidInput(t *testing.T) {
	_, err := Aggregate(nil, decimal.Zero, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = Aggregate([]domain.PropertyProjection{flows("a", 0, 1, "1")}, decimal.Zero, d("1.5"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "management_fee_rate")

	_, err = Aggregate([]domain.PropertyProjection{flows("a", -1, 1, "1")}, decimal.Zero, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "acquisition_period")
}

func TestProjectAll_KeepsInputOrder(t *testing.T) {
	archetypes := make([]domain.PropertyArchetype, 0, 8)
	for i := 0; i < 8; i++ {
		archetypes = append(archetypes, domain.PropertyArchetype{
			Name:          string(rune('a' + i)),
			PurchasePrice: decimal.NewFromInt(int64(400000 + i*10000)),
			StartingRent:  d("2500"),
			Assumptions:   assumptions(),
		})
	}

	projections, err := ProjectAll(context.Background(), archetypes)

	require.NoError(t, err)
	require.Len(t, projections, len(archetypes))
	for i, p := range projections {
		assert.Equal(t, archetypes[i].Name, p.Archetype.Name)
		assert.Len(t, p.Entries, 5)
		assert.True(t, p.Entries[0].PropertyValue.Equal(archetypes[i].PurchasePrice))
	}
}

func TestProjectAll_FailsOnInvalidProperty(t *testing.T) {
	archetypes := []domain.PropertyArchetype{
		{Name: "good", PurchasePrice: d("500000"), StartingRent: d("3000"), Assumptions: assumptions()},
		{Name: "broken", PurchasePrice: decimal.Zero, StartingRent: d("3000"), Assumptions: assumptions()},
	}

	_, err := ProjectAll(context.Background(), archetypes)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "broken")
}

func TestProjectAll_EachPropertyUsesItsOwnHold(t *testing.T) {
	short := assumptions()
	long := assumptions()
	long.HoldPeriods = 9

	archetypes := []domain.PropertyArchetype{
		{Name: "short", PurchasePrice: d("500000"), StartingRent: d("30000"), Assumptions: short},
		{Name: "long", PurchasePrice: d("500000"), StartingRent: d("30000"), AcquisitionPeriod: 1, Assumptions: long},
	}

	projections, err := ProjectAll(context.Background(), archetypes)
	require.NoError(t, err)
	assert.Len(t, projections[0].Entries, 5)
	assert.Len(t, projections[1].Entries, 9)
	assert.False(t, projections[0].Entries[4].DispositionValue.IsZero(), "short hold sells in its own final period")
	assert.True(t, projections[1].Entries[4].DispositionValue.IsZero())

	// Portfolio runs to the latest sale: acquisition 1 + hold 9
	portfolio, err := Aggregate(projections, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Len(t, portfolio, 10)
	assert.True(t, portfolio[9].DispositionValue.Equal(projections[1].Entries[8].DispositionValue))
}

func TestTotals(t *testing.T) {
	a := assumptions()
	projections := []domain.PropertyProjection{
		{Archetype: domain.PropertyArchetype{PurchasePrice: d("700000"), Assumptions: a}},
		{Archetype: domain.PropertyArchetype{PurchasePrice: d("400000"), Count: 2, Assumptions: a}},
	}

	assert.True(t, TotalCost(projections).Equal(d("1500000")))
	assert.True(t, TotalEquity(projections).Equal(d("375000")))
}
