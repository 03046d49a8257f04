package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyProjection pairs an archetype with its computed cash-flow series
type PropertyProjection struct {
	Archetype PropertyArchetype
	Entries   []PropertyCashFlowEntry
}

// ProjectionRun is the full output of one pipeline run, as handed to reporting and storage
type ProjectionRun struct {
	ID          uuid.UUID
	Name        string
	CreatedAt   time.Time
	Assumptions AssumptionSet
	Properties  []PropertyProjection
	Portfolio   []PortfolioCashFlowEntry
	Ledger      []DistributionEntry
	Accounts    []AccountSnapshot

	FundMetrics ReturnMetrics
	LPMetrics   ReturnMetrics
	GPMetrics   ReturnMetrics

	TotalCost        decimal.Decimal // sum of purchase prices
	TotalEquity      decimal.Decimal // sum of property equity (price - loan)
	GPFeesAndPromote decimal.Decimal // management fees + GP distributions over the hold
}

// Periods returns the number of portfolio periods in the run
func (r *ProjectionRun) Periods() int {
	return len(r.Portfolio)
}
