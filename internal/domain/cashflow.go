package domain

import (
	"github.com/shopspring/decimal"
)

// AmortizationEntry is one period of a constant-payment loan schedule.
// ClosingBalance of period n equals OpeningBalance of period n+1.
type AmortizationEntry struct {
	Period         int
	OpeningBalance decimal.Decimal
	Interest       decimal.Decimal
	Principal      decimal.Decimal
	ClosingBalance decimal.Decimal
}

// Payment returns the debt service of the period: interest + principal
func (e AmortizationEntry) Payment() decimal.Decimal {
	return e.Interest.Add(e.Principal)
}

// PropertyCashFlowEntry is one period of a single property projection.
// Computed once, never mutated.
type PropertyCashFlowEntry struct {
	Period            int
	GrossRent         decimal.Decimal
	EffectiveRent     decimal.Decimal // after vacancy
	OperatingExpenses decimal.Decimal
	NOI               decimal.Decimal
	DebtService       decimal.Decimal
	NetCashFlow       decimal.Decimal // NOI - debt service (+ disposition on the final period)
	PropertyValue     decimal.Decimal
	DispositionValue  decimal.Decimal // non-zero on the final hold period only
	LoanBalance       decimal.Decimal // closing loan balance after the period
}

// PortfolioCashFlowEntry is one period of the portfolio-level stream fed to the waterfall
type PortfolioCashFlowEntry struct {
	Period            int
	OperatingCashFlow decimal.Decimal // sum of property net cash flows, before the fee
	ManagementFee     decimal.Decimal
	NetCashFlow       decimal.Decimal // distributable: operating cash flow - management fee
	PropertyValue     decimal.Decimal
	DispositionValue  decimal.Decimal // share of NetCashFlow coming from sales
}
