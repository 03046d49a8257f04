package domain

import (
	"github.com/shopspring/decimal"
)

// CatchUpBasis selects how the GP catch-up target is measured
type CatchUpBasis string

const (
	CatchUpProfitToDate    CatchUpBasis = "profit_to_date"    // promote x all profit distributed so far
	CatchUpProfitAbovePref CatchUpBasis = "profit_above_pref" // promote x profit excluding the LP preferred tier
	CatchUpNone            CatchUpBasis = "none"              // straight to the residual split
)

// AssumptionSet holds the macro parameters applied uniformly to every property of a run.
// All rates are per period (annual). Ratios are fractions, not percentages.
type AssumptionSet struct {
	VacancyRate         decimal.Decimal `json:"vacancy_rate"`
	MaintenanceRatio    decimal.Decimal `json:"maintenance_ratio"`
	ManagementRatio     decimal.Decimal `json:"management_ratio"`
	InsuranceRate       decimal.Decimal `json:"insurance_rate"` // of property value
	RentGrowth          decimal.Decimal `json:"rent_growth"`
	Appreciation        decimal.Decimal `json:"appreciation"`
	ExpenseGrowth       decimal.Decimal `json:"expense_growth"` // non-ratio expense components only
	DispositionCostRate decimal.Decimal `json:"disposition_cost_rate"`
	LTV                 decimal.Decimal `json:"ltv"`
	InterestRate        decimal.Decimal `json:"interest_rate"` // nominal annual
	AmortizationPeriods int             `json:"amortization_periods"`
	PaymentsPerPeriod   int             `json:"payments_per_period"` // 0 or 1 = one annuity payment per period
	HoldPeriods         int             `json:"hold_periods"`
	ManagementFeeRate   decimal.Decimal `json:"management_fee_rate"` // of committed LP+GP capital
	PreferredRate       decimal.Decimal `json:"preferred_rate"`
	PromoteRate         decimal.Decimal `json:"promote_rate"`
	CatchUp             CatchUpBasis    `json:"catch_up,omitempty"`
	LPCapital           decimal.Decimal `json:"lp_capital"`
	GPCapital           decimal.Decimal `json:"gp_capital"`
}

// CommittedCapital returns LP + GP capital
func (a *AssumptionSet) CommittedCapital() decimal.Decimal {
	return a.LPCapital.Add(a.GPCapital)
}

// FundTermMismatch returns the first fund-level term (fee, waterfall, capital) on which a
// and other disagree. Those terms apply to the whole run, so a property cannot change them.
func (a *AssumptionSet) FundTermMismatch(other *AssumptionSet) (string, bool) {
	terms := []struct {
		field string
		a, b  decimal.Decimal
	}{
		{"management_fee_rate", a.ManagementFeeRate, other.ManagementFeeRate},
		{"preferred_rate", a.PreferredRate, other.PreferredRate},
		{"promote_rate", a.PromoteRate, other.PromoteRate},
		{"lp_capital", a.LPCapital, other.LPCapital},
		{"gp_capital", a.GPCapital, other.GPCapital},
	}
	for _, t := range terms {
		if !t.a.Equal(t.b) {
			return t.field, true
		}
	}
	if a.catchUpBasis() != other.catchUpBasis() {
		return "catch_up", true
	}
	return "", false
}

// catchUpBasis resolves the empty default
func (a *AssumptionSet) catchUpBasis() CatchUpBasis {
	if a.CatchUp == "" {
		return CatchUpProfitToDate
	}
	return a.CatchUp
}

// Validate ensures the assumption set adheres to domain rules.
// Values are never clamped: the first offending field is returned as a *ValidationError.
func (a *AssumptionSet) Validate() error {
	return a.validate("assumptions")
}

func (a *AssumptionSet) validate(entity string) error {
	ratios := []struct {
		field string
		value decimal.Decimal
	}{
		{"vacancy_rate", a.VacancyRate},
		{"maintenance_ratio", a.MaintenanceRatio},
		{"management_ratio", a.ManagementRatio},
		{"insurance_rate", a.InsuranceRate},
		{"disposition_cost_rate", a.DispositionCostRate},
		{"ltv", a.LTV},
		{"interest_rate", a.InterestRate},
		{"management_fee_rate", a.ManagementFeeRate},
	}
	for _, r := range ratios {
		if err := checkUnitInterval(entity, r.field, r.value); err != nil {
			return err
		}
	}

	// Growth rates may be negative (a shrinking market) but never wipe out the base.
	growth := []struct {
		field string
		value decimal.Decimal
	}{
		{"rent_growth", a.RentGrowth},
		{"appreciation", a.Appreciation},
		{"expense_growth", a.ExpenseGrowth},
	}
	for _, g := range growth {
		if g.value.LessThanOrEqual(decimal.NewFromInt(-1)) || g.value.GreaterThan(decimal.NewFromInt(1)) {
			return NewValidationError(entity, g.field, g.value, "must be greater than -1 and at most 1")
		}
	}

	if err := CheckDistributionRate(entity, "preferred_rate", a.PreferredRate); err != nil {
		return err
	}
	if err := CheckDistributionRate(entity, "promote_rate", a.PromoteRate); err != nil {
		return err
	}

	if a.AmortizationPeriods <= 0 {
		return NewValidationError(entity, "amortization_periods", a.AmortizationPeriods, "must be positive")
	}
	if a.HoldPeriods <= 0 {
		return NewValidationError(entity, "hold_periods", a.HoldPeriods, "must be positive")
	}
	if a.PaymentsPerPeriod < 0 {
		return NewValidationError(entity, "payments_per_period", a.PaymentsPerPeriod, "must not be negative")
	}

	switch a.CatchUp {
	case "", CatchUpProfitToDate, CatchUpProfitAbovePref, CatchUpNone:
	default:
		return NewValidationError(entity, "catch_up", a.CatchUp, "must be profit_to_date, profit_above_pref or none")
	}

	if a.LPCapital.IsNegative() {
		return NewValidationError(entity, "lp_capital", a.LPCapital, "must not be negative")
	}
	if a.GPCapital.IsNegative() {
		return NewValidationError(entity, "gp_capital", a.GPCapital, "must not be negative")
	}
	if !a.CommittedCapital().IsPositive() {
		return NewValidationError(entity, "lp_capital+gp_capital", a.CommittedCapital(), "must be positive")
	}

	return nil
}

// CheckDistributionRate rejects preferred and promote rates outside [0,1)
func CheckDistributionRate(entity, field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return NewValidationError(entity, field, v, "must be in [0,1)")
	}
	return nil
}

func checkUnitInterval(entity, field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError(entity, field, v, "must be between 0 and 1")
	}
	return nil
}
