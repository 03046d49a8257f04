package domain

import (
	"github.com/shopspring/decimal"
)

// CapitalClass is one of the two classes of fund capital
type CapitalClass string

const (
	ClassLP CapitalClass = "LP"
	ClassGP CapitalClass = "GP"
)

// Tier labels a waterfall step
type Tier string

const (
	TierCapitalCall     Tier = "capital_call"
	TierPreferred       Tier = "preferred"
	TierReturnOfCapital Tier = "return_of_capital"
	TierCatchUp         Tier = "catch_up"
	TierResidual        Tier = "residual"
)

// CapitalAccount tracks one capital class as of a period.
// Only the waterfall advances it, strictly forward; there is no clawback.
type CapitalAccount struct {
	Class             CapitalClass
	Contributed       decimal.Decimal // initial capital plus capital calls
	UnreturnedCapital decimal.Decimal // initial capital not yet returned
	PreferredAccrued  decimal.Decimal // accrued but unpaid
	PreferredPaid     decimal.Decimal
	CapitalReturned   decimal.Decimal
	ProfitDistributed decimal.Decimal // preferred + catch-up + residual, never capital
}

// DistributionEntry is one funded tier of one period.
// Amounts are negative for capital calls.
type DistributionEntry struct {
	Period int
	LP     decimal.Decimal
	GP     decimal.Decimal
	Tier   Tier
}

// Total returns LP + GP
func (e DistributionEntry) Total() decimal.Decimal {
	return e.LP.Add(e.GP)
}

// AccountSnapshot records both capital accounts at the close of a period
type AccountSnapshot struct {
	Period int
	LP     CapitalAccount
	GP     CapitalAccount
}
