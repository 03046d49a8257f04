package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyArchetype represents one acquired asset (or Count identical assets)
type PropertyArchetype struct {
	ID                    uuid.UUID
	Name                  string
	PurchasePrice         decimal.Decimal
	StartingRent          decimal.Decimal // per unit, per rent collection
	Units                 int             // rent-paying units, 0 means 1
	RentPaymentsPerPeriod int             // rent collections per period, 0 means 1 (12 for monthly rent)
	Count                 int             // identical assets bought, 0 means 1
	AcquisitionPeriod     int             // 0 = owned from the first portfolio period
	Assumptions           *AssumptionSet
}

// Label identifies the property in errors and logs
func (p *PropertyArchetype) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID.String()
}

// Weight returns the number of identical assets this archetype stands for
func (p *PropertyArchetype) Weight() int {
	return atLeastOne(p.Count)
}

// PeriodRent returns the gross rent of the first operating period
func (p *PropertyArchetype) PeriodRent() decimal.Decimal {
	units := decimal.NewFromInt(int64(atLeastOne(p.Units)))
	collections := decimal.NewFromInt(int64(atLeastOne(p.RentPaymentsPerPeriod)))
	return p.StartingRent.Mul(units).Mul(collections)
}

// LoanAmount returns the financed amount: price x LTV
func (p *PropertyArchetype) LoanAmount() decimal.Decimal {
	if p.Assumptions == nil {
		return decimal.Zero
	}
	return p.PurchasePrice.Mul(p.Assumptions.LTV)
}

// Equity returns the equity needed for one asset: price - loan
func (p *PropertyArchetype) Equity() decimal.Decimal {
	return p.PurchasePrice.Sub(p.LoanAmount())
}

// Validate ensures the archetype adheres to domain rules, including its assumption set
func (p *PropertyArchetype) Validate() error {
	entity := p.Label()

	if p.Assumptions == nil {
		return NewValidationError(entity, "assumptions", "<nil>", "must be set")
	}
	if err := p.Assumptions.validate(entity); err != nil {
		return err
	}

	if !p.PurchasePrice.IsPositive() {
		return NewValidationError(entity, "purchase_price", p.PurchasePrice, "must be positive")
	}
	if !p.StartingRent.IsPositive() {
		return NewValidationError(entity, "starting_rent", p.StartingRent, "must be positive")
	}
	if p.AcquisitionPeriod < 0 {
		return NewValidationError(entity, "acquisition_period", p.AcquisitionPeriod, "must not be negative")
	}
	if p.Units < 0 {
		return NewValidationError(entity, "units", p.Units, "must not be negative")
	}
	if p.RentPaymentsPerPeriod < 0 {
		return NewValidationError(entity, "rent_payments_per_period", p.RentPaymentsPerPeriod, "must not be negative")
	}
	if p.Count < 0 {
		return NewValidationError(entity, "count", p.Count, "must not be negative")
	}

	// Financed amount can never exceed the price
	if p.LoanAmount().GreaterThan(p.PurchasePrice) {
		return NewValidationError(entity, "ltv", p.Assumptions.LTV, "finances more than the purchase price")
	}

	return nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
