// Package scenario reads projection requests from YAML files.
package scenario

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/fund"
)

// Document is the on-disk layout of a scenario file
type Document struct {
	Name        string       `yaml:"name"`
	Preset      string       `yaml:"preset"`
	Assumptions *Assumptions `yaml:"assumptions"`
	Properties  []Property   `yaml:"properties"`
}

// Assumptions mirrors domain.AssumptionSet; unset keys are left to the base set
type Assumptions struct {
	VacancyRate         *decimal.Decimal `yaml:"vacancy_rate"`
	MaintenanceRatio    *decimal.Decimal `yaml:"maintenance_ratio"`
	ManagementRatio     *decimal.Decimal `yaml:"management_ratio"`
	InsuranceRate       *decimal.Decimal `yaml:"insurance_rate"`
	RentGrowth          *decimal.Decimal `yaml:"rent_growth"`
	Appreciation        *decimal.Decimal `yaml:"appreciation"`
	ExpenseGrowth       *decimal.Decimal `yaml:"expense_growth"`
	DispositionCostRate *decimal.Decimal `yaml:"disposition_cost_rate"`
	LTV                 *decimal.Decimal `yaml:"ltv"`
	InterestRate        *decimal.Decimal `yaml:"interest_rate"`
	AmortizationPeriods *int             `yaml:"amortization_periods"`
	PaymentsPerPeriod   *int             `yaml:"payments_per_period"`
	HoldPeriods         *int             `yaml:"hold_periods"`
	ManagementFeeRate   *decimal.Decimal `yaml:"management_fee_rate"`
	PreferredRate       *decimal.Decimal `yaml:"preferred_rate"`
	PromoteRate         *decimal.Decimal `yaml:"promote_rate"`
	CatchUp             *string          `yaml:"catch_up"`
	LPCapital           *decimal.Decimal `yaml:"lp_capital"`
	GPCapital           *decimal.Decimal `yaml:"gp_capital"`
}

// Property is one archetype entry of a scenario
type Property struct {
	ID                    string          `yaml:"id"`
	Name                  string          `yaml:"name"`
	PurchasePrice         decimal.Decimal `yaml:"purchase_price"`
	StartingRent          decimal.Decimal `yaml:"starting_rent"`
	Units                 int             `yaml:"units"`
	RentPaymentsPerPeriod int             `yaml:"rent_payments_per_period"`
	Count                 int             `yaml:"count"`
	AcquisitionPeriod     int             `yaml:"acquisition_period"`
	Assumptions           *Assumptions    `yaml:"assumptions"`
}

// Load reads and converts a scenario file
func Load(path string) (fund.RunInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fund.RunInput{}, fmt.Errorf("read scenario: %w", err)
	}
	input, err := Parse(data)
	if err != nil {
		return fund.RunInput{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return input, nil
}

// Parse converts scenario YAML into a run request.
// Unknown keys are rejected. Property-level assumptions override the scenario set
// key by key, so they need scenario-level assumptions to start from. A property may
// change its own hold but not the fee, waterfall or capital terms of the fund.
func Parse(data []byte) (fund.RunInput, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return fund.RunInput{}, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.RunInput()
}

// RunInput converts the document
func (doc Document) RunInput() (fund.RunInput, error) {
	input := fund.RunInput{
		Name:   doc.Name,
		Preset: doc.Preset,
	}

	var base *domain.AssumptionSet
	if doc.Assumptions != nil {
		set := doc.Assumptions.Apply(domain.AssumptionSet{})
		base = &set
		input.Assumptions = base
	}

	input.Properties = make([]domain.PropertyArchetype, 0, len(doc.Properties))
	for i, p := range doc.Properties {
		archetype := domain.PropertyArchetype{
			Name:                  p.Name,
			PurchasePrice:         p.PurchasePrice,
			StartingRent:          p.StartingRent,
			Units:                 p.Units,
			RentPaymentsPerPeriod: p.RentPaymentsPerPeriod,
			Count:                 p.Count,
			AcquisitionPeriod:     p.AcquisitionPeriod,
		}

		if p.ID != "" {
			id, err := uuid.Parse(p.ID)
			if err != nil {
				return fund.RunInput{}, domain.NewValidationError(propertyLabel(p, i), "id", p.ID, "is not a UUID")
			}
			archetype.ID = id
		}

		if p.Assumptions != nil {
			if base == nil {
				return fund.RunInput{}, domain.NewValidationError(propertyLabel(p, i), "assumptions", "override", "needs scenario-level assumptions to override")
			}
			if key := p.Assumptions.fundLevelKey(); key != "" {
				return fund.RunInput{}, domain.NewValidationError(propertyLabel(p, i), key, "override", "is a fund-level term and cannot be set per property")
			}
			set := p.Assumptions.Apply(*base)
			archetype.Assumptions = &set
		}

		input.Properties = append(input.Properties, archetype)
	}

	return input, nil
}

// Apply returns base with every key set in a overriding it
func (a Assumptions) Apply(base domain.AssumptionSet) domain.AssumptionSet {
	out := base
	setDecimal(&out.VacancyRate, a.VacancyRate)
	setDecimal(&out.MaintenanceRatio, a.MaintenanceRatio)
	setDecimal(&out.ManagementRatio, a.ManagementRatio)
	setDecimal(&out.InsuranceRate, a.InsuranceRate)
	setDecimal(&out.RentGrowth, a.RentGrowth)
	setDecimal(&out.Appreciation, a.Appreciation)
	setDecimal(&out.ExpenseGrowth, a.ExpenseGrowth)
	setDecimal(&out.DispositionCostRate, a.DispositionCostRate)
	setDecimal(&out.LTV, a.LTV)
	setDecimal(&out.InterestRate, a.InterestRate)
	setInt(&out.AmortizationPeriods, a.AmortizationPeriods)
	setInt(&out.PaymentsPerPeriod, a.PaymentsPerPeriod)
	setInt(&out.HoldPeriods, a.HoldPeriods)
	setDecimal(&out.ManagementFeeRate, a.ManagementFeeRate)
	setDecimal(&out.PreferredRate, a.PreferredRate)
	setDecimal(&out.PromoteRate, a.PromoteRate)
	setDecimal(&out.LPCapital, a.LPCapital)
	setDecimal(&out.GPCapital, a.GPCapital)
	if a.CatchUp != nil {
		out.CatchUp = domain.CatchUpBasis(*a.CatchUp)
	}
	return out
}

// fundLevelKey returns the first key set that only the scenario level may carry
func (a Assumptions) fundLevelKey() string {
	switch {
	case a.ManagementFeeRate != nil:
		return "management_fee_rate"
	case a.PreferredRate != nil:
		return "preferred_rate"
	case a.PromoteRate != nil:
		return "promote_rate"
	case a.CatchUp != nil:
		return "catch_up"
	case a.LPCapital != nil:
		return "lp_capital"
	case a.GPCapital != nil:
		return "gp_capital"
	}
	return ""
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func propertyLabel(p Property, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("property #%d", i+1)
}
