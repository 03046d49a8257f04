package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
	"github.com/simaogato/fundflow-backend/internal/usecase/amortization"
)

// Project computes the per-period cash flows of one property over holdPeriods.
// Logic:
//  1. Rent starts at the archetype's period rent and grows by RentGrowth each period;
//     effective rent removes vacancy
//  2. Property value starts at the purchase price and compounds by Appreciation
//  3. Expenses = effective rent x (maintenance + management) + insurance, where insurance is
//     priced on property value and is the only component scaled by ExpenseGrowth
//  4. Debt service comes from the amortization schedule of price x LTV
//  5. The final period adds the disposition value (net sale minus remaining loan) once
func Project(archetype domain.PropertyArchetype, holdPeriods int) ([]domain.PropertyCashFlowEntry, error) {
	if err := archetype.Validate(); err != nil {
		return nil, err
	}
	if holdPeriods <= 0 {
		return nil, domain.NewValidationError(archetype.Label(), "hold_periods", holdPeriods, "must be positive")
	}

	a := archetype.Assumptions
	one := decimal.NewFromInt(1)

	loan, err := loanSchedule(archetype)
	if err != nil {
		return nil, err
	}

	rentGrowth := one.Add(a.RentGrowth)
	appreciation := one.Add(a.Appreciation)
	expenseGrowth := one.Add(a.ExpenseGrowth)
	ratioExpenses := a.MaintenanceRatio.Add(a.ManagementRatio)
	keptAfterVacancy := one.Sub(a.VacancyRate)

	rent := archetype.PeriodRent()
	value := archetype.PurchasePrice
	fixedCostIndex := one

	entries := make([]domain.PropertyCashFlowEntry, 0, holdPeriods)
	for period := 1; period <= holdPeriods; period++ {
		if period > 1 {
			rent = rent.Mul(rentGrowth).Round(amortization.Scale)
			value = value.Mul(appreciation).Round(amortization.Scale)
			fixedCostIndex = fixedCostIndex.Mul(expenseGrowth).Round(amortization.Scale)
		}

		effective := rent.Mul(keptAfterVacancy)
		insurance := value.Mul(a.InsuranceRate).Mul(fixedCostIndex)
		expenses := effective.Mul(ratioExpenses).Add(insurance)
		noi := effective.Sub(expenses)

		debtService := decimal.Zero
		if period <= len(loan) {
			debtService = loan[period-1].Payment()
		}
		balance := amortization.BalanceAfter(loan, period)

		entry := domain.PropertyCashFlowEntry{
			Period:            period,
			GrossRent:         rent,
			EffectiveRent:     effective,
			OperatingExpenses: expenses,
			NOI:               noi,
			DebtService:       debtService,
			NetCashFlow:       noi.Sub(debtService),
			PropertyValue:     value,
			LoanBalance:       balance,
		}

		// Sale at the end of the hold: counted once, on top of this period's operations
		if period == holdPeriods {
			entry.DispositionValue = DispositionValue(value, a.DispositionCostRate, balance)
			entry.NetCashFlow = entry.NetCashFlow.Add(entry.DispositionValue)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// DispositionValue returns value x (1 - costRate) - remaining loan balance
func DispositionValue(value, costRate, loanBalance decimal.Decimal) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(1).Sub(costRate)).Sub(loanBalance)
}

// loanSchedule returns nil for an all-equity purchase
func loanSchedule(archetype domain.PropertyArchetype) ([]domain.AmortizationEntry, error) {
	principal := archetype.LoanAmount()
	if principal.IsZero() {
		return nil, nil
	}

	a := archetype.Assumptions
	schedule, err := amortization.Schedule(principal, a.InterestRate, a.AmortizationPeriods,
		amortization.WithPaymentsPerPeriod(a.PaymentsPerPeriod))
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", archetype.Label(), err)
	}
	return schedule, nil
}
