package amortization

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Scale is the number of decimal places kept by compounding steps
const Scale = 20

// Option configures Schedule and Payment
type Option func(*options)

type options struct {
	paymentsPerPeriod int
}

// WithPaymentsPerPeriod sets a sub-annual compounding convention: k payments per
// period at annualRate/k. Each schedule entry still covers one whole period.
// Zero means one payment per period; negative values are rejected.
func WithPaymentsPerPeriod(k int) Option {
	return func(o *options) {
		o.paymentsPerPeriod = k
	}
}

// Payment returns the constant annuity payment (per payment, not per period)
func Payment(principal, annualRate decimal.Decimal, termPeriods int, opts ...Option) (decimal.Decimal, error) {
	cfg, err := newOptions(principal, annualRate, termPeriods, opts)
	if err != nil {
		return decimal.Zero, err
	}
	rate, n := cfg.perPayment(annualRate, termPeriods)
	return annuityPayment(principal, rate, n), nil
}

// Schedule computes a constant-payment (annuity) schedule with one entry per period.
// Logic:
//  1. payment = principal x r / (1 - (1+r)^-n), r = annualRate / k, n = termPeriods x k
//  2. Each payment splits into interest on the opening balance and principal
//  3. The very last payment repays whatever balance is left, so principal portions
//     sum to the original principal and the final closing balance is exactly zero
//
// The result is a pure function of its inputs.
func Schedule(principal, annualRate decimal.Decimal, termPeriods int, opts ...Option) ([]domain.AmortizationEntry, error) {
	cfg, err := newOptions(principal, annualRate, termPeriods, opts)
	if err != nil {
		return nil, err
	}

	rate, n := cfg.perPayment(annualRate, termPeriods)
	payment := annuityPayment(principal, rate, n)
	k := cfg.paymentsPerPeriod

	schedule := make([]domain.AmortizationEntry, 0, termPeriods)
	balance := principal

	for period := 1; period <= termPeriods; period++ {
		entry := domain.AmortizationEntry{
			Period:         period,
			OpeningBalance: balance,
		}

		for i := 0; i < k; i++ {
			interest := balance.Mul(rate).Round(Scale)
			principalPortion := payment.Sub(interest)
			if period == termPeriods && i == k-1 {
				principalPortion = balance
			}
			entry.Interest = entry.Interest.Add(interest)
			entry.Principal = entry.Principal.Add(principalPortion)
			balance = balance.Sub(principalPortion)
		}

		entry.ClosingBalance = balance
		schedule = append(schedule, entry)
	}

	return schedule, nil
}

// BalanceAfter returns the closing balance once period has been paid.
// Period 0 (or earlier) is the original principal; past the term it is zero.
func BalanceAfter(schedule []domain.AmortizationEntry, period int) decimal.Decimal {
	if len(schedule) == 0 {
		return decimal.Zero
	}
	if period <= 0 {
		return schedule[0].OpeningBalance
	}
	if period > len(schedule) {
		return decimal.Zero
	}
	return schedule[period-1].ClosingBalance
}

// Compound returns (1+rate)^n for n >= 0, rounding each step to Scale places
func Compound(rate decimal.Decimal, n int) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	growth := factor.Add(rate)
	for i := 0; i < n; i++ {
		factor = factor.Mul(growth).Round(Scale)
	}
	return factor
}

func annuityPayment(principal, rate decimal.Decimal, n int) decimal.Decimal {
	if rate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	// P x r x f / (f - 1) with f = (1+r)^n is the same annuity without the negative power
	f := Compound(rate, n)
	return principal.Mul(rate).Mul(f).Div(f.Sub(decimal.NewFromInt(1)))
}

func newOptions(principal, annualRate decimal.Decimal, termPeriods int, opts []Option) (*options, error) {
	cfg := &options{paymentsPerPeriod: 1}
	for _, opt := range opts {
		opt(cfg)
	}

	if !principal.IsPositive() {
		return nil, domain.NewValidationError("loan", "principal", principal, "must be positive")
	}
	if annualRate.IsNegative() {
		return nil, domain.NewValidationError("loan", "annual_rate", annualRate, "must not be negative")
	}
	if termPeriods <= 0 {
		return nil, domain.NewValidationError("loan", "term_periods", termPeriods, "must be positive")
	}
	if cfg.paymentsPerPeriod < 0 {
		return nil, domain.NewValidationError("loan", "payments_per_period", cfg.paymentsPerPeriod, "must not be negative")
	}
	if cfg.paymentsPerPeriod == 0 {
		cfg.paymentsPerPeriod = 1
	}

	return cfg, nil
}

func (o *options) perPayment(annualRate decimal.Decimal, termPeriods int) (decimal.Decimal, int) {
	k := o.paymentsPerPeriod
	return annualRate.Div(decimal.NewFromInt(int64(k))), termPeriods * k
}
