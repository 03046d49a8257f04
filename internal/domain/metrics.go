package domain

import (
	"github.com/shopspring/decimal"
)

// ReturnMetrics summarises one entity's (LP, GP or whole fund) cash-flow series.
// IRR is nil when it is undefined; IRRError then holds an ErrNoConvergence.
type ReturnMetrics struct {
	IRR              *decimal.Decimal
	IRRError         error
	EquityMultiple   decimal.Decimal
	CashOnCash       decimal.Decimal
	TotalDistributed decimal.Decimal // sum of positive receipts
	InitialOutlay    decimal.Decimal
}

// HasIRR reports whether the IRR could be solved
func (m ReturnMetrics) HasIRR() bool {
	return m.IRR != nil
}
