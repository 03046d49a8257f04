package metrics

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Compute summarises one entity's receipts against its initial outlay.
// series[i] is the net receipt of period i+1; the outlay is paid at period 0.
// An IRR that cannot be solved is reported in IRRError, not as the returned error.
func Compute(series []decimal.Decimal, initialOutlay decimal.Decimal) (domain.ReturnMetrics, error) {
	if !initialOutlay.IsPositive() {
		return domain.ReturnMetrics{}, domain.NewValidationError("metrics", "initial_outlay", initialOutlay, "must be positive")
	}
	if len(series) == 0 {
		return domain.ReturnMetrics{}, domain.NewValidationError("metrics", "series", 0, "needs at least one period")
	}

	distributed := decimal.Zero
	flows := make([]float64, 0, len(series)+1)
	flows = append(flows, initialOutlay.Neg().InexactFloat64())
	for _, receipt := range series {
		if receipt.IsPositive() {
			distributed = distributed.Add(receipt)
		}
		flows = append(flows, receipt.InexactFloat64())
	}

	result := domain.ReturnMetrics{
		EquityMultiple:   distributed.Div(initialOutlay),
		CashOnCash:       series[0].Div(initialOutlay),
		TotalDistributed: distributed,
		InitialOutlay:    initialOutlay,
	}

	rate, err := IRR(flows)
	if err != nil {
		result.IRRError = err
		return result, nil
	}
	irr := decimal.NewFromFloat(rate)
	result.IRR = &irr
	return result, nil
}
