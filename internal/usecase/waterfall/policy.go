package waterfall

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// catchUpDust is the smallest catch-up amount worth a ledger line
const catchUpDust = 8

// CatchUpPolicy returns how much the GP is still owed in the catch-up tier,
// given both capital accounts as they stand and the promote rate.
type CatchUpPolicy func(lp, gp domain.CapitalAccount, promote decimal.Decimal) decimal.Decimal

// ProfitToDate catches the GP up to promote x every profit dollar distributed so far,
// LP preferred return included.
func ProfitToDate(lp, gp domain.CapitalAccount, promote decimal.Decimal) decimal.Decimal {
	return catchUpOwed(lp.ProfitDistributed, gp.ProfitDistributed, promote)
}

// ProfitAbovePref catches the GP up to promote x the profit distributed above the
// LP preferred return.
func ProfitAbovePref(lp, gp domain.CapitalAccount, promote decimal.Decimal) decimal.Decimal {
	return catchUpOwed(lp.ProfitDistributed.Sub(lp.PreferredPaid), gp.ProfitDistributed, promote)
}

// NoCatchUp skips the catch-up tier
func NoCatchUp(domain.CapitalAccount, domain.CapitalAccount, decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// ParseCatchUp maps a configured basis to its policy; empty means ProfitToDate
func ParseCatchUp(basis domain.CatchUpBasis) (CatchUpPolicy, error) {
	switch basis {
	case "", domain.CatchUpProfitToDate:
		return ProfitToDate, nil
	case domain.CatchUpProfitAbovePref:
		return ProfitAbovePref, nil
	case domain.CatchUpNone:
		return NoCatchUp, nil
	default:
		return nil, domain.NewValidationError("waterfall", "catch_up", basis, "is not a known catch-up basis")
	}
}

// catchUpOwed solves gp + x = promote x (lp + gp + x) for x:
// x = (promote x lp - (1 - promote) x gp) / (1 - promote)
func catchUpOwed(lpProfit, gpProfit, promote decimal.Decimal) decimal.Decimal {
	if !promote.IsPositive() {
		return decimal.Zero
	}
	keep := decimal.NewFromInt(1).Sub(promote)
	owed := promote.Mul(lpProfit).Sub(keep.Mul(gpProfit)).Div(keep).Truncate(catchUpDust)
	if !owed.IsPositive() {
		return decimal.Zero
	}
	return owed
}
