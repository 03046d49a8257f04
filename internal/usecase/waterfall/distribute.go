package waterfall

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Terms are the partnership terms applied by Distribute
type Terms struct {
	LPCapital     decimal.Decimal
	GPCapital     decimal.Decimal
	PreferredRate decimal.Decimal
	PromoteRate   decimal.Decimal
	CatchUp       CatchUpPolicy // nil means ProfitToDate
}

// TermsFor builds Terms from an assumption set
func TermsFor(a *domain.AssumptionSet) (Terms, error) {
	policy, err := ParseCatchUp(a.CatchUp)
	if err != nil {
		return Terms{}, err
	}
	return Terms{
		LPCapital:     a.LPCapital,
		GPCapital:     a.GPCapital,
		PreferredRate: a.PreferredRate,
		PromoteRate:   a.PromoteRate,
		CatchUp:       policy,
	}, nil
}

func (t Terms) validate() error {
	if err := domain.CheckDistributionRate("waterfall", "preferred_rate", t.PreferredRate); err != nil {
		return err
	}
	if err := domain.CheckDistributionRate("waterfall", "promote_rate", t.PromoteRate); err != nil {
		return err
	}
	if t.LPCapital.IsNegative() {
		return domain.NewValidationError("waterfall", "lp_capital", t.LPCapital, "must not be negative")
	}
	if t.GPCapital.IsNegative() {
		return domain.NewValidationError("waterfall", "gp_capital", t.GPCapital, "must not be negative")
	}
	if !t.LPCapital.Add(t.GPCapital).IsPositive() {
		return domain.NewValidationError("waterfall", "lp_capital", t.LPCapital, "LP and GP capital must sum to a positive amount")
	}
	return nil
}

func (t Terms) policy() CatchUpPolicy {
	if t.CatchUp == nil {
		return ProfitToDate
	}
	return t.CatchUp
}

// State is the pair of capital accounts carried from one period to the next
type State struct {
	LP domain.CapitalAccount
	GP domain.CapitalAccount
}

// NewState opens both accounts with their committed capital outstanding
func NewState(terms Terms) State {
	return State{
		LP: openAccount(domain.ClassLP, terms.LPCapital),
		GP: openAccount(domain.ClassGP, terms.GPCapital),
	}
}

func openAccount(class domain.CapitalClass, capital decimal.Decimal) domain.CapitalAccount {
	return domain.CapitalAccount{
		Class:             class,
		Contributed:       capital,
		UnreturnedCapital: capital,
		PreferredAccrued:  decimal.Zero,
		PreferredPaid:     decimal.Zero,
		CapitalReturned:   decimal.Zero,
		ProfitDistributed: decimal.Zero,
	}
}

// LPSatisfied reports whether the LP has no accrued preferred and no capital left to return
func (s State) LPSatisfied() bool {
	return !s.LP.PreferredAccrued.IsPositive() && !s.LP.UnreturnedCapital.IsPositive()
}

// Step distributes one period of cash and returns the next state with the funded tiers.
// The given state is not modified.
// Logic:
//  1. Accrue the LP preferred return on unreturned capital
//  2. Negative cash is a capital call split by the LP/GP capital ratio; nothing is distributed
//  3. Pay accrued preferred to the LP
//  4. Return LP capital
//  5. Once the LP is satisfied, pay the GP catch-up owed under the policy
//  6. Split what is left (1 - promote) to the LP and promote to the GP
//
// Safety: the tiers of a period always sum to cash exactly
func Step(state State, period int, cash decimal.Decimal, terms Terms) (State, []domain.DistributionEntry) {
	next := state
	var entries []domain.DistributionEntry

	next.LP.PreferredAccrued = next.LP.PreferredAccrued.Add(next.LP.UnreturnedCapital.Mul(terms.PreferredRate))

	if cash.IsNegative() {
		lp, gp := splitCall(cash, terms)
		next.LP.Contributed = next.LP.Contributed.Sub(lp)
		next.GP.Contributed = next.GP.Contributed.Sub(gp)
		return next, []domain.DistributionEntry{{Period: period, LP: lp, GP: gp, Tier: domain.TierCapitalCall}}
	}

	remaining := cash

	// Tier 1: preferred
	if pay := decimal.Min(remaining, next.LP.PreferredAccrued); pay.IsPositive() {
		next.LP.PreferredAccrued = next.LP.PreferredAccrued.Sub(pay)
		next.LP.PreferredPaid = next.LP.PreferredPaid.Add(pay)
		next.LP.ProfitDistributed = next.LP.ProfitDistributed.Add(pay)
		remaining = remaining.Sub(pay)
		entries = append(entries, lpOnly(period, pay, domain.TierPreferred))
	}

	// Tier 2: return of capital
	if pay := decimal.Min(remaining, next.LP.UnreturnedCapital); pay.IsPositive() {
		next.LP.UnreturnedCapital = next.LP.UnreturnedCapital.Sub(pay)
		next.LP.CapitalReturned = next.LP.CapitalReturned.Add(pay)
		remaining = remaining.Sub(pay)
		entries = append(entries, lpOnly(period, pay, domain.TierReturnOfCapital))
	}

	if !remaining.IsPositive() || !next.LPSatisfied() {
		return next, entries
	}

	// Tier 3: catch-up
	owed := terms.policy()(next.LP, next.GP, terms.PromoteRate)
	if pay := decimal.Min(remaining, owed); pay.IsPositive() {
		next.GP.ProfitDistributed = next.GP.ProfitDistributed.Add(pay)
		remaining = remaining.Sub(pay)
		entries = append(entries, domain.DistributionEntry{Period: period, LP: decimal.Zero, GP: pay, Tier: domain.TierCatchUp})
	}

	// Tier 4: residual
	if remaining.IsPositive() {
		lp := remaining.Mul(decimal.NewFromInt(1).Sub(terms.PromoteRate))
		gp := remaining.Sub(lp)
		next.LP.ProfitDistributed = next.LP.ProfitDistributed.Add(lp)
		next.GP.ProfitDistributed = next.GP.ProfitDistributed.Add(gp)
		entries = append(entries, domain.DistributionEntry{Period: period, LP: lp, GP: gp, Tier: domain.TierResidual})
	}

	return next, entries
}

// splitCall divides a negative period by the LP/GP capital ratio; GP takes the remainder
func splitCall(cash decimal.Decimal, terms Terms) (decimal.Decimal, decimal.Decimal) {
	total := terms.LPCapital.Add(terms.GPCapital)
	lp := cash.Mul(terms.LPCapital).Div(total)
	return lp, cash.Sub(lp)
}

func lpOnly(period int, amount decimal.Decimal, tier domain.Tier) domain.DistributionEntry {
	return domain.DistributionEntry{Period: period, LP: amount, GP: decimal.Zero, Tier: tier}
}

// Ledger is the full record of one waterfall run
type Ledger struct {
	Entries   []domain.DistributionEntry
	Snapshots []domain.AccountSnapshot // one per period, accounts at period close
	LP        domain.CapitalAccount
	GP        domain.CapitalAccount
}

// Periods returns the number of periods distributed
func (l *Ledger) Periods() int {
	return len(l.Snapshots)
}

// Series returns the net receipts of one class per period (capital calls negative)
func (l *Ledger) Series(class domain.CapitalClass) []decimal.Decimal {
	series := make([]decimal.Decimal, l.Periods())
	for i := range series {
		series[i] = decimal.Zero
	}
	for _, entry := range l.Entries {
		i := entry.Period - 1
		if i < 0 || i >= len(series) {
			continue
		}
		series[i] = series[i].Add(amountFor(entry, class))
	}
	return series
}

// TierTotal sums what one class received from one tier over the whole run
func (l *Ledger) TierTotal(class domain.CapitalClass, tier domain.Tier) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range l.Entries {
		if entry.Tier == tier {
			total = total.Add(amountFor(entry, class))
		}
	}
	return total
}

// PeriodEntries returns the funded tiers of one period in tier order
func (l *Ledger) PeriodEntries(period int) []domain.DistributionEntry {
	var out []domain.DistributionEntry
	for _, entry := range l.Entries {
		if entry.Period == period {
			out = append(out, entry)
		}
	}
	return out
}

func amountFor(entry domain.DistributionEntry, class domain.CapitalClass) decimal.Decimal {
	if class == domain.ClassGP {
		return entry.GP
	}
	return entry.LP
}

// Distribute runs the waterfall over the portfolio's distributable cash, period by period.
// Cash entries are consumed in slice order; entry i is period i+1.
func Distribute(cash []domain.PortfolioCashFlowEntry, terms Terms) (*Ledger, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	if len(cash) == 0 {
		return nil, domain.NewValidationError("waterfall", "cash", 0, "needs at least one period")
	}

	ledger := &Ledger{
		Entries:   make([]domain.DistributionEntry, 0, len(cash)*2),
		Snapshots: make([]domain.AccountSnapshot, 0, len(cash)),
	}

	state := NewState(terms)
	for i, entry := range cash {
		period := i + 1
		var funded []domain.DistributionEntry
		state, funded = Step(state, period, entry.NetCashFlow, terms)

		sum := decimal.Zero
		for _, f := range funded {
			sum = sum.Add(f.Total())
		}
		if !sum.Equal(entry.NetCashFlow) {
			return nil, fmt.Errorf("waterfall period %d: distributed %s of %s", period, sum, entry.NetCashFlow)
		}

		ledger.Entries = append(ledger.Entries, funded...)
		ledger.Snapshots = append(ledger.Snapshots, domain.AccountSnapshot{Period: period, LP: state.LP, GP: state.GP})
	}

	ledger.LP = state.LP
	ledger.GP = state.GP
	return ledger, nil
}
