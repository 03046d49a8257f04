// Package report renders projection runs as markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Options controls report formatting
type Options struct {
	Currency   string       // ISO 4217 code, default CAD
	Language   language.Tag // number formatting, default English
	SkipLedger bool         // omit the per-tier distribution table
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = money.CAD
	}
	if o.Language == language.Und {
		o.Language = language.English
	}
	return o
}

// renderer accumulates markdown output
type renderer struct {
	*strings.Builder
	currency *money.Currency
	code     string
	printer  *message.Printer
}

func newRenderer(opts Options) *renderer {
	opts = opts.withDefaults()
	return &renderer{
		Builder:  &strings.Builder{},
		currency: money.GetCurrency(opts.Currency),
		code:     opts.Currency,
		printer:  message.NewPrinter(opts.Language),
	}
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// Money formats an amount in the report currency, rounded to its minor unit
func (r *renderer) Money(amount decimal.Decimal) string {
	if r.currency == nil {
		return r.printer.Sprintf("%.2f %s", amount.InexactFloat64(), r.code)
	}
	minor := amount.Shift(int32(r.currency.Fraction)).Round(0).IntPart()
	return money.New(minor, r.code).Display()
}

// Percent formats a rate (0.08 -> 8.00%)
func (r *renderer) Percent(rate decimal.Decimal) string {
	return r.printer.Sprintf("%.2f%%", rate.Shift(2).InexactFloat64())
}

// Multiple formats an equity multiple (1.7388 -> 1.74x)
func (r *renderer) Multiple(m decimal.Decimal) string {
	return r.printer.Sprintf("%.2fx", m.InexactFloat64())
}

// Markdown renders the whole run
func Markdown(run *domain.ProjectionRun, opts Options) string {
	r := newRenderer(opts)

	r.renderTitle(run)
	r.renderMetrics(run)
	r.renderProperties(run)
	r.renderPortfolio(run)
	if !opts.SkipLedger {
		r.renderLedger(run)
	}
	r.renderAccounts(run)

	return r.String()
}

func (r *renderer) renderTitle(run *domain.ProjectionRun) {
	name := run.Name
	if name == "" {
		name = "Projection"
	}
	r.Printf("# %s\n\n", name)
	r.Printf("Run `%s`, %d periods, created %s\n\n", run.ID, run.Periods(), run.CreatedAt.Format("2006-01-02 15:04 MST"))
	r.Printf("- Total cost: %s\n", r.Money(run.TotalCost))
	r.Printf("- Total equity: %s\n", r.Money(run.TotalEquity))
	r.Printf("- LP / GP capital: %s / %s\n", r.Money(run.Assumptions.LPCapital), r.Money(run.Assumptions.GPCapital))
	r.Printf("- Preferred %s, promote %s, management fee %s\n\n",
		r.Percent(run.Assumptions.PreferredRate), r.Percent(run.Assumptions.PromoteRate), r.Percent(run.Assumptions.ManagementFeeRate))
}

func (r *renderer) renderMetrics(run *domain.ProjectionRun) {
	r.Printf("## Returns\n\n")
	r.Printf("| Entity | IRR | Equity multiple | Cash-on-cash | Distributed | Outlay |\n")
	r.Printf("|:---|---:|---:|---:|---:|---:|\n")
	r.metricsRow("Fund", run.FundMetrics)
	r.metricsRow("LP", run.LPMetrics)
	r.metricsRow("GP", run.GPMetrics)
	r.Printf("\nGP fees and promote: %s\n\n", r.Money(run.GPFeesAndPromote))
	if run.Assumptions.GPCapital.IsPositive() {
		r.Printf("GP capital of %s is not returned through the waterfall; the GP is paid only catch-up and promote, so its IRR can be negative.\n\n",
			r.Money(run.Assumptions.GPCapital))
	}
}

func (r *renderer) metricsRow(entity string, m domain.ReturnMetrics) {
	if m.InitialOutlay.IsZero() {
		r.Printf("| %s | - | - | - | - | - |\n", entity)
		return
	}
	irr := "n/a"
	if m.HasIRR() {
		irr = r.Percent(*m.IRR)
	}
	r.Printf("| %s | %s | %s | %s | %s | %s |\n", entity, irr, r.Multiple(m.EquityMultiple), r.Percent(m.CashOnCash), r.Money(m.TotalDistributed), r.Money(m.InitialOutlay))
}

func (r *renderer) renderProperties(run *domain.ProjectionRun) {
	r.Printf("## Properties\n\n")
	r.Printf("| Property | Count | Acquired | Price | Equity | First NOI | Disposition |\n")
	r.Printf("|:---|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range run.Properties {
		firstNOI, disposition := decimal.Zero, decimal.Zero
		if len(p.Entries) > 0 {
			firstNOI = p.Entries[0].NOI
			disposition = p.Entries[len(p.Entries)-1].DispositionValue
		}
		r.Printf("| %s | %d | %d | %s | %s | %s | %s |\n",
			p.Archetype.Label(), p.Archetype.Weight(), p.Archetype.AcquisitionPeriod,
			r.Money(p.Archetype.PurchasePrice), r.Money(p.Archetype.Equity()), r.Money(firstNOI), r.Money(disposition))
	}
	r.Printf("\n")
}

func (r *renderer) renderPortfolio(run *domain.ProjectionRun) {
	r.Printf("## Portfolio cash flow\n\n")
	r.Printf("| Period | Operating | Fee | Distributable | Of which sales | Value |\n")
	r.Printf("|---:|---:|---:|---:|---:|---:|\n")
	for _, e := range run.Portfolio {
		r.Printf("| %d | %s | %s | %s | %s | %s |\n", e.Period,
			r.Money(e.OperatingCashFlow), r.Money(e.ManagementFee), r.Money(e.NetCashFlow), r.Money(e.DispositionValue), r.Money(e.PropertyValue))
	}
	r.Printf("\n")
}

func (r *renderer) renderLedger(run *domain.ProjectionRun) {
	r.Printf("## Distributions\n\n")
	r.Printf("| Period | Tier | LP | GP |\n")
	r.Printf("|---:|:---|---:|---:|\n")
	for _, e := range run.Ledger {
		r.Printf("| %d | %s | %s | %s |\n", e.Period, e.Tier, r.Money(e.LP), r.Money(e.GP))
	}
	r.Printf("\n")
}

func (r *renderer) renderAccounts(run *domain.ProjectionRun) {
	if len(run.Accounts) == 0 {
		return
	}
	final := run.Accounts[len(run.Accounts)-1]
	r.Printf("## Capital accounts at exit\n\n")
	r.Printf("| Class | Contributed | Returned | Preferred paid | Profit |\n")
	r.Printf("|:---|---:|---:|---:|---:|\n")
	for _, a := range []domain.CapitalAccount{final.LP, final.GP} {
		r.Printf("| %s | %s | %s | %s | %s |\n", a.Class,
			r.Money(a.Contributed), r.Money(a.CapitalReturned), r.Money(a.PreferredPaid), r.Money(a.ProfitDistributed))
	}
	r.Printf("\n")
}

// Schedule renders an amortization schedule
func Schedule(entries []domain.AmortizationEntry, opts Options) string {
	r := newRenderer(opts)
	r.Printf("| Period | Opening | Interest | Principal | Payment | Closing |\n")
	r.Printf("|---:|---:|---:|---:|---:|---:|\n")
	for _, e := range entries {
		r.Printf("| %d | %s | %s | %s | %s | %s |\n", e.Period,
			r.Money(e.OpeningBalance), r.Money(e.Interest), r.Money(e.Principal), r.Money(e.Payment()), r.Money(e.ClosingBalance))
	}
	return r.String()
}
