package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/fundflow-backend/internal/domain"
)

// runRepository implements domain.RunRepository
type runRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) domain.RunRepository {
	return &runRepository{db: db}
}

// metricsRecord is the JSONB layout of domain.ReturnMetrics
type metricsRecord struct {
	IRR              *decimal.Decimal `json:"irr,omitempty"`
	IRRError         string           `json:"irr_error,omitempty"`
	EquityMultiple   decimal.Decimal  `json:"equity_multiple"`
	CashOnCash       decimal.Decimal  `json:"cash_on_cash"`
	TotalDistributed decimal.Decimal  `json:"total_distributed"`
	InitialOutlay    decimal.Decimal  `json:"initial_outlay"`
}

func encodeMetrics(m domain.ReturnMetrics) ([]byte, error) {
	record := metricsRecord{
		IRR:              m.IRR,
		EquityMultiple:   m.EquityMultiple,
		CashOnCash:       m.CashOnCash,
		TotalDistributed: m.TotalDistributed,
		InitialOutlay:    m.InitialOutlay,
	}
	if m.IRRError != nil {
		record.IRRError = m.IRRError.Error()
	}
	return json.Marshal(record)
}

func decodeMetrics(data []byte) (domain.ReturnMetrics, error) {
	var record metricsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.ReturnMetrics{}, err
	}
	m := domain.ReturnMetrics{
		IRR:              record.IRR,
		EquityMultiple:   record.EquityMultiple,
		CashOnCash:       record.CashOnCash,
		TotalDistributed: record.TotalDistributed,
		InitialOutlay:    record.InitialOutlay,
	}
	if record.IRRError != "" {
		// restore the sentinel so errors.Is keeps working after a round trip
		detail := strings.TrimPrefix(record.IRRError, domain.ErrNoConvergence.Error())
		m.IRRError = fmt.Errorf("%w%s", domain.ErrNoConvergence, detail)
	}
	return m, nil
}

// Create stores the run header, portfolio series, ledger and account snapshots in one transaction
func (r *runRepository) Create(ctx context.Context, run *domain.ProjectionRun) error {
	assumptions, err := json.Marshal(run.Assumptions)
	if err != nil {
		return fmt.Errorf("failed to encode assumptions: %w", err)
	}
	properties, err := json.Marshal(run.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}
	metrics := make([][]byte, 0, 3)
	for _, m := range []domain.ReturnMetrics{run.FundMetrics, run.LPMetrics, run.GPMetrics} {
		data, err := encodeMetrics(m)
		if err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
		metrics = append(metrics, data)
	}

	// Start a database transaction
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertRunQuery := `
		INSERT INTO projection_runs (id, name, created_at, assumptions, properties, total_cost, total_equity,
			gp_fees_and_promote, fund_metrics, lp_metrics, gp_metrics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = dbTx.ExecContext(ctx, insertRunQuery,
		run.ID,
		run.Name,
		run.CreatedAt,
		assumptions,
		properties,
		run.TotalCost.String(),
		run.TotalEquity.String(),
		run.GPFeesAndPromote.String(),
		metrics[0],
		metrics[1],
		metrics[2],
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertPeriodQuery := `
		INSERT INTO run_periods (run_id, period, operating_cash_flow, management_fee, net_cash_flow, property_value, disposition_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, p := range run.Portfolio {
		_, err = dbTx.ExecContext(ctx, insertPeriodQuery,
			run.ID,
			p.Period,
			p.OperatingCashFlow.String(),
			p.ManagementFee.String(),
			p.NetCashFlow.String(),
			p.PropertyValue.String(),
			p.DispositionValue.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert period %d: %w", p.Period, err)
		}
	}

	insertDistributionQuery := `
		INSERT INTO run_distributions (run_id, seq, period, tier, lp, gp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for seq, e := range run.Ledger {
		_, err = dbTx.ExecContext(ctx, insertDistributionQuery,
			run.ID,
			seq,
			e.Period,
			string(e.Tier),
			e.LP.String(),
			e.GP.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert distribution: %w", err)
		}
	}

	insertAccountQuery := `
		INSERT INTO run_accounts (run_id, period, class, contributed, unreturned_capital, preferred_accrued,
			preferred_paid, capital_returned, profit_distributed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, snapshot := range run.Accounts {
		for _, a := range []domain.CapitalAccount{snapshot.LP, snapshot.GP} {
			_, err = dbTx.ExecContext(ctx, insertAccountQuery,
				run.ID,
				snapshot.Period,
				string(a.Class),
				a.Contributed.String(),
				a.UnreturnedCapital.String(),
				a.PreferredAccrued.String(),
				a.PreferredPaid.String(),
				a.CapitalReturned.String(),
				a.ProfitDistributed.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s account: %w", a.Class, err)
			}
		}
	}

	// Commit the transaction
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const runHeaderColumns = `id, name, created_at, assumptions, total_cost, total_equity, gp_fees_and_promote,
	fund_metrics, lp_metrics, gp_metrics`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunHeader(row rowScanner) (*domain.ProjectionRun, error) {
	var run domain.ProjectionRun
	var assumptions, fundMetrics, lpMetrics, gpMetrics []byte

	err := row.Scan(
		&run.ID,
		&run.Name,
		&run.CreatedAt,
		&assumptions,
		&run.TotalCost,
		&run.TotalEquity,
		&run.GPFeesAndPromote,
		&fundMetrics,
		&lpMetrics,
		&gpMetrics,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(assumptions, &run.Assumptions); err != nil {
		return nil, fmt.Errorf("failed to decode assumptions: %w", err)
	}
	if run.FundMetrics, err = decodeMetrics(fundMetrics); err != nil {
		return nil, fmt.Errorf("failed to decode fund metrics: %w", err)
	}
	if run.LPMetrics, err = decodeMetrics(lpMetrics); err != nil {
		return nil, fmt.Errorf("failed to decode LP metrics: %w", err)
	}
	if run.GPMetrics, err = decodeMetrics(gpMetrics); err != nil {
		return nil, fmt.Errorf("failed to decode GP metrics: %w", err)
	}

	return &run, nil
}

// GetByID retrieves a run with its series, ledger and account snapshots
func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectionRun, error) {
	query := `SELECT ` + runHeaderColumns + `, properties FROM projection_runs WHERE id = $1`

	var properties []byte
	row := r.db.QueryRowContext(ctx, query, id)
	run, err := scanRunHeader(scannerFunc(func(dest ...any) error {
		return row.Scan(append(dest, &properties)...)
	}))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run by ID: %w", err)
	}
	if err := json.Unmarshal(properties, &run.Properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	if run.Portfolio, err = r.periods(ctx, id); err != nil {
		return nil, err
	}
	if run.Ledger, err = r.distributions(ctx, id); err != nil {
		return nil, err
	}
	if run.Accounts, err = r.accounts(ctx, id); err != nil {
		return nil, err
	}

	return run, nil
}

// scannerFunc adapts a function to rowScanner
type scannerFunc func(dest ...any) error

func (f scannerFunc) Scan(dest ...any) error {
	return f(dest...)
}

// List retrieves run headers, newest first
func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*domain.ProjectionRun, error) {
	query := `SELECT ` + runHeaderColumns + ` FROM projection_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.ProjectionRun
	for rows.Next() {
		run, err := scanRunHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

func (r *runRepository) periods(ctx context.Context, id uuid.UUID) ([]domain.PortfolioCashFlowEntry, error) {
	query := `
		SELECT period, operating_cash_flow, management_fee, net_cash_flow, property_value, disposition_value
		FROM run_periods
		WHERE run_id = $1
		ORDER BY period
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var out []domain.PortfolioCashFlowEntry
	for rows.Next() {
		var p domain.PortfolioCashFlowEntry
		if err := rows.Scan(&p.Period, &p.OperatingCashFlow, &p.ManagementFee, &p.NetCashFlow, &p.PropertyValue, &p.DispositionValue); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *runRepository) distributions(ctx context.Context, id uuid.UUID) ([]domain.DistributionEntry, error) {
	query := `
		SELECT period, tier, lp, gp
		FROM run_distributions
		WHERE run_id = $1
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributions: %w", err)
	}
	defer rows.Close()

	var out []domain.DistributionEntry
	for rows.Next() {
		var e domain.DistributionEntry
		if err := rows.Scan(&e.Period, &e.Tier, &e.LP, &e.GP); err != nil {
			return nil, fmt.Errorf("failed to scan distribution: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *runRepository) accounts(ctx context.Context, id uuid.UUID) ([]domain.AccountSnapshot, error) {
	query := `
		SELECT period, class, contributed, unreturned_capital, preferred_accrued, preferred_paid,
			capital_returned, profit_distributed
		FROM run_accounts
		WHERE run_id = $1
		ORDER BY period, class DESC
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.AccountSnapshot
	for rows.Next() {
		var period int
		var a domain.CapitalAccount
		if err := rows.Scan(&period, &a.Class, &a.Contributed, &a.UnreturnedCapital, &a.PreferredAccrued,
			&a.PreferredPaid, &a.CapitalReturned, &a.ProfitDistributed); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if len(out) == 0 || out[len(out)-1].Period != period {
			out = append(out, domain.AccountSnapshot{Period: period})
		}
		if a.Class == domain.ClassGP {
			out[len(out)-1].GP = a
		} else {
			out[len(out)-1].LP = a
		}
	}
	return out, rows.Err()
}
