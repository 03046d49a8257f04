package postgres

// Schema is the DDL for runs and presets. Money columns are NUMERIC and
// travel as strings so no precision is lost on either side.
const Schema = `
CREATE TABLE IF NOT EXISTS assumption_presets (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	assumptions JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS projection_runs (
	id                  UUID PRIMARY KEY,
	name                TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	assumptions         JSONB NOT NULL,
	properties          JSONB NOT NULL,
	total_cost          NUMERIC NOT NULL,
	total_equity        NUMERIC NOT NULL,
	gp_fees_and_promote NUMERIC NOT NULL,
	fund_metrics        JSONB NOT NULL,
	lp_metrics          JSONB NOT NULL,
	gp_metrics          JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS run_periods (
	run_id              UUID NOT NULL REFERENCES projection_runs(id) ON DELETE CASCADE,
	period              INT NOT NULL,
	operating_cash_flow NUMERIC NOT NULL,
	management_fee      NUMERIC NOT NULL,
	net_cash_flow       NUMERIC NOT NULL,
	property_value      NUMERIC NOT NULL,
	disposition_value   NUMERIC NOT NULL,
	PRIMARY KEY (run_id, period)
);

CREATE TABLE IF NOT EXISTS run_distributions (
	run_id UUID NOT NULL REFERENCES projection_runs(id) ON DELETE CASCADE,
	seq    INT NOT NULL,
	period INT NOT NULL,
	tier   TEXT NOT NULL,
	lp     NUMERIC NOT NULL,
	gp     NUMERIC NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS run_accounts (
	run_id             UUID NOT NULL REFERENCES projection_runs(id) ON DELETE CASCADE,
	period             INT NOT NULL,
	class              TEXT NOT NULL,
	contributed        NUMERIC NOT NULL,
	unreturned_capital NUMERIC NOT NULL,
	preferred_accrued  NUMERIC NOT NULL,
	preferred_paid     NUMERIC NOT NULL,
	capital_returned   NUMERIC NOT NULL,
	profit_distributed NUMERIC NOT NULL,
	PRIMARY KEY (run_id, period, class)
);

CREATE INDEX IF NOT EXISTS projection_runs_created_at_idx ON projection_runs (created_at DESC);
`
