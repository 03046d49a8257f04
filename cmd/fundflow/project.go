package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/fundflow-backend/internal/adapter/report"
	"github.com/simaogato/fundflow-backend/internal/adapter/scenario"
	"github.com/simaogato/fundflow-backend/internal/usecase/fund"
)

type projectCmd struct {
	logger   *logrus.Logger
	file     string
	currency string
	noLedger bool
}

func (*projectCmd) Name() string { return "project" }
func (*projectCmd) Synopsis() string {
	return "run a scenario through the cash-flow and waterfall pipeline and print the report"
}
func (*projectCmd) Usage() string {
	return `fundflow project -f <scenario.yaml> [-currency <code>] [-no-ledger]

  Projects every property of the scenario, aggregates the portfolio, distributes
  each period through the LP/GP waterfall and prints returns as markdown.
  Nothing is stored.
`
}

func (p *projectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "The scenario file (YAML or JSON).")
	f.StringVar(&p.currency, "currency", p.currency, "ISO 4217 code used to display amounts.")
	f.BoolVar(&p.noLedger, "no-ledger", false, "Omit the per-tier distribution table.")
}

func (p *projectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.file == "" {
		fmt.Fprintln(os.Stderr, "a scenario file is required (-f)")
		return subcommands.ExitUsageError
	}

	input, err := scenario.Load(p.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// No repositories: presets are unavailable and runs are not persisted
	service := fund.NewService(nil, nil, p.logger)
	run, err := service.Project(ctx, input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Print(report.Markdown(run, report.Options{Currency: p.currency, SkipLedger: p.noLedger}))
	return subcommands.ExitSuccess
}
