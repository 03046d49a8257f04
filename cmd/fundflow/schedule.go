package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/simaogato/fundflow-backend/internal/adapter/report"
	"github.com/simaogato/fundflow-backend/internal/usecase/amortization"
)

type scheduleCmd struct {
	principal string
	rate      string
	term      int
	ppp       int
	currency  string
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "print a constant-payment amortization table" }
func (*scheduleCmd) Usage() string {
	return `fundflow schedule -principal <amount> -rate <annual rate> -term <periods> [-ppp <payments per period>]

  Rates are fractions: 4.6% is 0.046. With -ppp 12 the loan is paid monthly and
  each row sums one period's payments.
`
}

func (s *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.principal, "principal", "", "The loan amount.")
	f.StringVar(&s.rate, "rate", "", "The nominal annual interest rate.")
	f.IntVar(&s.term, "term", 25, "The amortization term in periods.")
	f.IntVar(&s.ppp, "ppp", 1, "Mortgage payments per period.")
	f.StringVar(&s.currency, "currency", s.currency, "ISO 4217 code used to display amounts.")
}

func (s *scheduleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	principal, err := decimal.NewFromString(s.principal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing principal: %v\n", err)
		return subcommands.ExitUsageError
	}
	rate, err := decimal.NewFromString(s.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing rate: %v\n", err)
		return subcommands.ExitUsageError
	}

	entries, err := amortization.Schedule(principal, rate, s.term, amortization.WithPaymentsPerPeriod(s.ppp))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Print(report.Schedule(entries, report.Options{Currency: s.currency}))
	return subcommands.ExitSuccess
}
