package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/fundflow-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	// The CLI always logs text to stderr so reports on stdout stay clean
	cfg.LogFormat = "text"
	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}
	logger.SetOutput(os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands(cfg, logger) {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func commands(cfg config.Config, logger *logrus.Logger) []subcommands.Command {
	return []subcommands.Command{
		&projectCmd{logger: logger, currency: cfg.Currency},
		&scheduleCmd{currency: cfg.Currency},
	}
}
