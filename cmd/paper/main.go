package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gocer/app"
	"gocer/domain/core"
	"gocer/internal/config"
	"gocer/internal/container"
	"gocer/internal/errors"
	"gocer/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; system environment variables still apply
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}

type options struct {
	caseNum     int
	protocols   []string
	data        string
	workers     int
	interval    float64
	regularizer float64
	logLevel    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Print classification error rate tables for Iris variable subsets",
		Long: `Train a classifier on every subset of the Iris variables and print the
test-split classification error rate (CER) per subset, one table per protocol.

Cases:
  1  single variables
  2  pairs of variables
  3  triples of variables
  4  all variables

Without --case every case runs in order and tables are numbered 1..8.

Examples:
  paper -c 1
  paper -c 2 -p proto1
  paper --protocol proto1,proto2 --workers 4 --interval 0.95`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, selection(cmd, opts), stdout, stderr)
		},
	}

	cmd.Flags().IntVarP(&opts.caseNum, "case", "c", 0, "Report case 1-4 (omit to run all cases)")
	cmd.Flags().StringSliceVarP(&opts.protocols, "protocol", "p", nil, "Protocols to report, repeatable or comma separated (default: proto1,proto2)")
	cmd.Flags().StringVar(&opts.data, "data", "", "CSV or XLSX dataset to use instead of the embedded Iris table")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Concurrent subset evaluations")
	cmd.Flags().Float64Var(&opts.interval, "interval", 0, "Confidence level for error rate intervals, e.g. 0.95 (0 disables)")
	cmd.Flags().Float64Var(&opts.regularizer, "regularizer", 0, "L2 penalty on classifier weights")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Diagnostic log level: debug, info, warn, error")

	return cmd
}

// selection carries only the flags the user set, so an explicit "-c 0" or
// "-p ''" reaches validation instead of meaning "everything"
func selection(cmd *cobra.Command, opts options) app.Selection {
	var sel app.Selection
	flags := cmd.Flags()
	if flags.Changed("case") {
		sel.Case = app.CaseOf(opts.caseNum)
	}
	if flags.Changed("protocol") {
		sel.Protocols = append([]string{}, opts.protocols...)
	}
	return sel
}

// loadConfig reads the environment and lets explicitly set flags override it
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.File = opts.data
	}
	if flags.Changed("workers") {
		cfg.Evaluation.Workers = opts.workers
	}
	if flags.Changed("interval") {
		cfg.Evaluation.IntervalLevel = opts.interval
	}
	if flags.Changed("regularizer") {
		cfg.Evaluation.Regularizer = opts.regularizer
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, sel app.Selection, stdout, stderr io.Writer) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	logger := logging.New(stderr, level)

	c, err := container.New(cfg, logger)
	if err != nil {
		return err
	}

	_, err = c.Experiment.Run(ctx, stdout, sel)
	return err
}

// describe renders err for stderr with its failure kind
func describe(err error) string {
	kind := core.Kind(err)
	if code := errors.GetCode(err); code == errors.CodeConfigInvalid {
		kind = "ConfigInvalid"
	}
	return fmt.Sprintf("error: %v [%s]", err, kind)
}
