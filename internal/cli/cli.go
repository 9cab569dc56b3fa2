// Package cli implements the compute_sales command: load a catalog and a sales log,
// compute the total cost and print it with the elapsed computation time.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abgdnv/salescost/internal/config"
	"github.com/abgdnv/salescost/internal/platform/bootstrap"
	"github.com/abgdnv/salescost/internal/report"
	"github.com/abgdnv/salescost/internal/sales"
	"github.com/abgdnv/salescost/internal/source"
)

// Exit codes of the command.
const (
	ExitOK                = 0
	ExitUsage             = 1
	ExitSourceUnavailable = 2
	ExitSourceFormat      = 3
	ExitMissingField      = 4
	ExitFailure           = 1
)

const usage = "usage: compute_sales <catalog.json | postgres://...> <sales.json>"

// Run executes the command with the positional arguments (program name excluded)
// and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(stderr, usage)
		return ExitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: failed to load configuration: %v\n", err)
		return ExitUsage
	}
	logger := bootstrap.NewLogger(cfg.Log.Level, stderr)
	logger.Debug("Configuration loaded", "config", cfg.String())

	summary, elapsed, err := compute(ctx, cfg, logger, args[0], args[1])
	if err != nil {
		return fail(stderr, logger, err)
	}

	if err := report.Write(stdout, cfg.Report.Format, report.Report{Summary: *summary, Elapsed: elapsed}); err != nil {
		return fail(stderr, logger, err)
	}
	return ExitOK
}

// compute loads both inputs and times the aggregation alone.
func compute(ctx context.Context, cfg *config.Config, logger *slog.Logger, catalogPath, salesPath string) (*sales.Summary, time.Duration, error) {
	catalogSrc, closeCatalog, err := source.OpenCatalog(ctx, catalogPath, cfg.Database.Timeout)
	if err != nil {
		return nil, 0, err
	}
	defer closeCatalog()

	inputs, err := source.LoadInputs(ctx, catalogSrc, source.NewJSONFile(salesPath))
	if err != nil {
		return nil, 0, err
	}
	logger.Info("Inputs loaded", "catalog_entries", len(inputs.Catalog), "sales_records", len(inputs.Sales))

	svc := sales.NewService(logger, sales.Config{WarnDuplicates: cfg.WarnDuplicates()})
	start := time.Now()
	summary, err := svc.Compute(ctx, inputs.Catalog, inputs.Sales)
	elapsed := time.Since(start)
	if err != nil {
		return nil, 0, err
	}
	return summary, elapsed, nil
}

// fail reports err and maps it to an exit code.
func fail(stderr io.Writer, logger *slog.Logger, err error) int {
	code, kind := classify(err)
	logger.Error("Computation failed", "kind", kind, "error", err)
	_, _ = fmt.Fprintf(stderr, "error: %s: %v\n", kind, err)
	return code
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, source.ErrSourceUnavailable):
		return ExitSourceUnavailable, "source unavailable"
	case errors.Is(err, source.ErrSourceFormat):
		return ExitSourceFormat, "malformed source data"
	case errors.Is(err, sales.ErrMissingField):
		return ExitMissingField, "missing field"
	default:
		return ExitFailure, "failure"
	}
}
