package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/systic2/allleaguesfans-sub001/internal/app"
	"github.com/systic2/allleaguesfans-sub001/internal/config"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/observability"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	shutdownBudget = 10 * time.Second
)

const (
	modeDedupEvents   = "dedup-events"
	modeJerseys       = "jerseys"
	modeVerifyJerseys = "verify-jerseys"
	modePruneMappings = "prune-mappings"
)

type options struct {
	mode          string
	league        string
	teams         []string
	fixtures      []string
	dryRun        bool
	strategy      string
	keeper        string
	minConfidence float64
	kind          canonical.Kind
	format        string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).Named(cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownObservability, err := observability.Init(cfg, logger)
	if err != nil {
		logger.Error("init observability", "error", err)
		return exitFailure
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownBudget)
		defer cancel()
		if err := shutdownObservability(ctx); err != nil {
			logger.Warn("shutdown observability", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitFailure
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	ctx, span := otel.Tracer("allleaguesfans/cmd/reconcile").Start(ctx, "reconcile."+opts.mode)
	code, err := dispatch(ctx, container, opts, stdout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, usecase.ErrorCode(err))
	}
	span.End()
	if err != nil {
		logger.Error("reconcile job failed", "mode", opts.mode, "code", usecase.ErrorCode(err), "error", err)
		return exitFailure
	}
	return code
}

func dispatch(ctx context.Context, c *app.Container, opts options, stdout io.Writer) (int, error) {
	switch opts.mode {
	case modeDedupEvents:
		result, err := c.EventDedup.Run(ctx, usecase.DedupInput{FixtureIDs: opts.fixtures, DryRun: opts.dryRun})
		if err != nil {
			return exitFailure, err
		}
		return exitOK, writeReport(stdout, opts.format, result, func(w io.Writer) { renderDedup(w, result) })

	case modeJerseys:
		result, err := c.Jersey.Resolve(ctx, usecase.JerseyInput{
			LeagueID: opts.league,
			TeamIDs:  opts.teams,
			Strategy: opts.strategy,
			Keeper:   opts.keeper,
			DryRun:   opts.dryRun,
		})
		if err != nil {
			return exitFailure, err
		}
		code := exitOK
		if len(result.Violations) > 0 {
			code = exitFailure
		}
		return code, writeReport(stdout, opts.format, result, func(w io.Writer) { renderJersey(w, result) })

	case modeVerifyJerseys:
		violations, err := c.Jersey.Verify(ctx, opts.league, opts.teams)
		if err != nil {
			return exitFailure, err
		}
		code := exitOK
		if len(violations) > 0 {
			code = exitFailure
		}
		return code, writeReport(stdout, opts.format, violations, func(w io.Writer) { renderViolations(w, violations) })

	case modePruneMappings:
		result, err := c.Mappings.Prune(ctx, usecase.PruneInput{Kind: opts.kind, MinConfidence: opts.minConfidence, DryRun: opts.dryRun})
		if err != nil {
			return exitFailure, err
		}
		return exitOK, writeReport(stdout, opts.format, result, func(w io.Writer) { renderPrune(w, result) })
	}

	if c.Reconciliation == nil {
		return exitFailure, fmt.Errorf("mode %s needs SPORTMONKS_ENABLED and THESPORTSDB_ENABLED", opts.mode)
	}
	mode, err := usecase.ParseReconcileMode(opts.mode)
	if err != nil {
		return exitUsage, err
	}
	result, err := c.Reconciliation.Run(ctx, usecase.RunInput{
		Mode:     mode,
		LeagueID: opts.league,
		DryRun:   opts.dryRun,
	})
	if err != nil {
		return exitFailure, err
	}
	return exitOK, writeReport(stdout, opts.format, result, func(w io.Writer) { renderRun(w, result) })
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts     options
		teams    string
		fixtures string
		kind     string
	)
	fs.StringVar(&opts.mode, "mode", string(usecase.ReconcileModeFull), "leagues|teams|full|events|dedup-events|jerseys|verify-jerseys|prune-mappings")
	fs.StringVar(&opts.league, "league", "", "canonical or primary-provider league id")
	fs.StringVar(&teams, "team", "", "comma separated canonical team ids")
	fs.StringVar(&fixtures, "fixture", "", "comma separated canonical fixture ids")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "report planned changes without writing")
	fs.StringVar(&opts.strategy, "strategy", "", "jersey strategy: minimal_change|full_reset")
	fs.StringVar(&opts.keeper, "keeper", "", "jersey keeper policy: lowest_id|position_priority")
	fs.Float64Var(&opts.minConfidence, "min-confidence", 0.85, "prune mappings at or below this confidence")
	fs.StringVar(&kind, "kind", "", "entity kind for prune-mappings: league|team|player|fixture")
	fs.StringVar(&opts.format, "format", "text", "report format: text|json")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.mode = strings.ToLower(strings.TrimSpace(opts.mode))
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	opts.teams = splitCSV(teams)
	opts.fixtures = splitCSV(fixtures)

	switch opts.mode {
	case modeDedupEvents, modeJerseys, modeVerifyJerseys:
	case modePruneMappings:
		parsed, err := canonical.ParseKind(kind)
		if err != nil {
			return options{}, fmt.Errorf("-kind: %w", err)
		}
		opts.kind = parsed
		if opts.minConfidence <= 0 || opts.minConfidence > 1 {
			return options{}, fmt.Errorf("-min-confidence must be within (0, 1]")
		}
	default:
		if _, err := usecase.ParseReconcileMode(opts.mode); err != nil {
			return options{}, err
		}
	}
	if opts.format != formatText && opts.format != formatJSON {
		return options{}, fmt.Errorf("-format must be %s or %s", formatText, formatJSON)
	}
	return opts, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
