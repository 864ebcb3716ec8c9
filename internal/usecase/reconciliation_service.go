package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/matching"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/id"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type ReconcileMode string

const (
	ReconcileModeLeagues ReconcileMode = "leagues"
	ReconcileModeTeams   ReconcileMode = "teams"
	ReconcileModeFull    ReconcileMode = "full"
	ReconcileModeEvents  ReconcileMode = "events"
)

func ParseReconcileMode(raw string) (ReconcileMode, error) {
	mode := ReconcileMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case ReconcileModeLeagues, ReconcileModeTeams, ReconcileModeFull, ReconcileModeEvents:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown reconcile mode %q", ErrInvalidInput, raw)
	}
}

type RunInput struct {
	Mode ReconcileMode `validate:"required,oneof=leagues teams full events"`
	// LeagueID is a canonical league id or the primary provider's league id.
	LeagueID string `validate:"required_if=Mode teams"`
	DryRun   bool
}

type ItemError struct {
	Kind     canonical.Kind     `json:"kind"`
	Provider canonical.Provider `json:"provider"`
	Ref      string             `json:"ref"`
	Message  string             `json:"message"`
}

type UnmappedEntity struct {
	ID            string  `json:"id"`
	Ref           string  `json:"ref"`
	Name          string  `json:"name"`
	BestScore     float64 `json:"best_score"`
	BestCandidate string  `json:"best_candidate,omitempty"`
}

type KindResult struct {
	Kind      canonical.Kind   `json:"kind"`
	Processed int              `json:"processed"`
	Matched   int              `json:"matched"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Unmapped  []UnmappedEntity `json:"unmapped"`
	Errors    []ItemError      `json:"errors"`
}

func (r *KindResult) addError(kind canonical.Kind, provider canonical.Provider, ref string, err error) {
	r.Errors = append(r.Errors, ItemError{Kind: kind, Provider: provider, Ref: ref, Message: err.Error()})
}

func (r *KindResult) merge(other KindResult) {
	r.Processed += other.Processed
	r.Matched += other.Matched
	r.Created += other.Created
	r.Updated += other.Updated
	r.Unmapped = append(r.Unmapped, other.Unmapped...)
	r.Errors = append(r.Errors, other.Errors...)
}

type EventIngestResult struct {
	Fixtures int         `json:"fixtures"`
	Fetched  int         `json:"fetched"`
	Inserted int         `json:"inserted"`
	Skipped  int         `json:"skipped"`
	Errors   []ItemError `json:"errors"`
}

type RunResult struct {
	RunID      string             `json:"run_id"`
	Mode       ReconcileMode      `json:"mode"`
	DryRun     bool               `json:"dry_run"`
	Leagues    []string           `json:"leagues"`
	Kinds      []KindResult       `json:"kinds"`
	Events     *EventIngestResult `json:"events,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// Kind returns the result for one kind, or an empty result if the pass never
// touched it.
func (r RunResult) Kind(kind canonical.Kind) KindResult {
	for _, item := range r.Kinds {
		if item.Kind == kind {
			return item
		}
	}
	return KindResult{Kind: kind}
}

func (r RunResult) ErrorCount() int {
	total := 0
	for _, item := range r.Kinds {
		total += len(item.Errors)
	}
	if r.Events != nil {
		total += len(r.Events.Errors)
	}
	return total
}

type ReconciliationConfig struct {
	PrimaryProvider canonical.Provider
	Thresholds      map[canonical.Kind]float64
	BatchSize       int
	BatchDelay      time.Duration
	// LeagueRefs are the primary provider's league ids a pass covers.
	LeagueRefs []string
	// SecondaryLeagueRefs pins a primary league id to the secondary provider's
	// league id. Unpinned leagues are matched against the secondary's full list.
	SecondaryLeagueRefs map[string]string
}

const defaultReconcileBatchSize = 100

func normalizeReconciliationConfig(cfg ReconciliationConfig) ReconciliationConfig {
	if cfg.PrimaryProvider == "" {
		cfg.PrimaryProvider = canonical.ProviderSportMonks
	}
	thresholds := make(map[canonical.Kind]float64, len(canonical.DependencyOrder()))
	for _, kind := range canonical.DependencyOrder() {
		thresholds[kind] = matching.DefaultThreshold(kind)
		if v, ok := cfg.Thresholds[kind]; ok && v > 0 && v < 1 {
			thresholds[kind] = v
		}
	}
	cfg.Thresholds = thresholds
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultReconcileBatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return cfg
}

type ReconciliationDeps struct {
	Providers []Provider
	Entities  canonical.Repository
	Mappings  mapping.Repository
	Rosters   roster.Repository
	Events    event.Repository
	Matcher   *matching.Matcher
	IDs       id.Generator
}

type ReconciliationService struct {
	primary   Provider
	secondary Provider
	entities  canonical.Repository
	mappings  mapping.Repository
	rosters   roster.Repository
	events    event.Repository
	matcher   *matching.Matcher
	ids       id.Generator
	cfg       ReconciliationConfig
	logger    *logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewReconciliationService(deps ReconciliationDeps, cfg ReconciliationConfig, logger *logging.Logger) (*ReconciliationService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = normalizeReconciliationConfig(cfg)

	if len(deps.Providers) != 2 {
		return nil, fmt.Errorf("%w: reconciliation needs exactly two providers, got %d", ErrInvalidInput, len(deps.Providers))
	}
	var primary, secondary Provider
	for _, provider := range deps.Providers {
		if provider == nil {
			return nil, fmt.Errorf("%w: provider is nil", ErrInvalidInput)
		}
		if provider.Name() == cfg.PrimaryProvider {
			primary = provider
		} else {
			secondary = provider
		}
	}
	if primary == nil || secondary == nil {
		return nil, fmt.Errorf("%w: primary provider %q is not configured", ErrInvalidInput, cfg.PrimaryProvider)
	}
	if deps.Entities == nil || deps.Mappings == nil || deps.Rosters == nil || deps.Events == nil {
		return nil, fmt.Errorf("%w: reconciliation repositories are not fully configured", ErrInvalidInput)
	}

	matcher := deps.Matcher
	if matcher == nil {
		matcher = matching.Default()
	}
	ids := deps.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator("")
	}

	return &ReconciliationService{
		primary:   primary,
		secondary: secondary,
		entities:  deps.Entities,
		mappings:  deps.Mappings,
		rosters:   deps.Rosters,
		events:    deps.Events,
		matcher:   matcher,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// reconcileRun collects results for one Run call. Its cache is shared by every
// league pipeline of the run.
type reconcileRun struct {
	id     string
	mode   ReconcileMode
	dryRun bool
	logger *logging.Logger
	cache  *passCache

	mu      sync.Mutex
	kinds   map[canonical.Kind]*KindResult
	leagues []string
	events  *EventIngestResult
}

func (r *reconcileRun) report(res KindResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.kinds[res.Kind]
	if !ok {
		current = &KindResult{Kind: res.Kind}
		r.kinds[res.Kind] = current
	}
	current.merge(res)
}

func (r *reconcileRun) addLeague(leagueID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leagues = append(r.leagues, leagueID)
}

func (r *reconcileRun) result(startedAt, finishedAt time.Time) RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := RunResult{
		RunID:      r.id,
		Mode:       r.mode,
		DryRun:     r.dryRun,
		Leagues:    append([]string(nil), r.leagues...),
		Kinds:      make([]KindResult, 0, len(r.kinds)),
		Events:     r.events,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	sort.Strings(out.Leagues)
	for _, kind := range canonical.DependencyOrder() {
		if res, ok := r.kinds[kind]; ok {
			out.Kinds = append(out.Kinds, *res)
		}
	}
	return out
}

// Run executes one reconciliation pass. Per-record problems land in the result;
// only invalid input, setup failures and cancellation return an error.
func (s *ReconciliationService) Run(ctx context.Context, input RunInput) (result RunResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.Run",
		attribute.String("reconcile.mode", string(input.Mode)),
		attribute.Bool("reconcile.dry_run", input.DryRun),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	if err := validateInput(ctx, input); err != nil {
		return RunResult{}, err
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return RunResult{}, fmt.Errorf("generate run id: %w", err)
	}
	run := &reconcileRun{
		id:     runID,
		mode:   input.Mode,
		dryRun: input.DryRun,
		logger: s.logger.With("run_id", runID, "mode", string(input.Mode), "dry_run", input.DryRun),
		kinds:  make(map[canonical.Kind]*KindResult),
		cache:  newPassCache(),
	}
	startedAt := s.now()
	run.logger.InfoContext(ctx, "reconciliation pass started",
		"primary", string(s.primary.Name()),
		"secondary", string(s.secondary.Name()),
	)

	switch input.Mode {
	case ReconcileModeLeagues:
		if _, err := s.runLeagueStage(ctx, run, s.cfg.LeagueRefs); err != nil {
			return RunResult{}, err
		}
	case ReconcileModeTeams:
		target, err := s.resolveLeagueTarget(ctx, run, input.LeagueID)
		if err != nil {
			return RunResult{}, err
		}
		if err := s.runLeaguePipeline(ctx, run, target, false); err != nil {
			return RunResult{}, err
		}
	case ReconcileModeFull:
		targets, err := s.runLeagueStage(ctx, run, s.cfg.LeagueRefs)
		if err != nil {
			return RunResult{}, err
		}
		if err := s.runPipelines(ctx, run, targets); err != nil {
			return RunResult{}, err
		}
	case ReconcileModeEvents:
		if err := s.runEventIngest(ctx, run, input.LeagueID); err != nil {
			return RunResult{}, err
		}
	}

	result = run.result(startedAt, s.now())
	run.logger.InfoContext(ctx, "reconciliation pass finished",
		"leagues", len(result.Leagues),
		"errors", result.ErrorCount(),
		"duration_ms", result.FinishedAt.Sub(startedAt).Milliseconds(),
	)
	return result, nil
}

// runPipelines runs the league pipelines one after another. Leagues can list
// the same team, so two pipelines must never stage the same canonical row.
func (s *ReconciliationService) runPipelines(ctx context.Context, run *reconcileRun, targets []leagueTarget) error {
	if len(targets) == 0 {
		return nil
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return fmt.Errorf("create pipeline pool: %w", err)
	}
	defer pool.Release()

	var firstErr error
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := target
		done := make(chan error, 1)
		if err := pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("league %s pipeline panicked: %v", target.league.ID, r)
				}
			}()
			done <- s.runLeaguePipeline(ctx, run, target, true)
		}); err != nil {
			return fmt.Errorf("submit league pipeline: %w", err)
		}
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolveLeagueTarget finds the league for a teams-mode pass. Unknown leagues
// are reconciled first when raw is a configured primary league id.
func (s *ReconciliationService) resolveLeagueTarget(ctx context.Context, run *reconcileRun, raw string) (leagueTarget, error) {
	raw = strings.TrimSpace(raw)
	byID, err := s.entities.Find(ctx, canonical.Filter{Kind: canonical.KindLeague, IDs: []string{raw}})
	if err != nil {
		return leagueTarget{}, fmt.Errorf("find league id=%s: %w", raw, err)
	}
	ref := raw
	if len(byID) > 0 {
		ref = byID[0].SourceID(s.primary.Name())
	}
	if ref == "" {
		return leagueTarget{}, fmt.Errorf("%w: league %s has no %s id", ErrNotFound, raw, s.primary.Name())
	}

	targets, err := s.runLeagueStage(ctx, run, []string{ref})
	if err != nil {
		return leagueTarget{}, err
	}
	for _, target := range targets {
		if target.league.SourceID(s.primary.Name()) == ref {
			return target, nil
		}
	}
	return leagueTarget{}, fmt.Errorf("%w: league %s could not be reconciled", ErrNotFound, raw)
}

func entityIDPrefix(kind canonical.Kind) string {
	switch kind {
	case canonical.KindLeague:
		return "lg_"
	case canonical.KindTeam:
		return "tm_"
	case canonical.KindPlayer:
		return "pl_"
	case canonical.KindFixture:
		return "fx_"
	default:
		return ""
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
