package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/systic2/allleaguesfans-sub001/external/sportmonks"
	"github.com/systic2/allleaguesfans-sub001/external/thesportsdb"
	"github.com/systic2/allleaguesfans-sub001/internal/config"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/matching"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	"github.com/systic2/allleaguesfans-sub001/internal/infrastructure/payloadcache"
	"github.com/systic2/allleaguesfans-sub001/internal/infrastructure/repository/memory"
	"github.com/systic2/allleaguesfans-sub001/internal/infrastructure/repository/postgres"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/cache"
	idgen "github.com/systic2/allleaguesfans-sub001/internal/platform/id"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/ratelimit"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/resilience"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

const (
	retryBaseDelay  = 500 * time.Millisecond
	retryMaxDelay   = 5 * time.Second
	tsdbCircuitOpen = 30 * time.Second
)

// Container holds the services a reconcile job can run. Reconciliation is nil
// when either provider is disabled.
type Container struct {
	Reconciliation *usecase.ReconciliationService
	EventDedup     *usecase.EventDedupService
	Jersey         *usecase.JerseyService
	Mappings       *usecase.MappingService

	closers []func() error
}

type stores struct {
	entities canonical.Repository
	mappings mapping.Repository
	rosters  roster.Repository
	events   event.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{}

	repos, err := c.openStores(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	jerseyDefaults, err := jerseyOptions(cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.EventDedup = usecase.NewEventDedupService(repos.events, cfg.DedupBatchSize, logger.Named("dedup"))
	c.Jersey = usecase.NewJerseyService(repos.rosters, repos.entities, jerseyDefaults, logger.Named("jersey"))
	c.Mappings = usecase.NewMappingService(repos.mappings, repos.entities, logger.Named("mapping"))

	if !cfg.SportMonksEnabled || !cfg.TheSportsDBEnabled {
		logger.Warn("reconciliation disabled",
			"sportmonks_enabled", cfg.SportMonksEnabled,
			"thesportsdb_enabled", cfg.TheSportsDBEnabled,
		)
		return c, nil
	}

	payloads, err := c.openPayloadCache(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	matcher, err := buildMatcher(cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	providers := []usecase.Provider{
		newSportMonksClient(cfg, payloads, logger.Named("sportmonks")),
		newTheSportsDBClient(cfg, payloads, logger.Named("thesportsdb")),
	}
	leagueRefs, secondaryRefs := leagueRefsFor(cfg)
	c.Reconciliation, err = usecase.NewReconciliationService(usecase.ReconciliationDeps{
		Providers: providers,
		Entities:  repos.entities,
		Mappings:  repos.mappings,
		Rosters:   repos.rosters,
		Events:    repos.events,
		Matcher:   matcher,
		IDs:       idgen.NewUUIDGenerator(""),
	}, usecase.ReconciliationConfig{
		PrimaryProvider:     cfg.ReconcilePrimaryProvider,
		Thresholds:          cfg.ReconcileThresholds,
		BatchSize:           cfg.ReconcileBatchSize,
		BatchDelay:          cfg.ReconcileBatchDelay,
		LeagueRefs:          leagueRefs,
		SecondaryLeagueRefs: secondaryRefs,
	}, logger.Named("reconcile"))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("build reconciliation service: %w", err)
	}

	return c, nil
}

// Close releases the database pool and cache connections.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, results are discarded on exit")
		return stores{
			entities: memory.NewCanonicalRepository(nil),
			mappings: memory.NewMappingRepository(),
			rosters:  memory.NewRosterRepository(nil),
			events:   memory.NewEventRepository(nil),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return stores{}, err
	}
	c.closers = append(c.closers, db.Close)
	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL), "max_open_conns", cfg.DBMaxOpenConns)

	return stores{
		entities: postgres.NewCanonicalRepository(db),
		mappings: postgres.NewMappingRepository(db),
		rosters:  postgres.NewRosterRepository(db),
		events:   postgres.NewEventRepository(db),
	}, nil
}

func (c *Container) openPayloadCache(ctx context.Context, cfg config.Config, logger *logging.Logger) (cache.PayloadCache, error) {
	if cfg.PayloadCacheTTL <= 0 {
		return cache.NopPayloads{}, nil
	}
	if cfg.RedisURL == "" {
		return cache.NewMemoryPayloads(), nil
	}
	client, err := payloadcache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect payload cache: %w", err)
	}
	c.closers = append(c.closers, client.Close)
	logger.Info("payload cache connected", "ttl", cfg.PayloadCacheTTL)
	return client, nil
}

func buildMatcher(cfg config.Config) (*matching.Matcher, error) {
	scorer, err := matching.NewScorer(matching.Weights{
		Name:    cfg.ReconcileWeightName,
		Code:    cfg.ReconcileWeightCode,
		Context: cfg.ReconcileWeightContext,
	})
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	matcher, err := matching.NewMatcher(scorer, cfg.ReconcileCodeScore)
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}
	return matcher, nil
}

func jerseyOptions(cfg config.Config) (roster.Options, error) {
	strategy, err := roster.ParseStrategy(cfg.JerseyStrategy)
	if err != nil {
		return roster.Options{}, fmt.Errorf("JERSEY_STRATEGY: %w", err)
	}
	keeper, err := roster.ParseKeeper(cfg.JerseyKeeper)
	if err != nil {
		return roster.Options{}, fmt.Errorf("JERSEY_KEEPER: %w", err)
	}
	return roster.Options{Strategy: strategy, Keeper: keeper}, nil
}

func newSportMonksClient(cfg config.Config, payloads cache.PayloadCache, logger *logging.Logger) *sportmonks.Client {
	return sportmonks.NewClient(sportmonks.ClientConfig{
		BaseURL: cfg.SportMonksBaseURL,
		Token:   cfg.SportMonksToken,
		Timeout: cfg.SportMonksTimeout,
		Retry: resilience.RetryConfig{
			MaxRetries: cfg.SportMonksMaxRetries,
			BaseDelay:  retryBaseDelay,
			MaxDelay:   retryMaxDelay,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonksCircuitEnabled,
			FailureThreshold: cfg.SportMonksCircuitFailureCount,
			OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMaxReq,
		},
		Limiter:    ratelimit.NewSlidingWindow(cfg.SportMonksRateLimit, cfg.SportMonksRateWindow),
		Payloads:   payloads,
		PayloadTTL: cfg.PayloadCacheTTL,
		Logger:     logger,
	})
}

func newTheSportsDBClient(cfg config.Config, payloads cache.PayloadCache, logger *logging.Logger) *thesportsdb.Client {
	return thesportsdb.NewClient(thesportsdb.ClientConfig{
		BaseURL: cfg.TheSportsDBBaseURL,
		APIKey:  cfg.TheSportsDBAPIKey,
		Timeout: cfg.TheSportsDBTimeout,
		Retry: resilience.RetryConfig{
			MaxRetries: cfg.TheSportsDBMaxRetries,
			BaseDelay:  retryBaseDelay,
			MaxDelay:   retryMaxDelay,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      tsdbCircuitOpen,
			HalfOpenMaxReq:   1,
		},
		Limiter:    ratelimit.NewSlidingWindow(cfg.TheSportsDBRateLimit, cfg.TheSportsDBRateWindow),
		Payloads:   payloads,
		PayloadTTL: cfg.PayloadCacheTTL,
		Logger:     logger,
	})
}

// leagueRefsFor returns the primary provider's league ids and the pinned
// secondary id for each. The env map is keyed by SportMonks id.
func leagueRefsFor(cfg config.Config) ([]string, map[string]string) {
	if cfg.ReconcilePrimaryProvider == canonical.ProviderSportMonks {
		return cfg.SportMonksLeagueIDs, cfg.TheSportsDBLeagueIDMap
	}

	refs := make([]string, 0, len(cfg.SportMonksLeagueIDs))
	pinned := make(map[string]string, len(cfg.TheSportsDBLeagueIDMap))
	for _, smID := range cfg.SportMonksLeagueIDs {
		tsdbID, ok := cfg.TheSportsDBLeagueIDMap[smID]
		if !ok {
			continue
		}
		refs = append(refs, tsdbID)
		pinned[tsdbID] = smID
	}
	return refs, pinned
}
