package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config stores runtime configuration for the reconcile jobs.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	StoreDriver             string
	DBURL                   string
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int
	RedisURL                string
	PayloadCacheTTL         time.Duration

	UptraceEnabled         bool
	UptraceDSN             string
	UptraceLogsEnabled     bool
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeBasicAuthUser string
	PyroscopeBasicAuthPass string
	PyroscopeUploadRate    time.Duration

	SportMonksEnabled               bool
	SportMonksBaseURL               string
	SportMonksToken                 string
	SportMonksTimeout               time.Duration
	SportMonksMaxRetries            int
	SportMonksCircuitEnabled        bool
	SportMonksCircuitFailureCount   int
	SportMonksCircuitOpenTimeout    time.Duration
	SportMonksCircuitHalfOpenMaxReq int
	SportMonksRateLimit             int
	SportMonksRateWindow            time.Duration
	SportMonksLeagueIDs             []string

	TheSportsDBEnabled     bool
	TheSportsDBBaseURL     string
	TheSportsDBAPIKey      string
	TheSportsDBTimeout     time.Duration
	TheSportsDBMaxRetries  int
	TheSportsDBRateLimit   int
	TheSportsDBRateWindow  time.Duration
	TheSportsDBLeagueIDMap map[string]string

	ReconcilePrimaryProvider canonical.Provider
	ReconcileThresholds      map[canonical.Kind]float64
	ReconcileWeightName      float64
	ReconcileWeightCode      float64
	ReconcileWeightContext   float64
	ReconcileCodeScore       float64
	ReconcileBatchSize       int
	ReconcileBatchDelay      time.Duration

	JerseyStrategy string
	JerseyKeeper   string
	DedupBatchSize int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormatDefault := "console"
	if appEnv != EnvDev {
		logFormatDefault = "json"
	}
	logFormat := strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logFormatDefault)))
	if logFormat != "json" && logFormat != "console" {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", logFormat)
	}

	storeDriver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreDriverPostgres)))
	if storeDriver != StoreDriverPostgres && storeDriver != StoreDriverMemory {
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", storeDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == StoreDriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
	}
	dbDisablePreparedBinary, err := getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true)
	if err != nil {
		return Config{}, err
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	payloadCacheTTL, err := getEnvAsDuration("PAYLOAD_CACHE_TTL", "30m")
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := getEnvAsBool("UPTRACE_LOGS_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	sportMonksEnabled, err := getEnvAsBool("SPORTMONKS_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	sportMonksToken := strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", ""))
	if sportMonksEnabled && sportMonksToken == "" {
		return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required when SPORTMONKS_ENABLED=true")
	}
	sportMonksTimeout, err := getEnvAsDuration("SPORTMONKS_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	if sportMonksTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_TIMEOUT must be > 0")
	}
	sportMonksMaxRetries, err := getEnvAsInt("SPORTMONKS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_MAX_RETRIES: %w", err)
	}
	if sportMonksMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_MAX_RETRIES must be >= 0")
	}
	sportMonksCircuitEnabled, err := getEnvAsBool("SPORTMONKS_CIRCUIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	sportMonksCircuitFailureCount, err := getEnvAsInt("SPORTMONKS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sportMonksCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sportMonksCircuitOpenTimeout, err := getEnvAsDuration("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	sportMonksCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	sportMonksRateLimit, err := getEnvAsInt("SPORTMONKS_RATE_LIMIT", 3000)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_RATE_LIMIT: %w", err)
	}
	sportMonksRateWindow, err := getEnvAsDuration("SPORTMONKS_RATE_WINDOW", "1h")
	if err != nil {
		return Config{}, err
	}
	if sportMonksRateLimit < 0 || sportMonksRateWindow < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_RATE_LIMIT and SPORTMONKS_RATE_WINDOW must be >= 0")
	}

	theSportsDBEnabled, err := getEnvAsBool("THESPORTSDB_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	theSportsDBTimeout, err := getEnvAsDuration("THESPORTSDB_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	if theSportsDBTimeout <= 0 {
		return Config{}, fmt.Errorf("THESPORTSDB_TIMEOUT must be > 0")
	}
	theSportsDBMaxRetries, err := getEnvAsInt("THESPORTSDB_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_MAX_RETRIES: %w", err)
	}
	theSportsDBRateLimit, err := getEnvAsInt("THESPORTSDB_RATE_LIMIT", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_RATE_LIMIT: %w", err)
	}
	theSportsDBRateWindow, err := getEnvAsDuration("THESPORTSDB_RATE_WINDOW", "1m")
	if err != nil {
		return Config{}, err
	}
	if theSportsDBRateLimit < 0 || theSportsDBRateWindow < 0 {
		return Config{}, fmt.Errorf("THESPORTSDB_RATE_LIMIT and THESPORTSDB_RATE_WINDOW must be >= 0")
	}
	theSportsDBLeagueIDMap, err := parseRefMap(getEnv("THESPORTSDB_LEAGUE_ID_MAP", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_LEAGUE_ID_MAP: %w", err)
	}

	primary := canonical.Provider(strings.ToLower(strings.TrimSpace(getEnv("RECONCILE_PRIMARY_PROVIDER", string(canonical.ProviderSportMonks)))))
	if primary != canonical.ProviderSportMonks && primary != canonical.ProviderTheSportsDB {
		return Config{}, fmt.Errorf("invalid RECONCILE_PRIMARY_PROVIDER %q", primary)
	}

	thresholds := make(map[canonical.Kind]float64, 4)
	for _, kind := range canonical.DependencyOrder() {
		key := "RECONCILE_THRESHOLD_" + strings.ToUpper(string(kind))
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", key, err)
		}
		if value <= 0 || value >= 1 {
			return Config{}, fmt.Errorf("%s must be within (0, 1)", key)
		}
		thresholds[kind] = value
	}

	weightName, err := getEnvAsFloat("RECONCILE_WEIGHT_NAME", 0.5)
	if err != nil {
		return Config{}, err
	}
	weightCode, err := getEnvAsFloat("RECONCILE_WEIGHT_CODE", 0.3)
	if err != nil {
		return Config{}, err
	}
	weightContext, err := getEnvAsFloat("RECONCILE_WEIGHT_CONTEXT", 0.15)
	if err != nil {
		return Config{}, err
	}
	codeScore, err := getEnvAsFloat("RECONCILE_CODE_SCORE", 0.92)
	if err != nil {
		return Config{}, err
	}

	batchSize, err := getEnvAsInt("RECONCILE_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_BATCH_SIZE: %w", err)
	}
	if batchSize <= 0 {
		return Config{}, fmt.Errorf("RECONCILE_BATCH_SIZE must be > 0")
	}
	batchDelay, err := getEnvAsDuration("RECONCILE_BATCH_DELAY", "0s")
	if err != nil {
		return Config{}, err
	}
	if batchDelay < 0 {
		return Config{}, fmt.Errorf("RECONCILE_BATCH_DELAY must be >= 0")
	}
	dedupBatchSize, err := getEnvAsInt("DEDUP_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse DEDUP_BATCH_SIZE: %w", err)
	}
	if dedupBatchSize <= 0 {
		return Config{}, fmt.Errorf("DEDUP_BATCH_SIZE must be > 0")
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "allleaguesfans-reconcile"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:      logFormat,

		StoreDriver:             storeDriver,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		DBMaxOpenConns:          dbMaxOpenConns,
		RedisURL:                strings.TrimSpace(getEnv("REDIS_URL", "")),
		PayloadCacheTTL:         payloadCacheTTL,

		UptraceEnabled:         uptraceEnabled,
		UptraceDSN:             uptraceDSN,
		UptraceLogsEnabled:     uptraceLogsEnabled,
		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", "allleaguesfans-reconcile"),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser: getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPass: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		SportMonksEnabled:               sportMonksEnabled,
		SportMonksBaseURL:               getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football"),
		SportMonksToken:                 sportMonksToken,
		SportMonksTimeout:               sportMonksTimeout,
		SportMonksMaxRetries:            sportMonksMaxRetries,
		SportMonksCircuitEnabled:        sportMonksCircuitEnabled,
		SportMonksCircuitFailureCount:   sportMonksCircuitFailureCount,
		SportMonksCircuitOpenTimeout:    sportMonksCircuitOpenTimeout,
		SportMonksCircuitHalfOpenMaxReq: sportMonksCircuitHalfOpenMaxReq,
		SportMonksRateLimit:             sportMonksRateLimit,
		SportMonksRateWindow:            sportMonksRateWindow,
		SportMonksLeagueIDs:             splitCSV(getEnv("SPORTMONKS_LEAGUE_IDS", "")),

		TheSportsDBEnabled:     theSportsDBEnabled,
		TheSportsDBBaseURL:     getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json"),
		TheSportsDBAPIKey:      getEnv("THESPORTSDB_API_KEY", "3"),
		TheSportsDBTimeout:     theSportsDBTimeout,
		TheSportsDBMaxRetries:  theSportsDBMaxRetries,
		TheSportsDBRateLimit:   theSportsDBRateLimit,
		TheSportsDBRateWindow:  theSportsDBRateWindow,
		TheSportsDBLeagueIDMap: theSportsDBLeagueIDMap,

		ReconcilePrimaryProvider: primary,
		ReconcileThresholds:      thresholds,
		ReconcileWeightName:      weightName,
		ReconcileWeightCode:      weightCode,
		ReconcileWeightContext:   weightContext,
		ReconcileCodeScore:       codeScore,
		ReconcileBatchSize:       batchSize,
		ReconcileBatchDelay:      batchDelay,

		JerseyStrategy: getEnv("JERSEY_STRATEGY", "minimal_change"),
		JerseyKeeper:   getEnv("JERSEY_KEEPER", "lowest_id"),
		DedupBatchSize: dedupBatchSize,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseRefMap reads "primary_id:secondary_id" pairs.
func parseRefMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected primary_id:secondary_id", item)
		}
		key, value := strings.TrimSpace(segments[0]), strings.TrimSpace(segments[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("empty id in item %q", item)
		}
		out[key] = value
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
