package sportmonks

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/cache"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/ratelimit"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/resilience"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL    = "https://api.sportmonks.com/v3/football"
	defaultPerPage    = 50
	defaultMaxPages   = 20
	maxResponseBytes  = 6 << 20
	payloadCacheSpace = "sportmonks"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errSportMonksTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Limiter        *ratelimit.SlidingWindow
	Payloads       cache.PayloadCache
	PayloadTTL     time.Duration
	PerPage        int
	Logger         *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
	limiter    *ratelimit.SlidingWindow
	payloads   cache.PayloadCache
	payloadTTL time.Duration
	perPage    int
	logger     *logging.Logger
	flight     resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	payloads := cfg.Payloads
	if payloads == nil {
		payloads = cache.NopPayloads{}
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		retry:      resilience.NormalizeRetryConfig(cfg.Retry),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		limiter:    cfg.Limiter,
		payloads:   payloads,
		payloadTTL: cfg.PayloadTTL,
		perPage:    perPage,
		logger:     logger,
	}
}

// getRaw returns the response body for path. Cached payloads skip the network;
// identical concurrent requests share one call.
func (c *Client) getRaw(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	cacheKey := payloadCacheSpace + ":" + path
	if encoded := values.Encode(); encoded != "" {
		cacheKey += "?" + encoded
	}

	if raw, ok, err := c.payloads.GetBytes(ctx, cacheKey); err != nil {
		c.logger.WarnContext(ctx, "sportmonks payload cache read failed", "key", cacheKey, "error", err)
	} else if ok {
		return raw, nil
	}

	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	raw, err, _ := c.flight.Do(cacheKey, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isSportMonksCircuitFailure)
		return body, err
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sportmonks is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isSportMonksCircuitFailure(err) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	if err := c.payloads.SetBytes(ctx, cacheKey, raw, c.payloadTTL); err != nil {
		c.logger.WarnContext(ctx, "sportmonks payload cache write failed", "key", cacheKey, "error", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var out []byte
	err := resilience.Retry(ctx, c.retry, isSportMonksCircuitFailure, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: send request: %s", errSportMonksTransient, sanitizeSensitiveText(err.Error(), c.token))
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read response body: %v", errSportMonksTransient, readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			out = raw
			return nil
		}
		if isRetryableStatus(resp.StatusCode) {
			c.logger.WarnContext(ctx, "sportmonks request retryable failure",
				"url", redactAPIURL(fullURL),
				"status", resp.StatusCode,
				"attempt", attempt,
			)
			return fmt.Errorf("%w: provider status=%d body=%s", errSportMonksTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", err)
		return nil, err
	}
	return out, nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func isSportMonksCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errSportMonksTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
