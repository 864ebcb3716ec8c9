package thesportsdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/cache"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/ratelimit"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/resilience"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL    = "https://www.thesportsdb.com/api/v1/json"
	defaultAPIKey     = "3"
	defaultTimeout    = 15 * time.Second
	payloadCacheSpace = "thesportsdb"
)

var errTheSportsDBTransient = crerr.New("thesportsdb transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Limiter        *ratelimit.SlidingWindow
	Payloads       cache.PayloadCache
	PayloadTTL     time.Duration
	Logger         *logging.Logger
}

// Client talks to the v1 JSON API, where the key is a path segment.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
	limiter    *ratelimit.SlidingWindow
	payloads   cache.PayloadCache
	payloadTTL time.Duration
	logger     *logging.Logger
	flight     resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "allleaguesfans-reconcile",
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = defaultAPIKey
	}
	payloads := cfg.Payloads
	if payloads == nil {
		payloads = cache.NopPayloads{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    timeout,
		retry:      resilience.NormalizeRetryConfig(cfg.Retry),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		limiter:    cfg.Limiter,
		payloads:   payloads,
		payloadTTL: cfg.PayloadTTL,
		logger:     logger,
	}
}

func (c *Client) getRaw(ctx context.Context, endpoint string, query map[string]string) ([]byte, error) {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	target := endpoint
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	cacheKey := payloadCacheSpace + ":" + target

	if raw, ok, err := c.payloads.GetBytes(ctx, cacheKey); err != nil {
		c.logger.WarnContext(ctx, "thesportsdb payload cache read failed", "key", cacheKey, "error", err)
	} else if ok {
		return raw, nil
	}

	fullURL := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + target
	raw, err, _ := c.flight.Do(cacheKey, func() ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isTransient)
		return body, err
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: thesportsdb is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	if err := c.payloads.SetBytes(ctx, cacheKey, raw, c.payloadTTL); err != nil {
		c.logger.WarnContext(ctx, "thesportsdb payload cache write failed", "key", cacheKey, "error", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var out []byte
	err := resilience.Retry(ctx, c.retry, isTransient, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(fullURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")

		deadline := time.Now().Add(c.timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: send request: %s", errTheSportsDBTransient, c.redact(err.Error()))
		}

		status := resp.StatusCode()
		if status >= 200 && status < 300 {
			out = append([]byte(nil), resp.Body()...)
			return nil
		}
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			c.logger.WarnContext(ctx, "thesportsdb request retryable failure", "status", status, "attempt", attempt)
			return fmt.Errorf("%w: provider status=%d", errTheSportsDBTransient, status)
		}
		return fmt.Errorf("thesportsdb status=%d", status)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "thesportsdb request failed", "url", c.redact(fullURL), "error", err)
		return nil, err
	}
	return out, nil
}

// redact hides a private key path segment.
func (c *Client) redact(value string) string {
	if c.apiKey == "" || c.apiKey == defaultAPIKey {
		return value
	}
	return strings.ReplaceAll(value, "/"+c.apiKey+"/", "/REDACTED/")
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errTheSportsDBTransient)
}
