package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// DefaultTimeout bounds every single request unless overridden.
const DefaultTimeout = 15 * time.Second

// TransportConfig tunes the scrape transport.
type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string
	Retries   int // transport-level retries (connection errors, 5xx)
	Limiter   *RateLimiter
	Breaker   *CircuitBreaker
	Logger    *slog.Logger
	Client    *http.Client
}

// Transport performs GET requests against coinmarketcap with a browser-like
// User-Agent, a request rate limit and a circuit breaker. Non-200 statuses
// are translated into typed errors; HTTP 429 becomes model.RateLimitError.
type Transport struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	retries   int
	limiter   *RateLimiter
	breaker   *CircuitBreaker
	logger    *slog.Logger
}

// NewTransport creates a transport with sane defaults for missing fields.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = PlatformUserAgent()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(10, 20)
	}
	if cfg.Breaker == nil {
		cfg.Breaker = NewCircuitBreaker(DefaultCircuitBreakerConfig("coinmarketcap"))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Transport{
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		retries:   cfg.Retries,
		limiter:   cfg.Limiter,
		breaker:   cfg.Breaker,
		logger:    cfg.Logger,
	}
}

// Timeout returns the per-request timeout the transport enforces.
func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

// Get fetches url and returns the response body. A non-200 status yields a
// typed error immediately; connection failures and 5xx statuses are retried
// with exponential backoff up to the configured retry count.
func (t *Transport) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(attempt - 1)
			t.logger.Debug("retrying request",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := t.doGet(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// GetStream fetches url and returns the raw body reader, for binary
// downloads. The caller owns the reader and must close it.
func (t *Transport) GetStream(ctx context.Context, url string) (io.ReadCloser, error) {
	if !t.breaker.Allow() {
		return nil, fmt.Errorf("request to %s rejected: circuit open", url)
	}
	t.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.breaker.RecordFailure()
		return nil, model.NewHTTPError(resp.StatusCode, url)
	}
	t.breaker.RecordSuccess()
	return resp.Body, nil
}

func (t *Transport) doGet(ctx context.Context, url string) ([]byte, error) {
	if !t.breaker.Allow() {
		return nil, fmt.Errorf("request to %s rejected: circuit open", url)
	}
	t.limiter.Wait()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.breaker.RecordFailure()
		return nil, model.NewHTTPError(resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, err
	}

	t.breaker.RecordSuccess()
	return body, nil
}

// retryable reports whether an error is worth another attempt. Client-side
// statuses (404, 429...) are surfaced immediately.
func retryable(err error) bool {
	switch e := err.(type) {
	case *model.RateLimitError:
		return false
	case *model.HTTPError:
		return e.StatusCode >= 500
	}
	// Connection-level failure.
	return true
}
