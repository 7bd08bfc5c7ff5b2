package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Kuria-byte/leaders-scraping/internal/cache"
	"github.com/Kuria-byte/leaders-scraping/internal/robots"
	"github.com/Kuria-byte/leaders-scraping/internal/worker"
)

// fetchSleepFunc is swapped out in tests to avoid real backoff waits
var fetchSleepFunc = time.Sleep

// ErrRobotsDisallowed marks URLs robots.txt forbids fetching
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// StatusError reports a non-2xx HTTP response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Fetcher retrieves pages from the source site. It checks robots.txt,
// paces requests per domain, serves repeat requests from cache, and
// retries transient failures.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	retries    int
	pageCache  cache.Cache     // nil disables caching
	limiter    *worker.Limiter // nil disables pacing
	robots     *robots.Checker // nil disables robots checks
	log        *zap.Logger
}

// NewFetcher creates a fetcher. pageCache, limiter, and robotsChecker may be
// nil to disable the corresponding behavior.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, retries int,
	pageCache cache.Cache, limiter *worker.Limiter, robotsChecker *robots.Checker, log *zap.Logger) *Fetcher {
	if retries < 1 {
		retries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		retries:   retries,
		pageCache: pageCache,
		limiter:   limiter,
		robots:    robotsChecker,
		log:       log,
	}
}

// Fetch performs a single GET of the URL and returns the page body
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

// FetchWithRetry fetches a URL with cache, robots, and rate-limit handling,
// retrying transient failures with a linear backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (string, error) {
	if f.pageCache != nil {
		if body, found := f.pageCache.Get(cache.PageKey(rawURL)); found {
			return string(body), nil
		}
	}

	crawlDelay := time.Duration(0)
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		crawlDelay = delay
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= f.retries; attempt++ {
		attempts++
		if f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
				return "", fmt.Errorf("rate limit: %w", err)
			}
		}

		body, err := f.Fetch(ctx, rawURL)
		if err == nil {
			if f.pageCache != nil {
				if cacheErr := f.pageCache.Set(cache.PageKey(rawURL), []byte(body), 0); cacheErr != nil {
					f.log.Warn("cache write failed", zap.String("url", rawURL), zap.Error(cacheErr))
				}
			}
			return body, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}

		f.log.Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.retries),
			zap.Error(err))

		if attempt < f.retries {
			fetchSleepFunc(time.Duration(attempt) * 2 * time.Second)
		}
	}

	return "", fmt.Errorf("fetch %s after %d attempts: %w", rawURL, attempts, lastErr)
}

// retryable reports whether an error is worth another attempt: transport
// failures, 429, and 5xx. Client errors like 404 are permanent.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
