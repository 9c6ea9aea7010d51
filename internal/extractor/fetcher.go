package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultUserAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodySize = 10 << 20
)

// Options tune a single fetch. Zero values fall back to the fetcher defaults.
type Options struct {
	Timeout    time.Duration `json:"timeout"`
	UserAgent  string        `json:"userAgent"`
	MaxRetries int           `json:"maxRetries"`
}

func (o Options) merge(base Options) Options {
	if o.Timeout <= 0 {
		o.Timeout = base.Timeout
	}
	if o.UserAgent == "" {
		o.UserAgent = base.UserAgent
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = base.MaxRetries
	}
	return o
}

// Fetcher downloads raw HTML with browser-like headers and bounded retries.
type Fetcher struct {
	client   *http.Client
	defaults Options
	logger   *slog.Logger
	maxBody  int64

	backoff func(attempt int) time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{},
		defaults: Options{
			Timeout:    cfg.Timeout,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
		}.merge(Options{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent, MaxRetries: DefaultMaxRetries}),
		logger:  logger.With("component", "fetcher"),
		maxBody: maxBodySize,
		backoff: exponentialBackoff,
		sleep:   sleepContext,
	}
}

// Fetch returns the body of rawURL. Network errors, timeouts and non-2xx
// responses are retried; the final failure is an *ExtractionError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	opts = opts.merge(f.defaults)

	var lastErr error
	attempt := 0
	for attempt < opts.MaxRetries {
		attempt++

		body, err := f.fetchOnce(ctx, rawURL, opts)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
		if attempt < opts.MaxRetries {
			if err := f.sleep(ctx, f.backoff(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	return "", &ExtractionError{URL: rawURL, Attempts: attempt, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	// oversized pages keep their first maxBody bytes
	if int64(len(data)) > f.maxBody {
		f.logger.Warn("page truncated", "url", rawURL, "limit", f.maxBody)
		data = data[:f.maxBody]
	}
	return string(data), nil
}

// exponentialBackoff waits 2^attempt seconds: 2s after the first failure, 4s after the second.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
