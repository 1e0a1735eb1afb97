// Package fetch implements the retrying HTTP GET primitive shared by every
// site adapter. One Client is built at process start; its headers and
// user agent never change afterwards.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/bkassahun/course-harvester/internal/metrics"
)

// baseHeaders are attached to every request, mirroring a browser catalog
// crawl. The map is read-only after init.
var baseHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// Options controls client construction.
type Options struct {
	Timeout           time.Duration
	MaxAttempts       int
	BackoffMultiplier time.Duration
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	UserAgent         string
	RotateUserAgent   bool
	// PerHostRPS throttles requests per origin host; zero disables it.
	PerHostRPS   float64
	PerHostBurst int
}

// Page is the raw result of a successful GET.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Text returns the body as a string.
func (p Page) Text() string { return string(p.Body) }

// Client issues GETs with bounded retries and exponential backoff.
type Client struct {
	opts          Options
	userAgent     string
	baseCollector *colly.Collector
	limiter       *hostLimiter
	logger        *zap.Logger
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client. Zero option fields fall back to the documented
// defaults (30s timeout, 3 attempts, 1s/1s/8s backoff).
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = time.Second
	}
	if opts.BackoffMin <= 0 {
		opts.BackoffMin = time.Second
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 8 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = pickUserAgent(opts.RotateUserAgent)
	}

	base := colly.NewCollector(colly.Async(false))
	base.AllowURLRevisit = true
	// Policy gating happens at the adapter level (IsAllowed), not per
	// request.
	base.IgnoreRobotsTxt = true
	base.UserAgent = userAgent
	base.SetRequestTimeout(opts.Timeout)
	base.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	})

	return &Client{
		opts:          opts,
		userAgent:     userAgent,
		baseCollector: base,
		limiter:       newHostLimiter(opts.PerHostRPS, opts.PerHostBurst),
		logger:        logger,
		sleep:         sleepContext,
	}
}

// UserAgent reports the string chosen at construction.
func (c *Client) UserAgent() string { return c.userAgent }

// Get fetches url, retrying transient failures up to MaxAttempts total.
// Network errors, timeouts, and HTTP status >= 400 are all retryable; once
// the attempt budget is spent the last failure is wrapped in a *FetchError.
func (c *Client) Get(ctx context.Context, url string) (Page, error) {
	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			metrics.FetchRetries.Inc()
			if err := c.sleep(ctx, c.backoff(attempt-1)); err != nil {
				return Page{}, &FetchError{URL: url, StatusCode: lastStatus, Attempts: attempt - 1, Err: err}
			}
		}
		if err := c.limiter.wait(ctx, url); err != nil {
			return Page{}, &FetchError{URL: url, StatusCode: lastStatus, Attempts: attempt - 1, Err: err}
		}
		metrics.FetchAttempts.Inc()

		page, err := c.do(ctx, url)
		if err == nil && page.StatusCode < 400 {
			return page, nil
		}
		if err == nil {
			lastStatus = page.StatusCode
			lastErr = fmt.Errorf("status %d", page.StatusCode)
		} else {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return Page{}, &FetchError{URL: url, Attempts: attempt, Err: err}
			}
			lastErr = err
		}
		c.logger.Debug("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("status", lastStatus),
			zap.Error(lastErr),
		)
	}

	metrics.FetchFailures.Inc()
	return Page{}, &FetchError{URL: url, StatusCode: lastStatus, Attempts: c.opts.MaxAttempts, Err: lastErr}
}

// backoff computes the wait after the given 1-based failed attempt:
// min(max, multiplier * 2^(attempt-1)), clamped below by the minimum.
func (c *Client) backoff(attempt int) time.Duration {
	wait := float64(c.opts.BackoffMultiplier) * math.Pow(2, float64(attempt-1))
	if wait > float64(c.opts.BackoffMax) {
		wait = float64(c.opts.BackoffMax)
	}
	if wait < float64(c.opts.BackoffMin) {
		wait = float64(c.opts.BackoffMin)
	}
	return time.Duration(wait)
}

// do executes exactly one GET through a collector clone.
func (c *Client) do(ctx context.Context, url string) (Page, error) {
	collector := c.baseCollector.Clone()

	var (
		page     Page
		fetchErr error
		got      bool
	)
	collector.OnRequest(func(r *colly.Request) {
		for k, v := range baseHeaders {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			headers = r.Headers.Clone()
		}
		page = Page{
			URL:        url,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte(nil), r.Body...),
		}
		got = true
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			page = Page{URL: url, FinalURL: url, StatusCode: r.StatusCode}
			got = true
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		visitErr := collector.Visit(url)
		collector.Wait()
		done <- visitErr
	}()

	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	case err := <-done:
		// A status >= 400 surfaces both through OnError and as a Visit
		// error; the captured status takes precedence so it can be
		// classified as a retryable application failure.
		if err != nil && !got {
			return Page{}, fmt.Errorf("visit %s: %w", url, err)
		}
	}
	if fetchErr != nil && !got {
		return Page{}, fetchErr
	}
	if !got {
		return Page{}, fmt.Errorf("fetch %s: no response", url)
	}
	return page, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
