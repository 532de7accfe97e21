package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tourgo/pkg/cache"
	"tourgo/pkg/config"
	"tourgo/pkg/tracker"
	"tourgo/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("TourGo/%s (AI Tour Guide; educational project)", version.Version)

// Client handles HTTP requests with per-provider queuing, caching, and
// tracking. Each provider (API host) gets one serial worker so concurrent
// agents never hammer a single upstream in parallel.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff
	retries    int

	// Queues per provider (domain)
	queues map[string]chan job
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(cfg *config.RequestConfig, c cache.Cacher, t *tracker.Tracker) *Client {
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout)},
		cache:      c,
		tracker:    t,
		backoff:    NewProviderBackoff(time.Duration(cfg.Backoff.BaseDelay), time.Duration(cfg.Backoff.MaxDelay)),
		retries:    retries,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	provider, err := providerOf(u)
	if err != nil {
		return nil, err
	}

	// Check cache (only if key is provided)
	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.enqueue(ctx, provider, job{req: req, headers: headers, cacheKey: cacheKey})
}

// Post performs a POST request with queuing.
func (c *Client) Post(ctx context.Context, u string, body []byte, contentType string) ([]byte, error) {
	return c.PostWithHeaders(ctx, u, body, map[string]string{"Content-Type": contentType})
}

// PostWithHeaders performs a POST request with custom headers and queuing.
func (c *Client) PostWithHeaders(ctx context.Context, u string, body []byte, headers map[string]string) ([]byte, error) {
	provider, err := providerOf(u)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.enqueue(ctx, provider, job{req: req, headers: headers})
}

func (c *Client) enqueue(ctx context.Context, provider string, j job) ([]byte, error) {
	j.respChan = make(chan jobResult, 1)
	c.dispatch(provider, j)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-j.respChan:
		return res.body, res.err
	}
}

func providerOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	return normalizeProvider(parsed.Host), nil
}

func normalizeProvider(host string) string {
	// Group subdomains into one provider so per-provider serialization and
	// backoff see a single upstream.
	switch {
	case strings.HasSuffix(host, ".wikipedia.org") || host == "wikipedia.org":
		return "wikipedia"
	case strings.HasSuffix(host, ".spotify.com") || host == "spotify.com":
		return "spotify"
	case host == "maps.googleapis.com":
		return "googlemaps"
	case strings.HasSuffix(host, "googleapis.com"):
		return "youtube"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queues[provider]
	if !ok {
		// Create new queue and start worker
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could even enqueue
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider sequentially.
func (c *Client) worker(provider string, q <-chan job) {
	for j := range q {
		// Check context before processing
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		// Apply User-Agent (Default if not provided)
		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		body, err := c.execute(provider, j.req)

		if err == nil {
			c.tracker.TrackAPISuccess(provider)
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			c.tracker.TrackAPIFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}

		// Hardcoded safety gap to prevent hitting rate limits
		time.Sleep(100 * time.Millisecond)
	}
}

// execute attempts the request, retrying retryable failures under the
// provider's backoff budget.
func (c *Client) execute(provider string, req *http.Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.retries; attempt++ {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		c.backoff.Wait(provider)

		// Rewind the body for re-sends
		if attempt > 0 && req.GetBody != nil {
			rc, gbErr := req.GetBody()
			if gbErr != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", gbErr)
			}
			req.Body = rc
		}

		body, retryable, err := c.doOnce(req)
		if err == nil {
			c.backoff.RecordSuccess(provider)
			return body, nil
		}

		lastErr = err
		c.backoff.RecordFailure(provider)
		if !retryable {
			return nil, err
		}
		slog.Debug("Retrying request", "provider", provider, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retries, lastErr)
}

func (c *Client) doOnce(req *http.Request) (body []byte, retryable bool, err error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("upstream status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
