// Package linkverify checks the external links of a built site over HTTP.
// Results are cached (in memory or in a NATS JetStream bucket) and broken
// links can be published as events.
package linkverify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/metrics"
	"git.home.luguber.info/inful/studysite/internal/retry"
)

// ErrAlreadyRunning is returned when Check is called while a previous run
// has not finished.
var ErrAlreadyRunning = errors.New("link verification already running")

// Broken is a URL that failed verification.
type Broken struct {
	URL     string
	Status  int
	Error   string
	Sources []string
}

// Result summarizes one verification run.
type Result struct {
	Checked int // URLs requested over HTTP
	Cached  int // URLs answered from the cache
	Broken  []Broken
}

// Verifier checks external links with a bounded number of concurrent
// HEAD requests.
type Verifier struct {
	cfg        config.LinkVerification
	site       *config.Site
	cache      Cache
	httpClient *http.Client
	recorder   metrics.Recorder
	policy     retry.Policy
	now        func() time.Time

	mu      sync.Mutex
	running bool
	sem     chan struct{}
}

// NewVerifier returns a verifier for the site's link_verification settings.
// A nil cache keeps results in memory.
func NewVerifier(site *config.Site, cache Cache) *Verifier {
	cfg := site.LinkVerification
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	// Respects HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Verifier{
		cfg:   cfg,
		site:  site,
		cache: cache,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return nil
			},
		},
		recorder: metrics.NoopRecorder{},
		policy:   retry.FromConfig(cfg.Retry),
		now:      time.Now,
		sem:      make(chan struct{}, concurrency),
	}
}

func (v *Verifier) WithRecorder(r metrics.Recorder) *Verifier {
	if r != nil {
		v.recorder = r
	}
	return v
}

// WithHTTPClient replaces the HTTP client (tests use httptest clients).
func (v *Verifier) WithHTTPClient(c *http.Client) *Verifier {
	if c != nil {
		v.httpClient = c
	}
	return v
}

// Verify collects the external links below outputDir and checks them.
func (v *Verifier) Verify(ctx context.Context, outputDir string) (*Result, error) {
	targets, err := Collect(outputDir, v.cfg.SkipHosts)
	if err != nil {
		return nil, err
	}
	return v.Check(ctx, targets)
}

// Check verifies targets concurrently. Broken links in the result are
// sorted by URL. On cancellation the partial result is returned together
// with the context error.
func (v *Verifier) Check(ctx context.Context, targets []Target) (*Result, error) {
	v.mu.Lock()
	if v.running {
		v.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	v.running = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.running = false
		v.mu.Unlock()
	}()

	slog.Info("Starting external link verification", "url_count", len(targets))

	var (
		resMu sync.Mutex
		res   = &Result{}
		wg    sync.WaitGroup
	)
	record := func(o outcome) {
		resMu.Lock()
		defer resMu.Unlock()
		switch {
		case o.cached:
			res.Cached++
		default:
			res.Checked++
		}
		if o.broken != nil {
			res.Broken = append(res.Broken, *o.broken)
		}
	}

loop:
	for _, t := range targets {
		// Acquire before spawning to avoid goroutine backlogs.
		select {
		case <-ctx.Done():
			break loop
		case v.sem <- struct{}{}:
		}
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			defer func() { <-v.sem }()
			record(v.verifyTarget(ctx, t))
		}(t)
	}
	wg.Wait()

	slices.SortFunc(res.Broken, func(a, b Broken) int { return strings.Compare(a.URL, b.URL) })
	slog.Info("External link verification completed",
		"checked", res.Checked, "cached", res.Cached, "broken", len(res.Broken))
	return res, ctx.Err()
}

type outcome struct {
	cached bool
	broken *Broken
}

func (v *Verifier) verifyTarget(ctx context.Context, t Target) outcome {
	cached, err := v.cache.Get(ctx, t.URL)
	if err != nil {
		slog.Debug("Cache lookup error", "url", t.URL, "error", err)
	} else if cached.Fresh(v.now()) {
		v.recorder.IncExternalCheck("cached")
		if cached.IsValid {
			return outcome{cached: true}
		}
		b := &Broken{URL: t.URL, Status: cached.Status, Error: cached.Error, Sources: t.Sources}
		v.publish(ctx, b, cached)
		return outcome{cached: true, broken: b}
	}

	status, checkErr := v.checkLink(ctx, t.URL)
	entry := &CacheEntry{URL: t.URL, Status: status, IsValid: checkErr == nil, LastChecked: v.now()}
	var out outcome
	if checkErr != nil {
		if ctx.Err() != nil {
			return outcome{}
		}
		entry.Error = checkErr.Error()
		v.updateFailureTracking(entry, cached)
		out.broken = &Broken{URL: t.URL, Status: status, Error: entry.Error, Sources: t.Sources}
		v.recorder.IncExternalCheck("broken")
		v.publish(ctx, out.broken, entry)
	} else {
		v.recorder.IncExternalCheck("ok")
	}

	if err := v.cache.Put(ctx, entry); err != nil {
		slog.Warn("Failed to update link cache", "url", t.URL, "error", err)
	}
	return out
}

// updateFailureTracking carries the failure streak over from the previous entry.
func (v *Verifier) updateFailureTracking(entry, previous *CacheEntry) {
	entry.FailureCount = 1
	entry.FirstFailedAt = entry.LastChecked
	if previous != nil && !previous.IsValid {
		entry.FailureCount = previous.FailureCount + 1
		if !previous.FirstFailedAt.IsZero() {
			entry.FirstFailedAt = previous.FirstFailedAt
		}
	}
}

// checkLink repeats attempts while the failure looks transient.
func (v *Verifier) checkLink(ctx context.Context, linkURL string) (int, error) {
	status, err := v.attempt(ctx, linkURL)
	for n := 1; n <= v.policy.MaxRetries && err != nil && transient(status); n++ {
		if werr := v.policy.Wait(ctx, n); werr != nil {
			return status, err
		}
		slog.Debug("Retrying link check", "url", linkURL, "retry", n, "status", status)
		status, err = v.attempt(ctx, linkURL)
	}
	return status, err
}

// transient covers network errors (status 0), rate limiting and server errors.
func transient(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func (v *Verifier) attempt(ctx context.Context, linkURL string) (int, error) {
	status, err := v.request(ctx, http.MethodHead, linkURL)
	// Some servers reject HEAD outright; retry those with GET.
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = v.request(ctx, http.MethodGet, linkURL)
	}
	if err != nil {
		return 0, err
	}
	if isAuthError(status) {
		return status, nil
	}
	if status >= 400 {
		return status, fmt.Errorf("HTTP %d: %s", status, http.StatusText(status))
	}
	return status, nil
}

func (v *Verifier) request(ctx context.Context, method, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", v.cfg.UserAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, nil
}

// isAuthError reports status codes that mean the URL exists but needs
// credentials.
func isAuthError(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

func (v *Verifier) publish(ctx context.Context, b *Broken, entry *CacheEntry) {
	event := &BrokenLinkEvent{
		URL:           b.URL,
		Status:        b.Status,
		Error:         b.Error,
		Sources:       b.Sources,
		Timestamp:     v.now(),
		LastChecked:   entry.LastChecked,
		FailureCount:  entry.FailureCount,
		FirstFailedAt: entry.FirstFailedAt,
		SiteTitle:     v.site.Title,
		BaseURL:       v.site.BaseURL,
	}
	if err := v.cache.PublishBrokenLink(ctx, event); err != nil {
		slog.Error("Failed to publish broken link event", "url", b.URL, "error", err)
		return
	}
	slog.Warn("Broken link detected",
		"url", b.URL,
		"status", b.Status,
		"sources", strings.Join(b.Sources, ","),
		"error", b.Error)
}

// Close releases the cache.
func (v *Verifier) Close() error {
	return v.cache.Close()
}
