package linkverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/config"
)

func writePage(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte("<html><body>"+body+"</body></html>"), 0o600))
}

func testSite() *config.Site {
	return &config.Site{
		Title:   "Study",
		BaseURL: "/",
		LinkVerification: config.LinkVerification{
			Concurrency: 2,
			Timeout:     "2s",
			UserAgent:   "studysite-test",
		},
	}
}

func TestCollect(t *testing.T) {
	out := t.TempDir()
	writePage(t, out, "index.html", `<a href="https://trailhead.salesforce.com/#top">th</a><a href="/docs/intro/">intro</a>`)
	writePage(t, out, "docs/intro/index.html", `<a href="https://trailhead.salesforce.com/">th</a><img src="https://cdn.example.org/x.png">`)
	writePage(t, out, "docs/skip/index.html", `<a href="https://api.github.com/x">gh</a>`)
	require.NoError(t, os.WriteFile(filepath.Join(out, "notes.txt"), []byte("https://ignored.example"), 0o600))

	targets, err := Collect(out, []string{"github.com"})
	require.NoError(t, err)
	require.Equal(t, []Target{
		{URL: "https://cdn.example.org/x.png", Sources: []string{"/docs/intro/"}},
		{URL: "https://trailhead.salesforce.com/", Sources: []string{"/", "/docs/intro/"}},
	}, targets)
}

func TestVerify_ReportsBrokenLinks(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != "studysite-test" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/private":
			w.WriteHeader(http.StatusForbidden)
		case "/get-only":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out := t.TempDir()
	writePage(t, out, "docs/week1/index.html",
		`<a href="`+srv.URL+`/ok">ok</a><a href="`+srv.URL+`/gone">gone</a>`+
			`<a href="`+srv.URL+`/private">private</a><a href="`+srv.URL+`/get-only">get</a>`)

	cache := NewMemoryCache()
	v := NewVerifier(testSite(), cache).WithHTTPClient(srv.Client())

	res, err := v.Verify(t.Context(), out)
	require.NoError(t, err)
	require.Equal(t, 4, res.Checked)
	require.Len(t, res.Broken, 1)
	require.Equal(t, srv.URL+"/gone", res.Broken[0].URL)
	require.Equal(t, http.StatusNotFound, res.Broken[0].Status)
	require.Equal(t, []string{"/docs/week1/"}, res.Broken[0].Sources)

	events := cache.Events()
	require.Len(t, events, 1)
	require.Equal(t, 1, events[0].FailureCount)
	require.Equal(t, "Study", events[0].SiteTitle)

	// A second run is answered from the cache.
	before := hits.Load()
	res, err = v.Verify(t.Context(), out)
	require.NoError(t, err)
	require.Equal(t, 0, res.Checked)
	require.Equal(t, 4, res.Cached)
	require.Len(t, res.Broken, 1)
	require.Equal(t, before, hits.Load())
}

func TestVerify_FailureStreak(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cache := NewMemoryCache()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	v := NewVerifier(testSite(), cache).WithHTTPClient(srv.Client())
	v.now = func() time.Time { return now }

	targets := []Target{{URL: srv.URL + "/missing", Sources: []string{"/"}}}
	_, err := v.Check(t.Context(), targets)
	require.NoError(t, err)

	now = now.Add(2 * cacheTTLFailures)
	_, err = v.Check(t.Context(), targets)
	require.NoError(t, err)

	entry, err := cache.Get(t.Context(), srv.URL+"/missing")
	require.NoError(t, err)
	require.Equal(t, 2, entry.FailureCount)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), entry.FirstFailedAt)
}

func TestCheck_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	v := NewVerifier(testSite(), nil)
	res, err := v.Check(ctx, []Target{{URL: "https://example.invalid/"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, res.Broken)
}

func TestCacheEntryFresh(t *testing.T) {
	now := time.Now()
	var missing *CacheEntry
	require.False(t, missing.Fresh(now))
	require.True(t, (&CacheEntry{IsValid: true, LastChecked: now.Add(-2 * time.Hour)}).Fresh(now))
	require.False(t, (&CacheEntry{IsValid: false, LastChecked: now.Add(-2 * time.Hour)}).Fresh(now))
}

func TestCacheKeyIsKVSafe(t *testing.T) {
	k := cacheKey("https://example.com/a b?x=1#y")
	require.Regexp(t, `^[a-z0-9.]+$`, k)
}

func TestCheck_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	site := testSite()
	site.LinkVerification.Retry = config.RetryConfig{
		Backoff:    config.RetryBackoffFixed,
		Initial:    "1ms",
		Max:        "5ms",
		MaxRetries: 2,
	}
	v := NewVerifier(site, nil).WithHTTPClient(srv.Client())

	res, err := v.Check(t.Context(), []Target{{URL: srv.URL + "/flaky", Sources: []string{"/"}}})
	require.NoError(t, err)
	require.Empty(t, res.Broken)
	require.Equal(t, int32(3), hits.Load())
}

func TestCheck_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	site := testSite()
	site.LinkVerification.Retry = config.RetryConfig{Initial: "1ms", Max: "1ms", MaxRetries: 1}
	v := NewVerifier(site, nil).WithHTTPClient(srv.Client())

	res, err := v.Check(t.Context(), []Target{{URL: srv.URL + "/down", Sources: []string{"/"}}})
	require.NoError(t, err)
	require.Len(t, res.Broken, 1)
	require.Equal(t, http.StatusBadGateway, res.Broken[0].Status)
	require.Equal(t, int32(2), hits.Load())
}
