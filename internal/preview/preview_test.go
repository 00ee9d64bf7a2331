package preview

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/linkverify"
	"git.home.luguber.info/inful/studysite/internal/metrics"
)

const siteYAML = `
title: Study
url: https://example.com
base_url: /learn/
metrics:
  enabled: true
`

func newTestSite(t *testing.T) *config.Site {
	t.Helper()
	root := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	write("studysite.yaml", siteYAML)
	write("sidebars.yaml", "sidebar:\n  - GETTING_STARTED\n  - QUICK_REFERENCE\n  - week1/README\n  - week2/README\n  - week3/README\n  - week4/README\n")
	for _, doc := range []string{"GETTING_STARTED", "QUICK_REFERENCE", "week1/README", "week2/README", "week3/README", "week4/README"} {
		write("docs/"+doc+".md", "# "+doc+"\n")
	}
	s, err := config.Load(filepath.Join(root, "studysite.yaml"))
	require.NoError(t, err)
	return s
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.md~"))
	require.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestWatcherIgnoresOutput(t *testing.T) {
	s := newTestSite(t)
	out := s.Resolve("build")
	w, err := newWatcher(s, out)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.False(t, w.handle(fsnotify.Event{Name: filepath.Join(out, "index.html"), Op: fsnotify.Write}))
	require.False(t, w.handle(fsnotify.Event{Name: filepath.Join(s.Root(), "build-report.json"), Op: fsnotify.Write}))
	require.False(t, w.handle(fsnotify.Event{Name: filepath.Join(s.Root(), "build.staging-123"), Op: fsnotify.Create}))
	require.True(t, w.handle(fsnotify.Event{Name: s.Resolve("docs/intro.md"), Op: fsnotify.Write}))
}

func TestRebuildWorkerDebounces(t *testing.T) {
	var builds atomic.Int32
	w := newRebuildWorker(20*time.Millisecond, func() { builds.Add(1) })
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go w.run(ctx)

	for range 5 {
		w.trigger()
	}
	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), builds.Load())
}

func TestLiveReloadHubBroadcast(t *testing.T) {
	hub := NewLiveReloadHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL) //nolint:noctx // test server
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast("abc")
	hub.Broadcast("abc") // duplicate is ignored

	for {
		line, err = r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data:") {
			break
		}
	}
	require.Equal(t, "data: {\"hash\":\"abc\"}\n", line)

	hub.Shutdown()
	require.Equal(t, 0, hub.Clients())
}

func TestServerServesBuiltSite(t *testing.T) {
	s := newTestSite(t)
	rec := metrics.NewPrometheusRecorder(nil)
	srv := New(s, Options{Recorder: rec, OutputDir: filepath.Join(t.TempDir(), "site")})
	require.NoError(t, srv.Rebuild(t.Context()))

	h := srv.Handler()
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	res := get("/learn/")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `src="/__livereload.js"`)

	res = get("/learn/docs/week1")
	require.Equal(t, http.StatusMovedPermanently, res.Code)
	require.Equal(t, "/learn/docs/week1/", res.Header().Get("Location"))

	require.Equal(t, http.StatusOK, get("/learn/docs/week1/").Code)
	require.Equal(t, http.StatusFound, get("/").Code)

	res = get("/learn/nope/")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Body.String(), "Page Not Found")

	res = get(ScriptPath)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), EventsPath)

	res = get("/__status")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"outcome":"success"`)

	res = get("/metrics")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "studysite_build_outcomes_total")
	require.Contains(t, res.Body.String(), "studysite_preview_requests_total")
}

func TestServerReportsFailedBuild(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.Remove(s.Resolve("docs/week1/README.md")))

	srv := New(s, Options{OutputDir: filepath.Join(t.TempDir(), "site")})
	require.Error(t, srv.Rebuild(t.Context()))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/learn/", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "Build failed")
	require.Contains(t, w.Body.String(), "week1/README")
}

func TestServerRunBuildsIntoTempOutput(t *testing.T) {
	s := newTestSite(t)
	s.Preview.Port = 0
	tmp := filepath.Join(t.TempDir(), "preview")
	require.NoError(t, os.MkdirAll(tmp, 0o750))
	out := filepath.Join(tmp, "site")

	srv := New(s, Options{Host: "127.0.0.1", OutputDir: out, TempOutputDir: tmp})
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "index.html"))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)
	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), ScriptPath)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoDirExists(t, tmp)
	require.NoDirExists(t, s.Resolve(s.Output.Directory))
}

func TestScheduledVerifyStopsWithServerContext(t *testing.T) {
	ext := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ext.Close()

	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"),
		[]byte(`<a href="`+ext.URL+`/slow">slow</a>`), 0o600))

	s := newTestSite(t)
	s.LinkVerification.Timeout = "1h"
	v := linkverify.NewVerifier(s, nil).WithHTTPClient(ext.Client())

	ctx, cancel := context.WithCancel(t.Context())
	vs, err := newVerifyScheduler(ctx, v, out, time.Hour)
	require.NoError(t, err)
	vs.Start()
	defer vs.Stop()

	finished := make(chan struct{})
	go func() {
		vs.verify()
		close(finished)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled verification ignored cancellation")
	}
}
