// Package preview serves a built site locally, rebuilds it when content
// changes and tells connected browsers to reload.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"git.home.luguber.info/inful/studysite/internal/config"
	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/linkverify"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/metrics"
	"git.home.luguber.info/inful/studysite/internal/site"
)

// Options configure a preview server.
type Options struct {
	Host string
	Port int
	// OutputDir receives preview builds. Empty falls back to output.directory.
	OutputDir string
	// TempOutputDir is removed on shutdown when set.
	TempOutputDir string
	// VerifyInterval re-runs external link verification periodically; zero disables it.
	VerifyInterval time.Duration
	// Recorder receives build metrics and is exposed at metrics.path when metrics are enabled.
	Recorder *metrics.PrometheusRecorder
	Verifier *linkverify.Verifier
}

// buildStatus tracks the latest build for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *site.BuildReport
	hasGoodBuild bool
}

func (bs *buildStatus) set(report *site.BuildReport, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
	bs.lastReport = report
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (report *site.BuildReport, hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastReport, bs.hasGoodBuild, bs.lastError
}

// Server is the local preview server.
type Server struct {
	site    *config.Site
	opts    Options
	builder *site.Builder
	hub     *LiveReloadHub
	echo    *echo.Echo
	status  buildStatus
	logger  *slog.Logger

	buildMu sync.Mutex
}

// New prepares a preview server for s. Nothing is built or served until Run.
func New(s *config.Site, opts Options) *Server {
	if opts.Host == "" {
		opts.Host = s.Preview.Host
	}
	if opts.Port == 0 {
		opts.Port = s.Preview.Port
	}
	srv := &Server{
		site:   s,
		opts:   opts,
		hub:    NewLiveReloadHub(),
		logger: slog.Default().With("component", "preview"),
	}
	srv.builder = site.NewBuilder(s, site.Options{
		OutputDir:        opts.OutputDir,
		LiveReloadScript: ScriptPath,
	}).WithLogger(srv.logger)
	if opts.Recorder != nil {
		srv.builder.WithRecorder(opts.Recorder)
	}
	srv.echo = srv.newEcho()
	return srv
}

// Handler exposes the HTTP handler (used by tests).
func (s *Server) Handler() http.Handler { return s.echo }

// Hub returns the live reload hub.
func (s *Server) Hub() *LiveReloadHub { return s.hub }

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == EventsPath
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				logfields.URL(v.URI),
				logfields.Status(v.Status),
				logfields.DurationMS(float64(v.Latency.Microseconds())/1000))
			return nil
		},
	}))
	if s.opts.Recorder != nil && s.site.Metrics.Enabled {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "studysite",
			Subsystem:  "preview",
			Registerer: s.opts.Recorder.Registry(),
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == EventsPath || p == s.site.Metrics.Path
			},
		}))
		e.GET(s.site.Metrics.Path, echo.WrapHandler(s.opts.Recorder.Handler()))
	}

	e.GET(EventsPath, echo.WrapHandler(s.hub))
	e.GET(ScriptPath, func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", []byte(LiveReloadScript))
	})
	e.GET("/__status", s.handleStatus)

	base := "/" + strings.Trim(s.site.BaseURL, "/")
	if base != "/" {
		e.GET("/", func(c echo.Context) error {
			return c.Redirect(http.StatusFound, base+"/")
		})
	}
	e.GET(strings.TrimSuffix(base, "/")+"/*", s.handleSite)
	return e
}

// handleSite serves files from the output directory below base_url.
func (s *Server) handleSite(c echo.Context) error {
	if _, good, err := s.status.get(); err != nil && !good {
		return err
	}
	rel := c.Param("*")
	clean := filepath.Clean("/" + rel)
	p := filepath.Join(s.builder.OutputDir(), filepath.FromSlash(clean))
	fi, err := os.Stat(p)
	if err != nil {
		return echo.ErrNotFound
	}
	if fi.IsDir() {
		if rel != "" && !strings.HasSuffix(rel, "/") {
			return c.Redirect(http.StatusMovedPermanently, c.Request().URL.Path+"/")
		}
		p = filepath.Join(p, "index.html")
		if _, err := os.Stat(p); err != nil {
			return echo.ErrNotFound
		}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.File(p)
}

type statusResponse struct {
	Healthy  bool   `json:"healthy"`
	Outcome  string `json:"outcome,omitempty"`
	BuildID  string `json:"build_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Clients  int    `json:"livereload_clients"`
	Pages    int    `json:"pages"`
	Duration string `json:"duration,omitempty"`
}

func (s *Server) handleStatus(c echo.Context) error {
	report, _, err := s.status.get()
	resp := statusResponse{Healthy: err == nil, Clients: s.hub.Clients()}
	if err != nil {
		resp.Error = err.Error()
	}
	if report != nil {
		resp.Outcome = string(report.Outcome)
		resp.BuildID = report.BuildID
		resp.Pages = report.RenderedPages
		resp.Duration = report.Duration().String()
	}
	code := http.StatusOK
	if err != nil {
		code = ferrors.StatusCodeFor(err)
	}
	return c.JSON(code, resp)
}

// httpErrorHandler serves the site's 404 page for missing files and a
// plain error page for failed builds.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			page, readErr := os.ReadFile(filepath.Join(s.builder.OutputDir(), "404.html"))
			if readErr == nil {
				_ = c.HTMLBlob(http.StatusNotFound, page)
				return
			}
		}
		s.echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	code := ferrors.StatusCodeFor(err)
	body := fmt.Sprintf("<!doctype html><title>Build failed</title><h1>Build failed</h1><pre>%s</pre><script src=%q></script>",
		htmlEscape(err.Error()), ScriptPath)
	_ = c.HTML(code, body)
}

func htmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// Rebuild runs one build and notifies browsers. Concurrent calls are
// serialized.
func (s *Server) Rebuild(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	report, err := s.builder.Build(ctx)
	s.status.set(report, err)
	if err != nil {
		s.logger.Warn("Rebuild failed", logfields.Error(err))
		s.hub.Broadcast("error:" + report.BuildID)
		return err
	}
	s.hub.Broadcast(report.BuildID)
	return nil
}

// Run builds the site, serves it and rebuilds on change until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil {
		s.logger.Error("Initial build failed", logfields.Error(err))
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen").
			WithContext("addr", addr).Build()
	}
	srvErr := make(chan error, 1)
	s.echo.Listener = ln
	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()
	s.logger.Info("Preview server listening",
		logfields.URL("http://"+addr+"/"+strings.TrimLeft(s.site.BaseURL, "/")))

	w, err := newWatcher(s.site, s.builder.OutputDir())
	if err != nil {
		_ = s.shutdown()
		return err
	}
	defer func() { _ = w.Close() }()

	var sched *verifyScheduler
	if s.opts.VerifyInterval > 0 && s.opts.Verifier != nil {
		sched, err = newVerifyScheduler(ctx, s.opts.Verifier, s.builder.OutputDir(), s.opts.VerifyInterval)
		if err != nil {
			_ = s.shutdown()
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	rebuilds := newRebuildWorker(300*time.Millisecond, func() { _ = s.Rebuild(ctx) })
	go rebuilds.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()
		case err, ok := <-srvErr:
			if !ok {
				srvErr = nil
				continue
			}
			_ = s.shutdown()
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "preview server stopped").Build()
		case ev, ok := <-w.Events():
			if !ok {
				return s.shutdown()
			}
			if w.handle(ev) {
				rebuilds.trigger()
			}
		case err, ok := <-w.Errors():
			if ok {
				s.logger.Warn("Watcher error", logfields.Error(err))
			}
		}
	}
}

func (s *Server) shutdown() error {
	s.logger.Info("Shutting down preview server")
	s.hub.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if dir := s.opts.TempOutputDir; dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to remove temp output", logfields.Path(dir), logfields.Error(err))
		} else {
			s.logger.Info("Removed temp output directory", logfields.Path(dir))
		}
	}
	return nil
}
