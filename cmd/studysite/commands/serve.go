package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/linkverify"
	"git.home.luguber.info/inful/studysite/internal/metrics"
	"git.home.luguber.info/inful/studysite/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Host           string        `help:"Listen address (overrides preview.host)"`
	Port           int           `short:"p" help:"Listen port (overrides preview.port)"`
	VerifyInterval time.Duration `name:"verify-interval" help:"Re-check external links on this interval (overrides link_verification.interval; 0 uses the config)"`
	Output         string        `short:"o" help:"Preview output directory (default: a temporary directory removed on exit)"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}

	opts := preview.Options{Host: c.Host, Port: c.Port, VerifyInterval: c.VerifyInterval, OutputDir: c.Output}
	if opts.OutputDir == "" {
		tmp, err := os.MkdirTemp("", "studysite-preview-*")
		if err != nil {
			return fmt.Errorf("create temp output: %w", err)
		}
		opts.OutputDir = filepath.Join(tmp, "site")
		opts.TempOutputDir = tmp
		slog.Info("Using temporary output directory for preview", "output", opts.OutputDir)
	}
	if opts.VerifyInterval == 0 {
		opts.VerifyInterval = s.VerifyInterval()
	}
	if s.Metrics.Enabled {
		opts.Recorder = metrics.NewPrometheusRecorder(nil)
	}
	if opts.VerifyInterval > 0 {
		v, err := newVerifier(g, s)
		if err != nil {
			return err
		}
		defer func() { _ = v.Close() }()
		if opts.Recorder != nil {
			v.WithRecorder(opts.Recorder)
		}
		opts.Verifier = v
	}
	return preview.New(s, opts).Run(g.context())
}

// newVerifier uses the NATS-backed cache when a server is configured.
func newVerifier(g *Global, s *config.Site) (*linkverify.Verifier, error) {
	var cache linkverify.Cache
	if s.LinkVerification.NATS.Enabled() {
		nc, err := linkverify.NewNATSClient(g.context(), s.LinkVerification.NATS)
		if err != nil {
			return nil, err
		}
		cache = nc
	}
	return linkverify.NewVerifier(s, cache), nil
}
