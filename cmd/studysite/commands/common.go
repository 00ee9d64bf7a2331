package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/history"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"studysite.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd       `cmd:"" help:"Build the static site"`
	Validate    ValidateCmd    `cmd:"" help:"Check content, navigation and links without rendering"`
	Serve       ServeCmd       `cmd:"" help:"Preview the site with live reload"`
	VerifyLinks VerifyLinksCmd `cmd:"" name:"verify-links" help:"Check the external links of the built site over HTTP"`
	Sidebar     SidebarCmd     `cmd:"" help:"Print the resolved navigation tree"`
	History     HistoryCmd     `cmd:"" help:"List recorded builds"`
	Init        InitCmd        `cmd:"" help:"Scaffold a new site"`

	out io.Writer
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours --verbose first, then STUDYSITE_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("STUDYSITE_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// stdout is where command results go; tests replace it.
func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

func (c *CLI) loadSite() (*config.Site, error) {
	return config.Load(c.Config)
}

// openHistory returns nil when history is disabled.
func openHistory(s *config.Site) (history.Store, error) {
	if !s.History.Enabled {
		return nil, nil
	}
	return history.Open(s.Resolve(s.History.Path))
}
