package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"

	"git.home.luguber.info/inful/studysite/internal/blog"
	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/landing"
	"git.home.luguber.info/inful/studysite/internal/linkcheck"
	"git.home.luguber.info/inful/studysite/internal/markdown"
	"git.home.luguber.info/inful/studysite/internal/metrics"
	"git.home.luguber.info/inful/studysite/internal/render"
	"git.home.luguber.info/inful/studysite/internal/routes"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

// BuildState carries state across the stages of one build.
type BuildState struct {
	Site      *config.Site
	Router    *routes.Router
	Options   Options
	BuildID   string
	Now       time.Time
	OutputDir string
	StageDir  string

	Corpus   *corpus.Corpus
	Sidebars *sidebar.Sidebars
	Posts    []*blog.Post
	Landing  landing.Page
	Routes   linkcheck.RouteSet
	Links    *linkcheck.Report

	Markdown *markdown.Renderer
	Renderer *render.Renderer
	// Pages are the rendered HTML routes listed in the sitemap.
	Pages    []string
	Manifest *Manifest
	Report   *BuildReport

	recorder metrics.Recorder
	logger   *slog.Logger
}

// customCSSPath is where theme.custom_css is published.
const customCSSPath = "assets/custom.css"

func (bs *BuildState) customCSSRoute() string {
	if bs.Site.Theme.CustomCSS == "" {
		return ""
	}
	return bs.Router.Asset(customCSSPath)
}

func (bs *BuildState) feedEnabled() bool {
	return bs.Site.Blog.Enabled && bs.Site.Blog.Feed == config.FeedRSS
}

// renderer builds the page renderer on first use.
func (bs *BuildState) renderer() (*render.Renderer, error) {
	if bs.Renderer != nil {
		return bs.Renderer, nil
	}
	r, err := render.New(bs.Site, bs.Router, render.Navigation{Corpus: bs.Corpus, Sidebars: bs.Sidebars}, render.Options{
		Now:              bs.Now,
		LiveReloadScript: bs.Options.LiveReloadScript,
		CustomCSS:        bs.customCSSRoute(),
		Feed:             bs.feedEnabled(),
	})
	if err != nil {
		return nil, err
	}
	bs.Renderer = r
	bs.Markdown = markdown.NewRenderer()
	return r, nil
}

// writeFile writes data below the staging directory.
func (bs *BuildState) writeFile(rel string, data []byte) error {
	dst := filepath.Join(bs.StageDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // published site directory
		return err
	}
	return os.WriteFile(dst, data, 0o644) //nolint:gosec // published site content must be world readable
}

// writePage renders c to the output file of route. Pages listed in the
// sitemap are remembered.
func (bs *BuildState) writePage(ctx context.Context, route string, c templ.Component, inSitemap bool) error {
	rel, ok := bs.Router.OutputPath(route)
	if !ok {
		return fmt.Errorf("route %s is outside the base path %s", route, bs.Router.Base())
	}
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", route, err)
	}
	if err := bs.writeFile(rel, buf.Bytes()); err != nil {
		return err
	}
	bs.Manifest.addRoute(route)
	if inSitemap {
		bs.Pages = append(bs.Pages, route)
	}
	bs.Report.RenderedPages++
	return nil
}
