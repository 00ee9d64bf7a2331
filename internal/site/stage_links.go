package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/landing"
	"git.home.luguber.info/inful/studysite/internal/linkcheck"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/render"
)

// stageValidateLinks resolves every navigation key and link target before
// anything is rendered.
func stageValidateLinks(_ context.Context, bs *BuildState) error {
	if err := bs.planRoutes(); err != nil {
		return fatal(StageValidateLinks, ErrContent, err)
	}
	bs.Landing = landing.Compose(bs.Site, bs.Now)

	checker := &linkcheck.Checker{
		Site:     bs.Site,
		Router:   bs.Router,
		Corpus:   bs.Corpus,
		Sidebars: bs.Sidebars,
		Routes:   bs.Routes,
	}
	report := checker.Run(linkcheck.TargetSet{
		Rule:    linkcheck.RuleLandingLink,
		Source:  "landing page",
		Targets: bs.Landing.Targets(),
	})
	report.Sort()
	bs.Links = report
	return bs.applyLinkReport(StageValidateLinks, report)
}

// stageVerifyOutput scans the rendered HTML for internal links that do not
// resolve to a generated file.
func stageVerifyOutput(_ context.Context, bs *BuildState) error {
	var ignore []string
	if script := bs.Options.LiveReloadScript; script != "" {
		ignore = append(ignore, script)
	}
	report, err := linkcheck.ScanOutput(bs.StageDir, bs.Router, bs.Site.OnBrokenLinks, ignore...)
	if err != nil {
		return fatal(StageVerifyOutput, ErrOutput, err)
	}
	report.Sort()
	if bs.Links == nil {
		bs.Links = &linkcheck.Report{}
	}
	bs.Links.Merge(report)
	return bs.applyLinkReport(StageVerifyOutput, report)
}

// applyLinkReport logs and records issues. Error-level issues abort the
// build; warnings mark the stage as degraded.
func (bs *BuildState) applyLinkReport(stage StageName, report *linkcheck.Report) error {
	bs.Report.LinksChecked += report.Checked
	report.Log(bs.logger)
	for _, issue := range report.Issues {
		bs.recorder.IncLinkIssue(string(issue.Rule), strings.ToLower(issue.Severity.String()))
		sev := SeverityInfo
		switch issue.Severity {
		case linkcheck.SeverityError:
			sev = SeverityError
		case linkcheck.SeverityWarning:
			sev = SeverityWarning
		}
		bs.Report.Issues = append(bs.Report.Issues, ReportIssue{
			Code: linkIssueCode(issue), Stage: stage, Severity: sev, Message: issue.Message, Target: issue.Target,
		})
	}

	if err := report.Err(); err != nil {
		return fatal(stage, ErrLinks, ferrors.WrapError(err, ferrors.CategoryLinks, "broken links").Fatal().Build())
	}
	if n := report.WarningCount(); n > 0 {
		return newWarnStageError(stage, fmt.Errorf("%w: %d link warning(s)", ErrLinks, n))
	}
	return nil
}

func linkIssueCode(issue linkcheck.Issue) ReportIssueCode {
	if issue.Severity == linkcheck.SeverityError {
		return IssueBrokenLinks
	}
	return IssueLinkWarning
}

// planRoutes computes every route the build will produce. Two sources
// mapping to the same output file are a route collision.
func (bs *BuildState) planRoutes() error {
	r := bs.Router
	owners := map[string]string{}
	set := linkcheck.NewRouteSet()
	var collisions []string
	add := func(route, owner string) {
		set.Add(route)
		out, ok := r.OutputPath(route)
		if !ok {
			return
		}
		if prev, dup := owners[out]; dup && prev != owner {
			collisions = append(collisions, fmt.Sprintf("%s and %s both produce %s", prev, owner, out))
			return
		}
		owners[out] = owner
	}

	add(r.Home(), "landing page")
	add(r.NotFound(), "404 page")
	add(r.Sitemap(), "sitemap")
	add(r.Asset(render.StylesheetPath), "stylesheet")
	if css := bs.customCSSRoute(); css != "" {
		add(css, "custom css")
	}
	for _, d := range bs.Corpus.Documents() {
		add(r.Doc(d), "doc "+d.ID)
	}
	if bs.Site.Blog.Enabled {
		add(r.BlogIndex(), "blog index")
		if bs.feedEnabled() {
			add(r.BlogFeed(), "blog feed")
		}
		for _, p := range bs.Posts {
			add(r.BlogPost(p.Permalink), "blog post "+p.Slug)
		}
	}
	staticFiles, err := listStatic(bs.Site.Resolve(bs.Site.StaticDir))
	if err != nil {
		return err
	}
	for _, rel := range staticFiles {
		add(r.Asset(rel), "static "+rel)
	}

	if len(collisions) > 0 {
		sort.Strings(collisions)
		return ferrors.ContentError("route collision: "+strings.Join(collisions, "; ")).
			WithContext("count", len(collisions)).Build()
	}
	bs.Routes = set
	bs.logger.Debug("Planned routes", logfields.Count(len(set)))
	return nil
}

// listStatic returns the slash separated files below dir. A missing
// directory has no files.
func listStatic(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatic, err)
	}
	sort.Strings(files)
	return files, nil
}
