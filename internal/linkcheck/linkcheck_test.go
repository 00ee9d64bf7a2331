package linkcheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/routes"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

const weekOneSidebar = `
sidebar:
  - type: category
    label: Week 1
    items:
      - week1/README
      - week1/security
`

func newChecker(t *testing.T, docs []*corpus.Document, sidebars, extraConfig string) *Checker {
	t.Helper()
	site, err := config.Parse([]byte("title: T\nurl: https://example.com\nbase_url: /learn-salesforce/\n" + extraConfig))
	require.NoError(t, err)
	c, err := corpus.New(docs...)
	require.NoError(t, err)
	sb, err := sidebar.Parse([]byte(sidebars))
	require.NoError(t, err)

	router := routes.New(site)
	rs := NewRouteSet(router.Home(), router.BlogIndex(), router.Asset("img/logo.svg"))
	for _, d := range c.Documents() {
		rs.Add(router.Doc(d))
	}
	return &Checker{Site: site, Router: router, Corpus: c, Sidebars: sb, Routes: rs}
}

func weekOneDocs(withSecurity bool) []*corpus.Document {
	docs := []*corpus.Document{{ID: "week1/README", Title: "Week 1"}}
	if withSecurity {
		docs = append(docs, &corpus.Document{ID: "week1/security", Title: "Security"})
	}
	return docs
}

func TestChecker_WeekOneScenarioSucceeds(t *testing.T) {
	c := newChecker(t, weekOneDocs(true), weekOneSidebar, "")
	report := c.Run()
	require.NoError(t, report.Err())
	require.Empty(t, report.Issues)
	require.Equal(t, 2, report.Checked)
}

func TestChecker_DanglingSidebarKeyAbortsEvenWhenPolicyIsWarn(t *testing.T) {
	c := newChecker(t, weekOneDocs(false), weekOneSidebar, "on_broken_links: warn\n")
	err := c.Run().Err()
	require.Error(t, err)

	var ble *BrokenLinksError
	require.True(t, errors.As(err, &ble))
	require.Equal(t, []string{"week1/security"}, ble.Targets())
	require.Contains(t, err.Error(), `broken link: "week1/security"`)
	require.Contains(t, err.Error(), `sidebar "sidebar"`)
}

func TestChecker_NavbarFooterAndLandingTargets(t *testing.T) {
	cfg := `
theme:
  navbar:
    items:
      - {type: docSidebar, sidebar_id: sidebar, label: Documentation}
      - {type: docSidebar, sidebar_id: missing, label: Broken}
      - {to: /blog, label: Blog}
  footer:
    links:
      - title: Docs
        items:
          - {label: Getting Started, to: /docs/getting-started}
          - {label: Week 1, to: /docs/week1}
`
	c := newChecker(t, weekOneDocs(true), weekOneSidebar, cfg)
	report := c.Run(TargetSet{Rule: RuleLandingLink, Source: "landing page", Targets: []string{
		"/docs/week1/security", "https://trailhead.salesforce.com", "/docs/week9", "not-a-url",
	}})

	report.Sort()
	var targets []string
	for _, issue := range report.Issues {
		require.Equal(t, SeverityError, issue.Severity)
		targets = append(targets, issue.Target)
	}
	require.ElementsMatch(t, []string{"/docs/getting-started", "/docs/week9", "not-a-url", "missing"}, targets)
}

func TestChecker_MarkdownLinksFollowTheirOwnPolicy(t *testing.T) {
	docs := weekOneDocs(true)
	docs[0].Body = []byte("See [security](./security.md), [gone](./gone.md), [abs](/docs/nowhere) and [bad](http://).\n")
	c := newChecker(t, docs, weekOneSidebar, "")

	report := c.Run()
	require.Equal(t, 1, report.ErrorCount(), "absolute internal link falls under on_broken_links")
	require.Equal(t, 2, report.WarningCount())
	err := report.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "/docs/nowhere")
}

func TestChecker_ReferenceLinkReportedOnce(t *testing.T) {
	docs := weekOneDocs(true)
	docs[1].Body = []byte("See [the guide][g].\n\n[g]: missing.md\n[unused]: gone.md\n")
	c := newChecker(t, docs, weekOneSidebar, "on_broken_markdown_links: warn\n")

	report := c.Run()
	var markdownIssues []Issue
	for _, issue := range report.Issues {
		if issue.Rule == RuleMarkdownLink {
			markdownIssues = append(markdownIssues, issue)
		}
	}
	require.Len(t, markdownIssues, 1)
	require.Equal(t, "missing.md", markdownIssues[0].Target)
}

func TestChecker_MarkdownWarnNeverFails(t *testing.T) {
	docs := weekOneDocs(true)
	docs[1].Body = []byte("[missing](../week9/README.md)\n")
	c := newChecker(t, docs, weekOneSidebar, "on_broken_markdown_links: warn\n")
	report := c.Run()
	require.NoError(t, report.Err())
	require.True(t, report.HasWarnings())

	c = newChecker(t, docs, weekOneSidebar, "on_broken_markdown_links: ignore\n")
	require.Empty(t, c.Run().Issues)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestScanOutput(t *testing.T) {
	out := t.TempDir()
	writeFile(t, out, "index.html", `<html><head><link rel="stylesheet" href="/learn-salesforce/assets/site.css"></head>
<body><a href="/learn-salesforce/docs/week1/">Week 1</a><a href="docs/missing/">Missing</a>
<a href="https://example.com">ext</a><a href="#top">top</a><a href="mailto:a@b.c">mail</a></body></html>`)
	writeFile(t, out, "assets/site.css", "body{}")
	writeFile(t, out, "docs/week1/index.html", `<a href="../week1/security/#profiles">sec</a><img src="/learn-salesforce/img/logo.svg"><a href="./flow.md">md</a>`)
	writeFile(t, out, "docs/week1/security/index.html", `<a href="..">up</a>`)

	site, err := config.Parse([]byte("title: T\nurl: https://example.com\nbase_url: /learn-salesforce/\n"))
	require.NoError(t, err)

	report, err := ScanOutput(out, routes.New(site), config.SeverityThrow)
	require.NoError(t, err)

	var broken []string
	for _, issue := range report.Issues {
		broken = append(broken, issue.Source+" -> "+issue.Target)
	}
	require.ElementsMatch(t, []string{
		"index.html -> docs/missing/",
		"docs/week1/index.html -> /learn-salesforce/img/logo.svg",
	}, broken)
}

func TestScanOutput_IgnoredPathsAreNotChecked(t *testing.T) {
	out := t.TempDir()
	writeFile(t, out, "index.html", `<a href="docs/">Docs</a><script src="/__livereload.js"></script>`)
	writeFile(t, out, "docs/index.html", `<script src="/__livereload.js"></script><script src="/__other.js"></script>`)

	site, err := config.Parse([]byte("title: T\nurl: https://example.com\nbase_url: /learn/\n"))
	require.NoError(t, err)

	report, err := ScanOutput(out, routes.New(site), config.SeverityThrow, "/__livereload.js")
	require.NoError(t, err)
	require.Equal(t, 2, report.Checked)
	require.Len(t, report.Issues, 1)
	require.Equal(t, "/__other.js", report.Issues[0].Target)

	report, err = ScanOutput(out, routes.New(site), config.SeverityThrow)
	require.NoError(t, err)
	require.Len(t, report.Issues, 3)
}

func TestExtractHTMLLinks(t *testing.T) {
	links, err := ExtractHTMLLinks(strings.NewReader(`<a href="https://a.io"> A <b>link</b></a><img src="x.png" alt="X"><script src="/s.js"></script><p>no</p>`))
	require.NoError(t, err)
	require.Len(t, links, 3)
	require.Equal(t, "A link", links[0].Text)
	require.True(t, links[0].IsExternal())
	require.False(t, links[0].IsInternal())
	require.Equal(t, "img", links[1].Tag)
	require.True(t, links[2].IsInternal())
}

func TestFormatters(t *testing.T) {
	r := &Report{Checked: 3}
	r.Broken(config.SeverityThrow, RuleSidebarRef, `sidebar "sidebar"`, "week1/security")
	r.Broken(config.SeverityWarn, RuleMarkdownLink, "week1/README.md", "./gone.md")

	var text bytes.Buffer
	f, err := NewFormatter("text")
	require.NoError(t, err)
	require.NoError(t, f.Format(&text, r))
	require.Contains(t, text.String(), `ERROR [sidebar-ref] broken link: "week1/security"`)
	require.Contains(t, text.String(), "1 error (blocks build)")

	var js bytes.Buffer
	f, err = NewFormatter("json")
	require.NoError(t, err)
	require.NoError(t, f.Format(&js, r))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Equal(t, "error", decoded["issues"].([]any)[0].(map[string]any)["severity"])

	_, err = NewFormatter("xml")
	require.Error(t, err)
}

func TestBrokenLinksError_MultipleIssues(t *testing.T) {
	r := &Report{}
	r.Fatal(RuleSidebarRef, "a", "x")
	r.Fatal(RuleSidebarRef, "b", "y")
	err := r.Err()
	require.ErrorContains(t, err, "2 broken links:")
	require.ErrorContains(t, err, `broken link: "y" referenced from b`)
}
