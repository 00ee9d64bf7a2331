package routes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
)

func testSite(t *testing.T, extra string) *config.Site {
	t.Helper()
	site, err := config.Parse([]byte("title: T\nurl: https://lehoaibao130497.github.io\nbase_url: /learn-salesforce/\nblog: {enabled: true}\n" + extra))
	require.NoError(t, err)
	return site
}

func TestJoin(t *testing.T) {
	require.Equal(t, "/", Join())
	require.Equal(t, "/", Join("/", ""))
	require.Equal(t, "/learn-salesforce/docs/week1", Join("/learn-salesforce/", "/docs/", "week1"))
	require.Equal(t, "/learn-salesforce/docs/", Join("/learn-salesforce//", "docs/"))
}

func TestRouter_DocRoutes(t *testing.T) {
	r := New(testSite(t, ""))

	require.Equal(t, "/learn-salesforce/", r.Home())
	require.Equal(t, "/learn-salesforce/docs/", r.DocsIndex())
	require.Equal(t, "/learn-salesforce/docs/week1/security/", r.Doc(&corpus.Document{Permalink: "week1/security"}))
	require.Equal(t, "/learn-salesforce/docs/week1/", r.Doc(&corpus.Document{Permalink: "week1"}))
	require.Equal(t, "/learn-salesforce/blog/", r.BlogIndex())
	require.Equal(t, "/learn-salesforce/blog/rss.xml", r.BlogFeed())
	require.Equal(t, "https://lehoaibao130497.github.io/learn-salesforce/", r.Absolute(r.Home()))
}

func TestRouter_Internal(t *testing.T) {
	r := New(testSite(t, ""))

	require.Equal(t, "/learn-salesforce/docs/GETTING_STARTED/", r.Internal("/docs/GETTING_STARTED"))
	require.Equal(t, "/learn-salesforce/blog/#latest", r.Internal("/blog#latest"))
	require.Equal(t, "/learn-salesforce/docs/week1/", r.Internal("/learn-salesforce/docs/week1"))
	require.Equal(t, "/learn-salesforce/img/logo.svg", r.Internal("/img/logo.svg"))
	require.Equal(t, "/learn-salesforce/", r.Internal("/"))
}

func TestRouter_OutputPath(t *testing.T) {
	r := New(testSite(t, ""))

	cases := map[string]string{
		"/learn-salesforce/":                   "index.html",
		"/learn-salesforce":                    "index.html",
		"/learn-salesforce/docs/week1/":        "docs/week1/index.html",
		"/learn-salesforce/docs/week1":         "docs/week1/index.html",
		"/learn-salesforce/sitemap.xml":        "sitemap.xml",
		"/learn-salesforce/docs/intro/#anchor": "docs/intro/index.html",
	}
	for route, want := range cases {
		got, ok := r.OutputPath(route)
		require.True(t, ok, route)
		require.Equal(t, want, got, route)
	}
	_, ok := r.OutputPath("/other-site/docs/")
	require.False(t, ok)
}

func TestRouter_NoTrailingSlash(t *testing.T) {
	r := New(testSite(t, "trailing_slash: false\n"))

	route := r.Doc(&corpus.Document{Permalink: "week2/triggers"})
	require.Equal(t, "/learn-salesforce/docs/week2/triggers", route)
	out, ok := r.OutputPath(route)
	require.True(t, ok)
	require.Equal(t, "docs/week2/triggers.html", out)
}

func TestBaseURLJoinIsWellFormed(t *testing.T) {
	r := New(testSite(t, ""))
	for _, to := range []string{"/docs/week1", "docs/week1", "//docs//week1/", "/blog", "/"} {
		got := r.Internal(to)
		require.True(t, strings.HasPrefix(got, "/learn-salesforce/"), got)
		require.NotContains(t, got, "//", got)
	}
}

func TestKey(t *testing.T) {
	require.Equal(t, Key("/a/b/"), Key("/a/b"))
	require.Equal(t, Key("/a/b/index.html"), Key("/a/b#x"))
	require.Equal(t, Key("/a/b.html"), Key("/a/b"))
	require.Equal(t, "/", Key("/"))
	require.Equal(t, "/", Key("/index.html"))
	require.Equal(t, "/x/reindex", Key("/x/reindex.html"))
	require.NotEqual(t, Key("/x/re"), Key("/x/reindex.html"))
}
