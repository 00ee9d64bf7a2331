package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
)

const minimalYAML = `
title: Salesforce Platform Developer I
url: https://lehoaibao130497.github.io
base_url: /learn-salesforce/
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	site, err := Load(writeConfig(t, dir, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, SeverityThrow, site.OnBrokenLinks)
	require.Equal(t, SeverityWarn, site.OnBrokenMarkdownLinks)
	require.Equal(t, "docs", site.Docs.RouteBasePath)
	require.Equal(t, "sidebars.yaml", site.Docs.SidebarPath)
	require.Equal(t, "en", site.I18n.DefaultLocale)
	require.Equal(t, "Salesforce Platform Developer I", site.Theme.Navbar.Title)
	require.True(t, site.UsesTrailingSlash())
	require.Equal(t, dir, site.Root())
	require.Equal(t, filepath.Join(dir, "docs"), site.Resolve(site.Docs.Path))
	require.Equal(t, 10*time.Second, site.LinkTimeout())
	require.Equal(t, RetryBackoffLinear, site.LinkVerification.Retry.Backoff)
	require.Zero(t, site.LinkVerification.Retry.MaxRetries)
}

func TestLoad_ExpandsEnvironmentFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYSITE_TEST_TAGLINE=from dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STUDYSITE_TEST_TAGLINE") })

	site, err := Load(writeConfig(t, dir, minimalYAML+"tagline: ${STUDYSITE_TEST_TAGLINE}\n"))
	require.NoError(t, err)
	require.Equal(t, "from dotenv", site.Tagline)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDYSITE_TEST_TITLE=dotenv\n"), 0o600))
	t.Setenv("STUDYSITE_TEST_TITLE", "process")

	site, err := Load(writeConfig(t, dir, "title: ${STUDYSITE_TEST_TITLE}\nurl: https://example.com\n"))
	require.NoError(t, err)
	require.Equal(t, "process", site.Title)
}

func TestLoad_MissingFileIsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "on_broken_linkz: throw\n"))
	require.Error(t, err)
}

func TestParse_RejectsInvalidPolicy(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "on_broken_links: explode\n"))
	require.ErrorContains(t, err, "invalid reporting severity")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{"base url without trailing slash", "base_url: /learn\n", "must start and end with /"},
		{"url with path", "url: https://example.com/learn\n", "must not contain a path"},
		{"unknown locale", "i18n: {default_locale: en, locales: [\"en\", \"x-not valid\"]}\n", "invalid locale"},
		{"default locale missing", "i18n: {default_locale: vi, locales: [en]}\n", "not listed in locales"},
		{"footer both targets", "theme: {footer: {links: [{title: Docs, items: [{label: X, to: /docs, href: https://x.io}]}]}}\n", "either to or href"},
		{"footer relative href", "theme: {footer: {links: [{title: Docs, items: [{label: X, href: docs/x}]}]}}\n", "not an absolute URL"},
		{"docSidebar without id", "theme: {navbar: {items: [{type: docSidebar, label: Docs}]}}\n", "requires sidebar_id"},
		{"interval too short", "link_verification: {interval: 10s}\n", "below the 1m minimum"},
		{"unknown backoff", "link_verification: {retry: {backoff: random}}\n", "unknown mode"},
		{"too many retries", "link_verification: {retry: {max_retries: 50}}\n", "out of range 0-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := "title: T\nurl: https://example.com\n" + tc.extra
			if tc.name == "url with path" {
				doc = "title: T\n" + tc.extra
			}
			_, err := Parse([]byte(doc))
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestCopyrightSubstitutesYear(t *testing.T) {
	site := Example()
	got := site.Copyright(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "Copyright © 2026 Salesforce Learning Journey. Built with studysite.", got)
}

func TestInit_WritesLoadableExample(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, DefaultFile)
	require.NoError(t, Init(p, false))
	require.ErrorContains(t, Init(p, false), "already exists")

	site, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "/learn-salesforce/", site.BaseURL)
	require.Equal(t, []string{"java", "sql", "javascript", "typescript", "bash"}, site.Theme.Prism.AdditionalLanguages)
	require.Len(t, site.Theme.Footer.Links, 3)
}

func TestReportingSeverity(t *testing.T) {
	s, err := ParseReportingSeverity(" WARN ")
	require.NoError(t, err)
	require.Equal(t, SeverityWarn, s)
	require.False(t, s.Fails())
	require.True(t, s.Reported())
	require.True(t, SeverityThrow.Fails())
	require.False(t, SeverityIgnore.Reported())
}
