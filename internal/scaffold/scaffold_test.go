package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/frontmatter"
	"git.home.luguber.info/inful/studysite/internal/site"
)

var initTime = time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC)

func TestWrite_SkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	intro := filepath.Join(dir, "docs", "intro.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(intro), 0o750))
	require.NoError(t, os.WriteFile(intro, []byte("# Mine\n"), 0o600))

	written, err := Write(dir, false, initTime)
	require.NoError(t, err)
	require.NotContains(t, written, "docs/intro.md")
	require.Contains(t, written, "sidebars.yaml")

	data, err := os.ReadFile(intro)
	require.NoError(t, err)
	require.Equal(t, "# Mine\n", string(data))

	written, err = Write(dir, true, initTime)
	require.NoError(t, err)
	require.Contains(t, written, "docs/intro.md")
}

func TestScaffoldBuilds(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, config.Init(cfgPath, false))
	_, err := Write(dir, false, initTime)
	require.NoError(t, err)

	s, err := config.Load(cfgPath)
	require.NoError(t, err)
	report, err := site.NewBuilder(s, site.Options{}).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, site.OutcomeSuccess, report.Outcome)
	require.FileExists(t, filepath.Join(dir, "build", "index.html"))
}

func TestWrite_DatesStarterPost(t *testing.T) {
	dir := t.TempDir()
	written, err := Write(dir, false, initTime)
	require.NoError(t, err)
	require.Contains(t, written, "blog/welcome.md")

	data, err := os.ReadFile(filepath.Join(dir, "blog", "welcome.md"))
	require.NoError(t, err)
	parts, err := frontmatter.Split(data)
	require.NoError(t, err)
	meta, err := frontmatter.DecodeMeta(parts.Raw)
	require.NoError(t, err)
	require.Equal(t, "2026-09-14", meta.Date)
	require.Equal(t, "Welcome", meta.Title)
	require.Equal(t, []string{"Study Group"}, meta.Authors)
	require.Contains(t, string(parts.Body), "The study group starts on Monday.")
}

func TestStampDate_KeepsExistingDate(t *testing.T) {
	in := []byte("---\ntitle: Old\ndate: 2025-12-01\n---\nBody\n")
	out, err := stampDate(in, initTime)
	require.NoError(t, err)
	require.Equal(t, string(in), string(out))

	out, err = stampDate([]byte("No front matter.\n"), initTime)
	require.NoError(t, err)
	parts, err := frontmatter.Split(out)
	require.NoError(t, err)
	require.True(t, parts.Had)
	require.Equal(t, "No front matter.\n", string(parts.Body))
	meta, err := frontmatter.DecodeMeta(parts.Raw)
	require.NoError(t, err)
	require.Equal(t, "2026-09-14", meta.Date)
}
