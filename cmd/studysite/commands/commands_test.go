package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/scaffold"
)

// run parses args and executes the selected command, returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := &CLI{out: &out}
	parser, err := kong.New(cli, kong.Name("studysite"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = kctx.Run(&Global{Ctx: context.Background()})
	return out.String(), err
}

const historyConfig = `
title: CLI Test
url: https://example.com
base_url: /
blog:
  enabled: true
history:
  enabled: true
  path: .studysite/history.db
`

func scaffoldSite(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := scaffold.Write(dir, false, time.Now())
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "studysite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func TestInitThenBuild(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "init", "--dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "initialized successfully")
	require.FileExists(t, filepath.Join(dir, "studysite.yaml"))
	require.FileExists(t, filepath.Join(dir, "docs", "week1", "README.md"))

	_, err = run(t, "init", "--dir", dir)
	require.Error(t, err, "existing configuration is not overwritten without --force")

	cfg := filepath.Join(dir, "studysite.yaml")
	out, err = run(t, "-c", cfg, "build")
	require.NoError(t, err)
	require.Contains(t, out, "Build completed successfully")
	require.FileExists(t, filepath.Join(dir, "build", "docs", "week1", "index.html"))
}

func TestBuildFailsOnDanglingSidebarKey(t *testing.T) {
	cfg := scaffoldSite(t, historyConfig)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg), "docs", "week4", "README.md")))

	_, err := run(t, "-c", cfg, "build")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"week4/README"`)
	require.Equal(t, 3, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestValidateJSON(t *testing.T) {
	cfg := scaffoldSite(t, historyConfig)
	intro := filepath.Join(filepath.Dir(cfg), "docs", "intro.md")
	require.NoError(t, os.WriteFile(intro, []byte("# Intro\n\n[gone](missing.md)\n"), 0o600))

	out, err := run(t, "-c", cfg, "validate", "--format", "json")
	require.NoError(t, err)
	var report struct {
		Issues []struct {
			Target string `json:"target"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Issues, 1)
	require.Equal(t, "missing.md", report.Issues[0].Target)
}

func TestSidebarPrintsTree(t *testing.T) {
	cfg := scaffoldSite(t, historyConfig)
	out, err := run(t, "-c", cfg, "sidebar")
	require.NoError(t, err)
	require.Contains(t, out, "sidebar:")
	require.Contains(t, out, "Week 1: Admin & Flow/ -> week1/README")
	require.Contains(t, out, "- GETTING_STARTED")
}

func TestHistoryListsBuilds(t *testing.T) {
	cfg := scaffoldSite(t, historyConfig)
	_, err := run(t, "-c", cfg, "build")
	require.NoError(t, err)
	_, err = run(t, "-c", cfg, "build")
	require.NoError(t, err)

	out, err := run(t, "-c", cfg, "history")
	require.NoError(t, err)
	require.Contains(t, out, "OUTCOME")
	require.Equal(t, 2, bytes.Count([]byte(out), []byte("success")))
}

func TestVerifyLinksRequiresBuild(t *testing.T) {
	cfg := scaffoldSite(t, historyConfig)
	_, err := run(t, "-c", cfg, "verify-links")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv("STUDYSITE_LOG_LEVEL", "warn")
	require.Equal(t, "WARN", parseLogLevel(false).String())
	require.Equal(t, "DEBUG", parseLogLevel(true).String())
}
