package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestHead(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	docs := filepath.Join(root, "website", "docs")
	require.NoError(t, os.MkdirAll(docs, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "intro.md"), []byte("# Intro\n"), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	when := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	hash, err := w.Commit("Add week 1 docs\n\nLonger body.", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)

	info, err := Head(filepath.Join(root, "website"))
	require.NoError(t, err)
	require.Equal(t, hash.String(), info.Commit)
	require.Equal(t, hash.String()[:7], info.Short)
	require.Equal(t, "Add week 1 docs", info.Subject)
	require.Equal(t, "Test User", info.Author)
	require.True(t, when.Equal(info.When))
	require.NotEmpty(t, info.Branch)
}

func TestHead_NotRepository(t *testing.T) {
	_, err := Head(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}
