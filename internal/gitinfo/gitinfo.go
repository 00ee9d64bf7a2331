// Package gitinfo reads commit metadata of the repository that holds the
// site sources. Builds record it in the build report and history.
package gitinfo

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the site root is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Info describes the HEAD commit.
type Info struct {
	Commit  string    `json:"commit"`
	Short   string    `json:"short"`
	Branch  string    `json:"branch,omitempty"` // empty on a detached HEAD
	Author  string    `json:"author,omitempty"`
	Subject string    `json:"subject,omitempty"`
	When    time.Time `json:"when"`
}

// Head returns HEAD information for the repository containing dir. Parent
// directories are searched for the .git directory.
func Head(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return Info{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return Info{}, fmt.Errorf("get commit object: %w", err)
	}

	hash := ref.Hash().String()
	info := Info{
		Commit:  hash,
		Short:   hash[:7],
		Author:  commit.Author.Name,
		Subject: firstLine(commit.Message),
		When:    commit.Author.When.UTC(),
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
