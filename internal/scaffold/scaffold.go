// Package scaffold writes the starter content of a new site.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/frontmatter"
)

//go:embed all:files
var files embed.FS

// Write copies the starter tree into dir. Existing files are kept unless
// force is set. Blog posts without a date are dated now. It returns the
// written paths relative to dir, in walk order.
func Write(dir string, force bool, now time.Time) ([]string, error) {
	root, err := fs.Sub(files, "files")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "scaffold tree missing").Build()
	}
	var written []string
	err = fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(p))
		if _, statErr := os.Stat(dst); statErr == nil && !force {
			return nil
		}
		data, err := fs.ReadFile(root, p)
		if err != nil {
			return err
		}
		if strings.HasPrefix(p, "blog/") && path.Ext(p) == ".md" {
			if data, err = stampDate(data, now); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return err
		}
		written = append(written, path.Clean(p))
		return nil
	})
	if err != nil {
		return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write scaffold").
			WithContext("dir", dir).Build()
	}
	return written, nil
}

// stampDate sets the front matter date of a post that has none.
func stampDate(content []byte, now time.Time) ([]byte, error) {
	parts, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}
	fields, err := frontmatter.ParseYAML(parts.Raw)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	if _, ok := fields["date"]; ok {
		return content, nil
	}
	fields["date"] = now.UTC().Format("2006-01-02")
	raw, err := frontmatter.SerializeYAML(fields, parts.Style)
	if err != nil {
		return nil, err
	}
	parts.Raw = raw
	parts.Had = true
	return frontmatter.Join(parts), nil
}
