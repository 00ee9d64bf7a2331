// Package blog loads dated posts and produces the RSS feed.
package blog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/frontmatter"
	"git.home.luguber.info/inful/studysite/internal/markdown"
)

// WordsPerMinute drives the reading time estimate.
const WordsPerMinute = 200

// TruncateMarker separates the listing summary from the rest of a post.
const TruncateMarker = "<!-- truncate -->"

var ErrInvalidPost = errors.New("invalid blog post")

var datedName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// Post is one blog entry.
type Post struct {
	Slug        string
	Title       string
	Description string
	Date        time.Time
	Authors     []string
	Tags        []string
	Draft       bool
	Body        []byte
	Summary     []byte // body before TruncateMarker, or the whole body
	Truncated   bool
	ReadingTime int // minutes
	RelPath     string
	Permalink   string // "2024/05/01/welcome", relative to the blog base
}

type Options struct {
	IncludeDrafts bool
}

// Load reads posts from dir. A missing directory yields no posts. Posts are
// sorted newest first, ties broken by slug.
func Load(dir string, opts Options) ([]*Post, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var posts []*Post
	seen := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if d.IsDir() || (ext != ".md" && ext != ".markdown") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		post, err := loadPost(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if post.Draft && !opts.IncludeDrafts {
			return nil
		}
		if prev, dup := seen[post.Permalink]; dup {
			return fmt.Errorf("%w: %s and %s share permalink %q", ErrInvalidPost, prev, post.RelPath, post.Permalink)
		}
		seen[post.Permalink] = post.RelPath
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

func loadPost(file, rel string) (*Post, error) {
	content, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	parts, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPost, rel, err)
	}
	meta, err := frontmatter.DecodeMeta(parts.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPost, rel, err)
	}

	// "2024-05-01-welcome.md" or "2024-05-01-welcome/index.md"
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if strings.EqualFold(stem, "index") && path.Dir(rel) != "." {
		stem = path.Base(path.Dir(rel))
	}

	post := &Post{
		Title:       meta.Title,
		Description: meta.Description,
		Authors:     meta.Authors,
		Tags:        meta.Tags,
		Draft:       meta.Draft,
		Body:        parts.Body,
		RelPath:     rel,
	}

	slug := stem
	if m := datedName.FindStringSubmatch(stem); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			post.Date = t
		}
		slug = m[4]
	}
	if t, ok := meta.ParsedDate(); ok {
		post.Date = t
	}
	if meta.Slug != "" {
		slug = strings.Trim(meta.Slug, "/")
	}
	if post.Date.IsZero() {
		return nil, fmt.Errorf("%w: %s: no date in file name or front matter", ErrInvalidPost, rel)
	}
	post.Slug = slug
	post.Permalink = path.Join(post.Date.Format("2006/01/02"), slug)

	if post.Title == "" {
		if h, ok := markdown.FirstHeading(parts.Body); ok {
			post.Title = h
		} else {
			post.Title = corpus.Humanize(slug)
		}
	}
	if i := bytes.Index(parts.Body, []byte(TruncateMarker)); i >= 0 {
		post.Summary = parts.Body[:i]
		post.Truncated = true
	} else {
		post.Summary = parts.Body
	}
	post.ReadingTime = ReadingTime(markdown.WordCount(parts.Body))
	return post, nil
}

// ReadingTime returns ceil(words/WordsPerMinute), at least one minute for any
// non-empty text.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}
