package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/studysite/internal/frontmatter"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/markdown"
)

// Options control discovery.
type Options struct {
	IncludeDrafts bool
}

// Corpus is the set of discovered documents keyed by id.
type Corpus struct {
	root  string
	docs  map[string]*Document
	byRel map[string]*Document
	ids   []string
}

// Discover walks root for Markdown documents and builds the corpus.
//
// Hidden entries and names starting with "_" are skipped. Drafts are dropped
// unless opts.IncludeDrafts is set.
func Discover(root string, opts Options) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDocsPathNotFound, root)
	}

	c := &Corpus{root: root, docs: map[string]*Document{}, byRel: map[string]*Document{}}
	permalinks := map[string]string{}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdownFile(name) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		doc, err := loadDocument(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if doc.Draft && !opts.IncludeDrafts {
			slog.Debug("Skipping draft document", logfields.DocID(doc.ID))
			return nil
		}

		if prev, dup := c.docs[doc.ID]; dup {
			return fmt.Errorf("%w: %q declared by %s and %s", ErrDuplicateID, doc.ID, prev.RelPath, doc.RelPath)
		}
		key := strings.ToLower(doc.Permalink)
		if prevID, clash := permalinks[key]; clash {
			return fmt.Errorf("%w: documents %q and %q both map to route %q", ErrPathCollision, prevID, doc.ID, doc.Permalink)
		}
		permalinks[key] = doc.ID
		c.docs[doc.ID] = doc
		c.byRel[doc.RelPath] = doc
		slog.Debug("Discovered document", logfields.DocID(doc.ID), logfields.Path(doc.RelPath))
		return nil
	})
	if err != nil {
		for _, known := range []error{ErrDuplicateID, ErrPathCollision, ErrInvalidFrontMatter, ErrFileReadFailed} {
			if errors.Is(err, known) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDocsDirWalkFailed, root, err)
	}

	for id := range c.docs {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	slog.Info("Content corpus discovered", logfields.Path(root), logfields.Count(len(c.ids)))
	return c, nil
}

func loadDocument(absPath, rel string) (*Document, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileReadFailed, rel, err)
	}
	parts, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFrontMatter, rel, err)
	}
	meta, err := frontmatter.DecodeMeta(parts.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFrontMatter, rel, err)
	}
	fields, err := frontmatter.ParseYAML(parts.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFrontMatter, rel, err)
	}

	id := strings.TrimSuffix(rel, path.Ext(rel))
	if meta.ID != "" {
		id = path.Join(path.Dir(id), meta.ID)
	}
	_, name := path.Split(strings.TrimSuffix(rel, path.Ext(rel)))

	doc := &Document{
		ID:              id,
		Source:          absPath,
		RelPath:         rel,
		Permalink:       permalinkFor(id, meta),
		SidebarLabel:    meta.SidebarLabel,
		SidebarPosition: meta.SidebarPosition,
		Description:     meta.Description,
		Tags:            meta.Tags,
		Draft:           meta.Draft,
		HideTitle:       meta.HideTitle,
		IsIndex:         isIndexName(name),
		Frontmatter:     fields,
		Body:            parts.Body,
	}
	if doc.Fingerprint, err = fingerprint(fields, parts.Body); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFrontMatter, rel, err)
	}

	switch {
	case meta.Title != "":
		doc.Title = meta.Title
	default:
		if h, ok := markdown.FirstHeading(parts.Body); ok {
			doc.Title = h
			doc.TitleFromBody = true
		} else {
			doc.Title = humanizeID(id, doc.IsIndex)
		}
	}
	return doc, nil
}

func humanizeID(id string, isIndex bool) string {
	dir, name := path.Split(id)
	if isIndex {
		if d := path.Base(strings.TrimSuffix(dir, "/")); d != "." && d != "" && d != "/" {
			return Humanize(d)
		}
	}
	return Humanize(name)
}

// fingerprint hashes the canonical front matter (sorted keys, LF newlines)
// together with the body, so reordering or restyling front matter keeps the
// fingerprint stable.
func fingerprint(fields map[string]any, body []byte) (string, error) {
	canonical, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	fm := strings.TrimSuffix(string(canonical), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

func isMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// Root returns the directory the corpus was discovered from.
func (c *Corpus) Root() string { return c.root }

// Get returns the document with the given id.
func (c *Corpus) Get(id string) (*Document, bool) {
	d, ok := c.docs[id]
	return d, ok
}

// Has reports whether id exists.
func (c *Corpus) Has(id string) bool {
	_, ok := c.docs[id]
	return ok
}

// IDs returns all document ids in sorted order.
func (c *Corpus) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Documents returns the documents ordered by id.
func (c *Corpus) Documents() []*Document {
	out := make([]*Document, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.docs[id])
	}
	return out
}

func (c *Corpus) Len() int { return len(c.ids) }

// ResolveFile maps a relative Markdown link found in document from to the
// target document. Fragments and queries are ignored.
func (c *Corpus) ResolveFile(from *Document, link string) (*Document, bool) {
	p, _, _ := markdown.SplitFragment(link)
	if p == "" {
		return nil, false
	}
	var rel string
	if strings.HasPrefix(p, "/") {
		rel = strings.TrimPrefix(path.Clean(p), "/")
	} else {
		rel = path.Clean(path.Join(path.Dir(from.RelPath), p))
	}
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return nil, false
	}
	d, ok := c.byRel[rel]
	return d, ok
}

// New builds a corpus from already constructed documents. It is intended for
// tests and tools that synthesize content.
func New(docs ...*Document) (*Corpus, error) {
	c := &Corpus{docs: map[string]*Document{}, byRel: map[string]*Document{}}
	for _, d := range docs {
		if _, dup := c.docs[d.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		if d.RelPath == "" {
			d.RelPath = d.ID + ".md"
		}
		d.IsIndex = d.IsIndex || isIndexName(path.Base(d.ID))
		if d.Permalink == "" {
			d.Permalink = permalinkFor(d.ID, frontmatter.Meta{})
		}
		c.docs[d.ID] = d
		c.byRel[d.RelPath] = d
		c.ids = append(c.ids, d.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}
