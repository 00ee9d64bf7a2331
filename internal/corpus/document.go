package corpus

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/studysite/internal/frontmatter"
)

// Document is one entry of the content corpus. It is read-only once discovered.
type Document struct {
	ID              string   // path-like key, e.g. "week1/security"
	Source          string   // absolute filesystem path
	RelPath         string   // slash separated path relative to the docs directory
	Permalink       string   // route below the docs base path without slashes, "" for the root index
	Title           string
	SidebarLabel    string
	SidebarPosition *float64
	Description     string
	Tags            []string
	Draft           bool
	HideTitle       bool
	IsIndex         bool // README.md or index.md of a directory
	TitleFromBody   bool // Title came from the body's first heading
	Frontmatter     map[string]any
	Body            []byte
	Fingerprint     string
}

// Label returns the text shown for the document in navigation.
func (d *Document) Label() string {
	if d.SidebarLabel != "" {
		return d.SidebarLabel
	}
	return d.Title
}

// Dir returns the directory part of the id ("" at the root).
func (d *Document) Dir() string {
	dir := path.Dir(d.ID)
	if dir == "." {
		return ""
	}
	return dir
}

// Position returns the sidebar position, or ok=false when unset.
func (d *Document) Position() (float64, bool) {
	if d.SidebarPosition == nil {
		return 0, false
	}
	return *d.SidebarPosition, true
}

func isIndexName(name string) bool {
	n := strings.ToLower(name)
	return n == "readme" || n == "index"
}

// permalinkFor derives the route below the docs base for a document id,
// honoring a front matter slug. Absolute slugs replace the whole path,
// relative slugs replace the last segment.
func permalinkFor(id string, meta frontmatter.Meta) string {
	dir, name := path.Split(id)
	dir = strings.TrimSuffix(dir, "/")

	if s := strings.TrimSpace(meta.Slug); s != "" {
		if strings.HasPrefix(s, "/") {
			return strings.Trim(s, "/")
		}
		return strings.Trim(path.Join(dir, s), "/")
	}
	if isIndexName(name) {
		return dir
	}
	return id
}

var titleCaser = cases.Title(language.English)

// Humanize turns a key segment like "GETTING_STARTED" or "soql-dml" into
// "Getting Started" / "Soql Dml".
func Humanize(segment string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(segment)
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}
