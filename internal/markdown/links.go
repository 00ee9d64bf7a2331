package markdown

import (
	"net/url"
	"strings"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// IsLocal reports whether dest points inside the site (no scheme, no host,
// not a pure fragment).
func IsLocal(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// IsMarkdownFile reports whether a local destination targets a Markdown source
// file, ignoring query and fragment.
func IsMarkdownFile(dest string) bool {
	p, _, _ := SplitFragment(dest)
	p = strings.ToLower(p)
	return strings.HasSuffix(p, ".md") || strings.HasSuffix(p, ".markdown") || strings.HasSuffix(p, ".mdx")
}

// SplitFragment splits dest into its path and the "?query#fragment" suffix.
func SplitFragment(dest string) (path, suffix string, hasSuffix bool) {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i], dest[i:], true
	}
	return dest, "", false
}
