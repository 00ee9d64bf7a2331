package linkcheck

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/markdown"
	"git.home.luguber.info/inful/studysite/internal/routes"
)

// HTMLLink is a link found in generated HTML.
type HTMLLink struct {
	URL       string
	Text      string
	Tag       string // a, img, script, link, ...
	Attribute string // href or src
}

// IsInternal reports whether the link targets the site itself.
func (l HTMLLink) IsInternal() bool {
	u, err := url.Parse(l.URL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && !strings.HasPrefix(l.URL, "#")
}

// IsExternal reports whether the link is an absolute http(s) URL.
func (l HTMLLink) IsExternal() bool {
	u, err := url.Parse(l.URL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExtractHTMLLinks returns the links of an HTML document in document order.
func ExtractHTMLLinks(r io.Reader) ([]HTMLLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}
	var links []HTMLLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := elementLink(n); ok {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node) (HTMLLink, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script", "video", "audio", "source", "iframe":
		attr = "src"
	default:
		return HTMLLink{}, false
	}
	v := strings.TrimSpace(getAttr(n, attr))
	if v == "" {
		return HTMLLink{}, false
	}
	text := ""
	switch n.Data {
	case "a":
		text = strings.TrimSpace(extractText(n))
	case "img":
		text = getAttr(n, "alt")
	case "link":
		text = getAttr(n, "rel")
	}
	return HTMLLink{URL: v, Text: text, Tag: n.Data, Attribute: attr}, true
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}

// ScanOutput parses every HTML file under outDir and resolves internal
// href/src values against the generated tree. Links to Markdown sources are
// governed by on_broken_markdown_links and skipped here. Targets whose path
// is listed in ignore are served outside the tree and not checked.
func ScanOutput(outDir string, router *routes.Router, policy config.ReportingSeverity, ignore ...string) (*Report, error) {
	r := &Report{}
	skip := make(map[string]struct{}, len(ignore))
	for _, p := range ignore {
		skip[p] = struct{}{}
	}
	err := filepath.WalkDir(outDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		return scanFile(r, outDir, p, rel, router, policy, skip)
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan generated HTML").
			WithContext("dir", outDir).Fatal().Build()
	}
	return r, nil
}

func scanFile(r *Report, outDir, file, rel string, router *routes.Router, policy config.ReportingSeverity, skip map[string]struct{}) error {
	f, err := os.Open(filepath.Clean(file))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractHTMLLinks(f)
	if err != nil {
		return err
	}
	page := &url.URL{Path: routes.Join(router.Base(), rel)}
	for _, l := range links {
		if !l.IsInternal() || markdown.IsMarkdownFile(l.URL) {
			continue
		}
		u, err := url.Parse(l.URL)
		if err != nil {
			r.Checked++
			r.Broken(policy, RuleHTMLLink, rel, l.URL)
			continue
		}
		target := page.ResolveReference(u)
		if _, ok := skip[target.Path]; ok {
			continue
		}
		r.Checked++
		out, ok := router.OutputPath(target.Path)
		if !ok || !exists(outDir, out) {
			r.Broken(policy, RuleHTMLLink, rel, l.URL)
		}
	}
	return nil
}

func exists(outDir, rel string) bool {
	p := filepath.Join(outDir, filepath.FromSlash(path.Clean(rel)))
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(p, "index.html"))
		return err == nil
	}
	return true
}
