package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// LinkResolver rewrites local link and image destinations during rendering.
// Returning ok=false leaves the destination untouched and records it as unresolved.
type LinkResolver interface {
	ResolveLink(dest string) (rewritten string, ok bool)
}

// LinkResolverFunc adapts a function to LinkResolver.
type LinkResolverFunc func(dest string) (string, bool)

func (f LinkResolverFunc) ResolveLink(dest string) (string, bool) { return f(dest) }

// Heading is an entry of a page's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is the outcome of rendering one Markdown body.
type Result struct {
	HTML       []byte
	Headings   []Heading
	Title      string // text of the first level-1 heading, if any
	Unresolved []string
}

// Renderer converts Markdown bodies (front matter already removed) to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a GFM renderer with automatic heading ids. Raw HTML in
// authored content is passed through.
func NewRenderer() *Renderer {
	return &Renderer{md: newGoldmark()}
}

func newGoldmark() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render parses body, rewrites local destinations through resolver (which may be nil)
// and renders HTML.
func (r *Renderer) Render(body []byte, resolver LinkResolver) (*Result, error) {
	root := r.md.Parser().Parse(text.NewReader(body))

	res := &Result{}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			h := Heading{Level: node.Level, Text: nodeText(node, body)}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			if node.Level == 1 && res.Title == "" {
				res.Title = h.Text
			}
			res.Headings = append(res.Headings, h)
		case *gmast.Link:
			node.Destination = resolve(node.Destination, resolver, res)
		case *gmast.Image:
			node.Destination = resolve(node.Destination, resolver, res)
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, root); err != nil {
		return nil, err
	}
	res.HTML = buf.Bytes()
	return res, nil
}

func resolve(dest []byte, resolver LinkResolver, res *Result) []byte {
	d := string(dest)
	if resolver == nil || !IsLocal(d) {
		return dest
	}
	rewritten, ok := resolver.ResolveLink(d)
	if !ok {
		res.Unresolved = append(res.Unresolved, d)
		return dest
	}
	return []byte(rewritten)
}

// ExtractLinks parses a Markdown body and extracts link-like constructs.
// Reference-style links are reported once, at their use site; unused
// reference definitions are not links.
//
// This is an analysis API; it does not render.
func ExtractLinks(body []byte) []Link {
	root := newGoldmark().Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

// FirstHeading returns the text of the first level-1 heading.
func FirstHeading(body []byte) (string, bool) {
	root := newGoldmark().Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if h, ok := n.(*gmast.Heading); ok && entering && h.Level == 1 {
			title = nodeText(h, body)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title, title != ""
}

// WordCount counts whitespace separated words, used for reading time estimates.
func WordCount(body []byte) int {
	return len(strings.Fields(string(body)))
}

func nodeText(n gmast.Node, src []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
