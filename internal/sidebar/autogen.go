package sidebar

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/corpus"
)

// DefaultID is the sidebar id used when the tree is derived from the corpus.
const DefaultID = "sidebar"

// Autogenerate derives a sidebar from the directory layout of the corpus.
// Directories become categories linked to their README/index document;
// siblings are ordered by sidebar_position, then by key.
func Autogenerate(c *corpus.Corpus) *Sidebars {
	root := &dirEntry{}
	for _, d := range c.Documents() {
		dir := root
		if rel := path.Dir(d.RelPath); rel != "." {
			for _, seg := range strings.Split(rel, "/") {
				dir = dir.child(seg)
			}
		}
		if d.IsIndex {
			dir.index = d
			continue
		}
		dir.docs = append(dir.docs, d)
	}

	s := &Sidebars{}
	items := root.nodes(DefaultID, DefaultID)
	if root.index != nil {
		items = append([]Node{&DocRef{ID: root.index.ID, Position: Position{Sidebar: DefaultID, Path: DefaultID}}}, items...)
	}
	s.Add(DefaultID, items)
	return s
}

type dirEntry struct {
	name    string
	index   *corpus.Document
	docs    []*corpus.Document
	subdirs []*dirEntry
}

func (d *dirEntry) child(name string) *dirEntry {
	for _, s := range d.subdirs {
		if s.name == name {
			return s
		}
	}
	c := &dirEntry{name: name}
	d.subdirs = append(d.subdirs, c)
	return c
}

type sortable struct {
	pos    float64
	hasPos bool
	key    string
	node   func(p string) Node
}

func (d *dirEntry) nodes(sidebarID, p string) []Node {
	var entries []sortable
	for _, doc := range d.docs {
		pos, ok := doc.Position()
		entries = append(entries, sortable{pos: pos, hasPos: ok, key: doc.ID, node: func(at string) Node {
			return &DocRef{ID: doc.ID, Position: Position{Sidebar: sidebarID, Path: at}}
		}})
	}
	for _, sub := range d.subdirs {
		var pos float64
		var ok bool
		label := corpus.Humanize(sub.name)
		if sub.index != nil {
			pos, ok = sub.index.Position()
			label = sub.index.Label()
		}
		entries = append(entries, sortable{pos: pos, hasPos: ok, key: sub.name, node: func(at string) Node {
			c := &Category{Label: label, Position: Position{Sidebar: sidebarID, Path: at}}
			if sub.index != nil {
				c.Link = sub.index.ID
			}
			c.Items = sub.nodes(sidebarID, at+".items")
			return c
		}})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.hasPos != b.hasPos {
			return a.hasPos
		}
		if a.hasPos && a.pos != b.pos {
			return a.pos < b.pos
		}
		return a.key < b.key
	})

	out := make([]Node, 0, len(entries))
	for i, e := range entries {
		out = append(out, e.node(fmt.Sprintf("%s[%d]", p, i)))
	}
	return out
}
