package sidebar

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// SkipChildren may be returned by a WalkFunc to skip a category's items.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node in depth-first declaration order.
type WalkFunc func(sidebarID string, n Node, depth int) error

// Walk visits every node of every sidebar.
func (s *Sidebars) Walk(fn WalkFunc) error {
	for _, id := range s.order {
		if err := walkNodes(id, s.trees[id], 0, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkNodes(sidebarID string, nodes []Node, depth int, fn WalkFunc) error {
	for _, n := range nodes {
		err := fn(sidebarID, n, depth)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if c, ok := n.(*Category); ok {
			if err := walkNodes(sidebarID, c.Items, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ref is a document key together with where it was referenced.
type Ref struct {
	ID string
	Position
}

// Refs returns every document reference, including category links, in order.
func (s *Sidebars) Refs() []Ref {
	var refs []Ref
	_ = s.Walk(func(_ string, n Node, _ int) error {
		switch v := n.(type) {
		case *DocRef:
			refs = append(refs, Ref{ID: v.ID, Position: v.Position})
		case *Category:
			if v.Link != "" {
				refs = append(refs, Ref{ID: v.Link, Position: v.Position})
			}
		}
		return nil
	})
	return refs
}

// DocIDs returns the distinct referenced document keys in first-seen order.
func (s *Sidebars) DocIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range s.Refs() {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Resolver answers whether a document key exists.
type Resolver interface {
	Has(id string) bool
}

// BrokenRef is a reference whose key is not in the corpus.
type BrokenRef Ref

func (b BrokenRef) Error() string {
	return fmt.Sprintf("broken link: %q referenced from sidebar %q at %s", b.ID, b.Sidebar, b.Position)
}

// Validate returns every reference that does not resolve.
func (s *Sidebars) Validate(r Resolver) []BrokenRef {
	var broken []BrokenRef
	for _, ref := range s.Refs() {
		if !r.Has(ref.ID) {
			broken = append(broken, BrokenRef(ref))
		}
	}
	return broken
}

// Flatten returns the document keys of one sidebar in reading order. It
// drives previous/next pagination.
func (s *Sidebars) Flatten(sidebarID string) []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	_ = walkNodes(sidebarID, s.trees[sidebarID], 0, func(_ string, n Node, _ int) error {
		switch v := n.(type) {
		case *DocRef:
			add(v.ID)
		case *Category:
			add(v.Link)
		}
		return nil
	})
	return ids
}

// FirstDoc returns the first document of a sidebar.
func (s *Sidebars) FirstDoc(sidebarID string) (string, bool) {
	ids := s.Flatten(sidebarID)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// SidebarFor returns the first sidebar that references docID.
func (s *Sidebars) SidebarFor(docID string) (string, bool) {
	for _, id := range s.order {
		for _, d := range s.Flatten(id) {
			if d == docID {
				return id, true
			}
		}
	}
	return "", false
}

// Fprint writes an indented outline of all sidebars. label resolves the
// display label of a document key; it may be nil.
func (s *Sidebars) Fprint(w io.Writer, label func(id string) string) error {
	return s.Walk(func(sidebarID string, n Node, depth int) error {
		if depth == 0 && n == s.trees[sidebarID][0] {
			if _, err := fmt.Fprintf(w, "%s:\n", sidebarID); err != nil {
				return err
			}
		}
		indent := strings.Repeat("  ", depth+1)
		var line string
		switch v := n.(type) {
		case *Category:
			line = fmt.Sprintf("%s%s/", indent, v.Label)
			if v.Link != "" {
				line += fmt.Sprintf(" -> %s", v.Link)
			}
		case *DocRef:
			text := v.Label
			if text == "" && label != nil {
				text = label(v.ID)
			}
			if text == "" || text == v.ID {
				line = fmt.Sprintf("%s- %s", indent, v.ID)
			} else {
				line = fmt.Sprintf("%s- %s (%s)", indent, v.ID, text)
			}
		case *Link:
			line = fmt.Sprintf("%s- %s <%s>", indent, v.Label, v.Href)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}
