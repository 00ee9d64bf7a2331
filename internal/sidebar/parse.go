package sidebar

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSidebar is wrapped by every declaration error.
var ErrInvalidSidebar = errors.New("invalid sidebar declaration")

// Sidebars is an ordered set of named navigation trees.
type Sidebars struct {
	order []string
	trees map[string][]Node
}

// Load reads and parses a sidebar declaration file.
func Load(path string) (*Sidebars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidebars: %w", err)
	}
	return Parse(data)
}

// rawNode is the mapping form of a node.
type rawNode struct {
	Type      string      `yaml:"type"`
	Label     string      `yaml:"label"`
	ID        string      `yaml:"id"`
	Href      string      `yaml:"href"`
	Link      string      `yaml:"link"`
	Collapsed bool        `yaml:"collapsed"`
	Items     []yaml.Node `yaml:"items"`
}

// Parse decodes a sidebar declaration. The document is a mapping of sidebar
// id to a list of nodes; a bare string item is a document reference.
func Parse(data []byte) (*Sidebars, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSidebar, err)
	}
	s := &Sidebars{trees: map[string][]Node{}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return s, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must map sidebar ids to item lists", ErrInvalidSidebar, root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		id := key.Value
		if _, dup := s.trees[id]; dup {
			return nil, fmt.Errorf("%w: line %d: sidebar %q declared twice", ErrInvalidSidebar, key.Line, id)
		}
		if val.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: line %d: sidebar %q must be a list", ErrInvalidSidebar, val.Line, id)
		}
		items, err := parseItems(id, id, val.Content)
		if err != nil {
			return nil, err
		}
		s.Add(id, items)
	}
	return s, nil
}

func parseItems(sidebarID, path string, nodes []*yaml.Node) ([]Node, error) {
	items := make([]Node, 0, len(nodes))
	for i, n := range nodes {
		item, err := parseNode(sidebarID, fmt.Sprintf("%s[%d]", path, i), n)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseNode(sidebarID, path string, n *yaml.Node) (Node, error) {
	pos := Position{Sidebar: sidebarID, Path: path, Line: n.Line}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidSidebar, pos, fmt.Sprintf(format, args...))
	}

	switch n.Kind {
	case yaml.ScalarNode:
		id := strings.TrimSpace(n.Value)
		if id == "" {
			return nil, fail("empty document key")
		}
		return &DocRef{ID: id, Position: pos}, nil
	case yaml.MappingNode:
	default:
		return nil, fail("item must be a document key or a mapping")
	}

	var raw rawNode
	if err := n.Decode(&raw); err != nil {
		return nil, fail("%v", err)
	}
	kind := raw.Type
	if kind == "" {
		switch {
		case raw.Items != nil:
			kind = "category"
		case raw.Href != "":
			kind = "link"
		case raw.ID != "":
			kind = "doc"
		}
	}

	switch kind {
	case "category":
		if strings.TrimSpace(raw.Label) == "" {
			return nil, fail("category without label")
		}
		children := make([]*yaml.Node, len(raw.Items))
		for i := range raw.Items {
			children[i] = &raw.Items[i]
		}
		items, err := parseItems(sidebarID, path+".items", children)
		if err != nil {
			return nil, err
		}
		return &Category{Label: raw.Label, Items: items, Collapsed: raw.Collapsed, Link: raw.Link, Position: pos}, nil
	case "doc":
		if raw.ID == "" {
			return nil, fail("doc item without id")
		}
		return &DocRef{ID: raw.ID, Label: raw.Label, Position: pos}, nil
	case "link":
		if raw.Href == "" {
			return nil, fail("link item without href")
		}
		if raw.Label == "" {
			return nil, fail("link item without label")
		}
		return &Link{Label: raw.Label, Href: raw.Href, Position: pos}, nil
	case "":
		return nil, fail("item has neither id, href nor items")
	default:
		return nil, fail("unknown type %q", kind)
	}
}

// Add appends (or replaces) a sidebar.
func (s *Sidebars) Add(id string, items []Node) {
	if s.trees == nil {
		s.trees = map[string][]Node{}
	}
	if _, exists := s.trees[id]; !exists {
		s.order = append(s.order, id)
	}
	s.trees[id] = items
}

// IDs returns sidebar ids in declaration order.
func (s *Sidebars) IDs() []string { return append([]string(nil), s.order...) }

// Items returns the top-level nodes of a sidebar.
func (s *Sidebars) Items(id string) ([]Node, bool) {
	items, ok := s.trees[id]
	return items, ok
}

// Len returns the number of sidebars.
func (s *Sidebars) Len() int { return len(s.order) }
