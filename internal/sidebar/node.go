package sidebar

import "strconv"

// Node is one entry of a navigation tree: *Category, *DocRef or *Link.
type Node interface {
	Pos() Position
	node()
}

// Position locates a node in the declaration for diagnostics.
type Position struct {
	Sidebar string
	Path    string // e.g. "sidebar[2].items[4]"
	Line    int
}

func (p Position) String() string {
	if p.Line > 0 {
		return p.Path + " (line " + strconv.Itoa(p.Line) + ")"
	}
	return p.Path
}

// Category groups child nodes under a label. Link optionally names a
// document shown when the category itself is clicked.
type Category struct {
	Label     string
	Items     []Node
	Collapsed bool
	Link      string
	Position
}

// DocRef references a document of the content corpus by key.
type DocRef struct {
	ID    string
	Label string // overrides the document's own label when set
	Position
}

// Link is an external navigation entry.
type Link struct {
	Label string
	Href  string
	Position
}

func (c *Category) Pos() Position { return c.Position }
func (d *DocRef) Pos() Position   { return d.Position }
func (l *Link) Pos() Position     { return l.Position }

func (*Category) node() {}
func (*DocRef) node()   {}
func (*Link) node()     {}
