package render

import (
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

// Sidebar renders the navigation tree of sidebarID with activeID highlighted.
// Categories on the active path are always open.
func (r *Renderer) Sidebar(sidebarID, activeID string) []SidebarItem {
	if r.nav.Sidebars == nil {
		return nil
	}
	nodes, _ := r.nav.Sidebars.Items(sidebarID)
	items, _ := r.sidebarItems(nodes, activeID)
	return items
}

func (r *Renderer) sidebarItems(nodes []sidebar.Node, activeID string) ([]SidebarItem, bool) {
	var (
		out       []SidebarItem
		anyActive bool
	)
	for _, n := range nodes {
		switch v := n.(type) {
		case *sidebar.DocRef:
			label := v.Label
			if label == "" {
				label = r.docLabel(v.ID)
			}
			active := v.ID == activeID
			anyActive = anyActive || active
			out = append(out, SidebarItem{Kind: "doc", Label: label, Href: r.docHref(v.ID), Active: active})
		case *sidebar.Link:
			out = append(out, SidebarItem{Kind: "link", Label: v.Label, Href: v.Href, External: true})
		case *sidebar.Category:
			children, childActive := r.sidebarItems(v.Items, activeID)
			selfActive := v.Link != "" && v.Link == activeID
			item := SidebarItem{
				Kind:   "category",
				Label:  v.Label,
				Active: selfActive,
				Open:   !v.Collapsed || childActive || selfActive,
				Items:  children,
			}
			if v.Link != "" {
				item.Href = r.docHref(v.Link)
			}
			anyActive = anyActive || childActive || selfActive
			out = append(out, item)
		}
	}
	return out, anyActive
}

func (r *Renderer) docLabel(id string) string {
	if r.nav.Corpus != nil {
		if d, ok := r.nav.Corpus.Get(id); ok {
			return d.Label()
		}
	}
	return id
}

// Breadcrumbs returns the categories leading to activeID followed by the
// document itself.
func (r *Renderer) Breadcrumbs(sidebarID, activeID string) []Crumb {
	if r.nav.Sidebars == nil {
		return nil
	}
	nodes, _ := r.nav.Sidebars.Items(sidebarID)
	trail, ok := r.trail(nodes, activeID)
	if !ok {
		return nil
	}
	return trail
}

func (r *Renderer) trail(nodes []sidebar.Node, activeID string) ([]Crumb, bool) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *sidebar.DocRef:
			if v.ID == activeID {
				return []Crumb{{Label: r.docLabel(v.ID)}}, true
			}
		case *sidebar.Category:
			c := Crumb{Label: v.Label}
			if v.Link != "" {
				c.Href = r.docHref(v.Link)
			}
			if v.Link == activeID {
				return []Crumb{{Label: v.Label}}, true
			}
			if rest, ok := r.trail(v.Items, activeID); ok {
				return append([]Crumb{c}, rest...), true
			}
		}
	}
	return nil, false
}

// Pager returns the previous and next documents of activeID in sidebar order.
func (r *Renderer) Pager(sidebarID, activeID string) (prev, next *PageLink) {
	if r.nav.Sidebars == nil {
		return nil, nil
	}
	ids := r.nav.Sidebars.Flatten(sidebarID)
	for i, id := range ids {
		if id != activeID {
			continue
		}
		if i > 0 {
			prev = &PageLink{Label: r.docLabel(ids[i-1]), Href: r.docHref(ids[i-1])}
		}
		if i+1 < len(ids) {
			next = &PageLink{Label: r.docLabel(ids[i+1]), Href: r.docHref(ids[i+1])}
		}
		break
	}
	return prev, next
}
