// Package linkcheck implements the build-time consistency pass: navigation
// keys, configured links and content links are resolved before rendering,
// and the generated HTML is scanned afterwards.
package linkcheck

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/markdown"
	"git.home.luguber.info/inful/studysite/internal/routes"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

// RouteSet is the set of routes a build will produce.
type RouteSet map[string]struct{}

// NewRouteSet returns a set containing routes.
func NewRouteSet(rs ...string) RouteSet {
	s := RouteSet{}
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

func (s RouteSet) Add(route string) { s[routes.Key(route)] = struct{}{} }

func (s RouteSet) Has(route string) bool {
	_, ok := s[routes.Key(route)]
	return ok
}

// TargetSet is a group of link targets declared by one source, such as the
// landing page.
type TargetSet struct {
	Rule    Rule
	Source  string
	Targets []string
}

// Checker runs the pre-render pass.
type Checker struct {
	Site     *config.Site
	Router   *routes.Router
	Corpus   *corpus.Corpus
	Sidebars *sidebar.Sidebars
	Routes   RouteSet
}

// Run executes every pre-render check and returns the combined report.
func (c *Checker) Run(extra ...TargetSet) *Report {
	r := &Report{}
	c.CheckSidebars(r)
	c.CheckNavbar(r)
	c.CheckFooter(r)
	for _, set := range extra {
		c.CheckTargets(r, set.Rule, set.Source, set.Targets)
	}
	c.CheckMarkdown(r)
	return r
}

// CheckSidebars reports every dangling document reference. A dangling
// reference always aborts the build, whatever on_broken_links says.
func (c *Checker) CheckSidebars(r *Report) {
	for _, ref := range c.Sidebars.Refs() {
		r.Checked++
		if !c.Corpus.Has(ref.ID) {
			r.Fatal(RuleSidebarRef, fmt.Sprintf("sidebar %q at %s", ref.Sidebar, ref.Position), ref.ID)
		}
	}
}

// CheckNavbar resolves navbar items.
func (c *Checker) CheckNavbar(r *Report) {
	policy := c.Site.OnBrokenLinks
	for i, item := range c.Site.Theme.Navbar.Items {
		source := fmt.Sprintf("navbar item %q (theme.navbar.items[%d])", item.Label, i)
		r.Checked++
		switch item.Type {
		case config.NavbarDocSidebar:
			if _, ok := c.Sidebars.FirstDoc(item.SidebarID); !ok {
				r.Broken(policy, RuleNavbarLink, source, item.SidebarID)
			}
		case config.NavbarDoc:
			if !c.Corpus.Has(item.DocID) {
				r.Broken(policy, RuleNavbarLink, source, item.DocID)
			}
		default:
			c.checkTarget(r, policy, RuleNavbarLink, source, firstNonEmpty(item.To, item.Href))
		}
	}
}

// CheckFooter resolves footer links.
func (c *Checker) CheckFooter(r *Report) {
	for _, col := range c.Site.Theme.Footer.Links {
		for _, item := range col.Items {
			r.Checked++
			source := fmt.Sprintf("footer %q link %q", col.Title, item.Label)
			c.checkTarget(r, c.Site.OnBrokenLinks, RuleFooterLink, source, firstNonEmpty(item.To, item.Href))
		}
	}
}

// CheckTargets resolves a list of site-relative routes or absolute URLs.
func (c *Checker) CheckTargets(r *Report, rule Rule, source string, targets []string) {
	for _, t := range targets {
		r.Checked++
		c.checkTarget(r, c.Site.OnBrokenLinks, rule, source, t)
	}
}

func (c *Checker) checkTarget(r *Report, policy config.ReportingSeverity, rule Rule, source, target string) {
	switch {
	case config.IsAbsoluteURL(target):
	case strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//"):
		if !c.Routes.Has(c.Router.Internal(target)) {
			r.Broken(policy, rule, source, target)
		}
	default:
		r.Broken(policy, rule, source, target)
	}
}

// CheckMarkdown resolves links inside document bodies.
func (c *Checker) CheckMarkdown(r *Report) {
	for _, doc := range c.Corpus.Documents() {
		for _, link := range markdown.ExtractLinks(doc.Body) {
			dest := strings.TrimSpace(link.Destination)
			if dest == "" || strings.HasPrefix(dest, "#") {
				continue
			}
			r.Checked++
			c.checkContentLink(r, doc, dest)
		}
	}
}

func (c *Checker) checkContentLink(r *Report, doc *corpus.Document, dest string) {
	if !markdown.IsLocal(dest) {
		u, err := url.Parse(dest)
		if err != nil || ((u.Scheme == "http" || u.Scheme == "https") && u.Host == "") {
			r.Add(config.SeverityWarn, Issue{
				Rule: RuleExternalURL, Source: doc.RelPath, Target: dest,
				Message: fmt.Sprintf("malformed URL %q in %s", dest, doc.RelPath),
			})
		}
		return
	}
	if markdown.IsMarkdownFile(dest) {
		if _, ok := c.Corpus.ResolveFile(doc, dest); !ok {
			r.Broken(c.Site.OnBrokenMarkdownLinks, RuleMarkdownLink, doc.RelPath, dest)
		}
		return
	}
	if strings.HasPrefix(dest, "/") {
		if !c.Routes.Has(c.Router.Internal(dest)) {
			r.Broken(c.Site.OnBrokenLinks, RuleInternalLink, doc.RelPath, dest)
		}
	}
	// Relative asset links are resolved against the generated tree by ScanOutput.
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
