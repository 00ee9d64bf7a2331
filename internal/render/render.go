// Package render turns page views into HTML. Layouts are embedded
// html/template files; each page is exposed as a templ.Component so callers
// can render into files, buffers or HTTP responses alike.
package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/routes"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Page template names.
const (
	PageDoc      = "doc"
	PageLanding  = "landing"
	PageBlogList = "blog_list"
	PageBlogPost = "blog_post"
	PageNotFound = "notfound"
)

// StylesheetPath is the output path of the built-in stylesheet.
const StylesheetPath = "assets/site.css"

// Navigation is the content the doc chrome is derived from.
type Navigation struct {
	Corpus   *corpus.Corpus
	Sidebars *sidebar.Sidebars
}

type Options struct {
	// Now provides the copyright year.
	Now time.Time
	// LiveReloadScript is the route of the live reload client. Empty for
	// production builds.
	LiveReloadScript string
	// CustomCSS is the route of the copied custom stylesheet, if any.
	CustomCSS string
	// Feed enables the RSS <link> in every page head.
	Feed bool
}

// Renderer renders the pages of one site.
type Renderer struct {
	site   *config.Site
	router *routes.Router
	nav    Navigation
	opts   Options
	pages  map[string]*template.Template
}

// New parses the embedded templates.
func New(site *config.Site, router *routes.Router, nav Navigation, opts Options) (*Renderer, error) {
	r := &Renderer{site: site, router: router, nav: nav, opts: opts, pages: map[string]*template.Template{}}
	funcs := template.FuncMap{
		"route": router.Internal,
		"join":  strings.Join,
	}
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse base templates: %w", err)
	}
	for _, name := range []string{PageDoc, PageLanding, PageBlogList, PageBlogPost, PageNotFound} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Component returns a component that renders page name with data.
func (r *Renderer) Component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := r.pages[name]
		if !ok {
			return fmt.Errorf("unknown page template %q", name)
		}
		return t.ExecuteTemplate(w, "base", data)
	})
}

func (r *Renderer) Doc(v DocView) templ.Component           { return r.Component(PageDoc, v) }
func (r *Renderer) Landing(v LandingView) templ.Component   { return r.Component(PageLanding, v) }
func (r *Renderer) BlogList(v BlogListView) templ.Component { return r.Component(PageBlogList, v) }
func (r *Renderer) BlogPost(v BlogPostView) templ.Component { return r.Component(PageBlogPost, v) }
func (r *Renderer) NotFound(v NotFoundView) templ.Component { return r.Component(PageNotFound, v) }

// Assets returns the built-in static assets (rooted so that StylesheetPath
// resolves).
func Assets() fs.FS {
	return assetFS
}

// Layout builds the common chrome for a page at route.
func (r *Renderer) Layout(title, description, route, section string) Layout {
	site := r.site
	pageTitle := site.Title
	if title != "" && title != site.Title {
		pageTitle = title + " | " + site.Title
	}
	if description == "" {
		description = site.Tagline
	}
	l := Layout{
		Lang:        site.I18n.DefaultLocale,
		SiteTitle:   site.Title,
		PageTitle:   pageTitle,
		Description: description,
		Canonical:   r.router.Absolute(route),
		HomeHref:    r.router.Home(),
		CSS:         r.router.Asset(StylesheetPath),
		CustomCSS:   r.opts.CustomCSS,
		Section:     section,
		Navbar:      r.navbar(section),
		Footer:      r.footer(),
		Prism: PrismView{
			Theme:     site.Theme.Prism.Theme,
			DarkTheme: site.Theme.Prism.DarkTheme,
			Languages: strings.Join(site.Theme.Prism.AdditionalLanguages, " "),
		},
		LiveReload: r.opts.LiveReloadScript,
	}
	if site.Favicon != "" {
		l.Favicon = r.router.Asset(site.Favicon)
	}
	if site.Theme.Image != "" {
		l.SocialImage = r.router.Absolute(r.router.Asset(site.Theme.Image))
	}
	if r.opts.Feed {
		l.FeedHref = r.router.BlogFeed()
	}
	return l
}

func (r *Renderer) navbar(section string) NavbarView {
	nb := r.site.Theme.Navbar
	v := NavbarView{Title: nb.Title, LogoAlt: nb.Logo.Alt}
	if nb.Logo.Src != "" {
		v.LogoSrc = r.router.Asset(nb.Logo.Src)
	}
	for _, item := range nb.Items {
		ni := NavItem{Label: item.Label}
		switch item.Type {
		case config.NavbarDocSidebar:
			if id, ok := r.nav.firstDoc(item.SidebarID); ok {
				ni.Href = r.docHref(id)
			}
			ni.Active = section == "docs"
		case config.NavbarDoc:
			ni.Href = r.docHref(item.DocID)
		default:
			if item.Href != "" {
				ni.Href, ni.External = item.Href, true
			} else {
				ni.Href = r.router.Internal(item.To)
				ni.Active = section == "blog" && routes.Key(ni.Href) == routes.Key(r.router.BlogIndex())
			}
		}
		if item.Position == "right" {
			v.Right = append(v.Right, ni)
		} else {
			v.Left = append(v.Left, ni)
		}
	}
	return v
}

func (r *Renderer) footer() FooterView {
	f := r.site.Theme.Footer
	v := FooterView{Style: f.Style, Copyright: r.site.Copyright(r.opts.Now)}
	for _, col := range f.Links {
		cv := FooterColumnView{Title: col.Title}
		for _, l := range col.Items {
			if l.Href != "" {
				cv.Items = append(cv.Items, NavItem{Label: l.Label, Href: l.Href, External: true})
			} else {
				cv.Items = append(cv.Items, NavItem{Label: l.Label, Href: r.router.Internal(l.To)})
			}
		}
		v.Columns = append(v.Columns, cv)
	}
	return v
}

func (r *Renderer) docHref(id string) string {
	if r.nav.Corpus == nil {
		return ""
	}
	d, ok := r.nav.Corpus.Get(id)
	if !ok {
		return ""
	}
	return r.router.Doc(d)
}

// EditURL returns the "Edit this page" target for a file below dir, or "".
func EditURL(prefix, dir, rel string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimSuffix(prefix, "/") + "/" + path.Join(dir, rel)
}

func (n Navigation) firstDoc(sidebarID string) (string, bool) {
	if n.Sidebars == nil {
		return "", false
	}
	return n.Sidebars.FirstDoc(sidebarID)
}
