package render

import (
	"html/template"

	"github.com/a-h/templ"

	"git.home.luguber.info/inful/studysite/internal/landing"
	"git.home.luguber.info/inful/studysite/internal/markdown"
)

// Layout carries everything the base template needs.
type Layout struct {
	Lang        string
	SiteTitle   string
	PageTitle   string
	Description string
	Canonical   string
	HomeHref    string
	Favicon     string
	CSS         string
	CustomCSS   string
	SocialImage string
	FeedHref    string
	Section     string // home|docs|blog|notfound
	Navbar      NavbarView
	Footer      FooterView
	Prism       PrismView
	LiveReload  string // script route; empty disables live reload
}

// BodyClass returns the classes of the <body> element.
func (l Layout) BodyClass() string {
	return templ.Classes(
		"studysite",
		templ.KV("page--home", l.Section == "home"),
		templ.KV("page--docs", l.Section == "docs"),
		templ.KV("page--blog", l.Section == "blog"),
	).String()
}

type NavbarView struct {
	Title   string
	LogoSrc string
	LogoAlt string
	Left    []NavItem
	Right   []NavItem
}

// NavItem is a rendered navbar or footer link.
type NavItem struct {
	Label    string
	Href     string
	External bool
	Active   bool
}

func (n NavItem) Class() string {
	return templ.Classes("navbar__item navbar__link", templ.KV("navbar__link--active", n.Active)).String()
}

type FooterView struct {
	Style     string
	Columns   []FooterColumnView
	Copyright string
}

func (f FooterView) Class() string {
	return templ.Classes("footer", templ.KV("footer--dark", f.Style == "dark")).String()
}

type FooterColumnView struct {
	Title string
	Items []NavItem
}

type PrismView struct {
	Theme     string
	DarkTheme string
	Languages string
}

// SidebarItem is one rendered navigation entry.
type SidebarItem struct {
	Kind     string // category|doc|link
	Label    string
	Href     string
	External bool
	Active   bool // this entry is the current page
	Open     bool // category is expanded
	Items    []SidebarItem
}

func (s SidebarItem) LinkClass() string {
	return templ.Classes(
		"menu__link",
		templ.KV("menu__link--sublist", s.Kind == "category"),
		templ.KV("menu__link--active", s.Active),
	).String()
}

// Crumb is one breadcrumb entry; Href is empty for categories without a page.
type Crumb struct {
	Label string
	Href  string
}

// PageLink is a previous/next pagination target.
type PageLink struct {
	Label string
	Href  string
}

// TOCEntry is a table of contents line.
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

func (t TOCEntry) Class() string {
	return templ.Classes("table-of-contents__link", templ.KV("toc-indent", t.Level > 2)).String()
}

// TOC keeps level 2 and 3 headings that carry an id.
func TOC(headings []markdown.Heading) []TOCEntry {
	var out []TOCEntry
	for _, h := range headings {
		if (h.Level == 2 || h.Level == 3) && h.ID != "" {
			out = append(out, TOCEntry{ID: h.ID, Text: h.Text, Level: h.Level})
		}
	}
	return out
}

// DocView is a rendered document page.
type DocView struct {
	Layout      Layout
	Title       string
	ShowTitle   bool
	HTML        template.HTML
	TOC         []TOCEntry
	Sidebar     []SidebarItem
	Breadcrumbs []Crumb
	Prev        *PageLink
	Next        *PageLink
	EditURL     string
	Tags        []string
}

// PostView is a blog post as shown in listings and on its own page.
type PostView struct {
	Title       string
	Href        string
	DateISO     string
	DateText    string
	Authors     []string
	Tags        []string
	ReadingTime int
	Summary     template.HTML
	HTML        template.HTML
	Truncated   bool
	EditURL     string
}

type BlogListView struct {
	Layout          Layout
	Title           string
	Posts           []PostView
	ShowReadingTime bool
}

type BlogPostView struct {
	Layout          Layout
	Post            PostView
	ShowReadingTime bool
	Newer           *PageLink
	Older           *PageLink
}

type LandingView struct {
	Layout Layout
	Page   landing.Page
}

type NotFoundView struct {
	Layout Layout
}
