// Package routes computes base-path aware URLs and the output files they map to.
package routes

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
)

// Join joins URL path segments, collapsing duplicate slashes. The result
// always has a leading slash and keeps a trailing slash when the last
// non-empty part has one.
func Join(parts ...string) string {
	var segs []string
	trailing := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		trailing = strings.HasSuffix(p, "/")
		for _, s := range strings.Split(p, "/") {
			if s != "" {
				segs = append(segs, s)
			}
		}
	}
	if len(segs) == 0 {
		return "/"
	}
	out := "/" + strings.Join(segs, "/")
	if trailing {
		out += "/"
	}
	return out
}

// Router derives routes for a site.
type Router struct {
	base          string
	origin        string
	docsBase      string
	blogBase      string
	trailingSlash bool
}

// New returns a Router for site.
func New(site *config.Site) *Router {
	return &Router{
		base:          site.BaseURL,
		origin:        strings.TrimSuffix(site.URL, "/"),
		docsBase:      strings.Trim(site.Docs.RouteBasePath, "/"),
		blogBase:      strings.Trim(site.Blog.RouteBasePath, "/"),
		trailingSlash: site.UsesTrailingSlash(),
	}
}

// Base returns the site base path ("/learn-salesforce/").
func (r *Router) Base() string { return r.base }

// page renders a page route for a site-relative path.
func (r *Router) page(rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return Join(r.base)
	}
	p := Join(r.base, rel)
	if r.trailingSlash {
		return p + "/"
	}
	return p
}

// Home is the landing page route.
func (r *Router) Home() string { return r.page("") }

// DocsIndex is the route of the docs root.
func (r *Router) DocsIndex() string { return r.page(r.docsBase) }

// Doc returns the route of a document.
func (r *Router) Doc(d *corpus.Document) string {
	return r.page(path.Join(r.docsBase, d.Permalink))
}

// BlogIndex is the route of the blog listing.
func (r *Router) BlogIndex() string { return r.page(r.blogBase) }

// BlogPost returns the route of a blog post permalink ("2024/05/01/welcome").
func (r *Router) BlogPost(permalink string) string {
	return r.page(path.Join(r.blogBase, permalink))
}

// BlogFeed is the route of the RSS feed.
func (r *Router) BlogFeed() string { return Join(r.base, r.blogBase, "rss.xml") }

// NotFound is the route of the 404 page.
func (r *Router) NotFound() string { return Join(r.base, "404.html") }

// Sitemap is the route of sitemap.xml.
func (r *Router) Sitemap() string { return Join(r.base, "sitemap.xml") }

// Asset returns the route of a static or generated file.
func (r *Router) Asset(rel string) string { return Join(r.base, rel) }

// Internal resolves a site-relative target such as "/docs/GETTING_STARTED"
// or "/blog#latest" to a full route under the base path. Targets that
// already carry the base path are returned normalized.
func (r *Router) Internal(to string) string {
	p, suffix := to, ""
	if i := strings.IndexAny(to, "?#"); i >= 0 {
		p, suffix = to[:i], to[i:]
	}
	trimmedBase := strings.Trim(r.base, "/")
	rel := strings.Trim(p, "/")
	if trimmedBase != "" && (rel == trimmedBase || strings.HasPrefix(rel, trimmedBase+"/")) {
		rel = strings.TrimPrefix(strings.TrimPrefix(rel, trimmedBase), "/")
	}
	if path.Ext(rel) != "" {
		return Join(r.base, rel) + suffix
	}
	return r.page(rel) + suffix
}

// Absolute prefixes a route with the site origin.
func (r *Router) Absolute(route string) string {
	return r.origin + route
}

// OutputPath maps a route to a slash separated file path relative to the
// output directory. Routes outside the base path return ok=false.
func (r *Router) OutputPath(route string) (string, bool) {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	base := Join(r.base)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if route+"/" == base {
		route = base
	}
	if !strings.HasPrefix(route, base) {
		return "", false
	}
	rel := strings.TrimPrefix(route, base)
	switch {
	case rel == "":
		return "index.html", true
	case strings.HasSuffix(rel, "/"):
		return rel + "index.html", true
	case path.Ext(rel) != "":
		return rel, true
	case r.trailingSlash:
		return rel + "/index.html", true
	default:
		return rel + ".html", true
	}
}

// Key normalizes a route for lookups so "/a/b", "/a/b/" and "/a/b/index.html"
// compare equal.
func Key(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if path.Base(route) == "index.html" {
		route = strings.TrimSuffix(route, "index.html")
	}
	route = strings.TrimSuffix(route, ".html")
	route = strings.TrimSuffix(route, "/")
	if route == "" {
		return "/"
	}
	return route
}
