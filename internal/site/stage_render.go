package site

import (
	"context"
	"html/template"
	"io/fs"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/blog"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/markdown"
	"git.home.luguber.info/inful/studysite/internal/render"
)

func renderFailed(stage StageName, err error, route string) *StageError {
	return fatal(stage, ErrRender, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render page").
		WithContext("route", route).Fatal().Build())
}

// stageRenderDocs renders one page per document.
func stageRenderDocs(ctx context.Context, bs *BuildState) error {
	r, err := bs.renderer()
	if err != nil {
		return renderFailed(StageRenderDocs, err, "")
	}
	defaultSidebar := ""
	if ids := bs.Sidebars.IDs(); len(ids) > 0 {
		defaultSidebar = ids[0]
	}

	for _, doc := range bs.Corpus.Documents() {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageRenderDocs, err)
		}
		route := bs.Router.Doc(doc)
		res, err := bs.Markdown.Render(doc.Body, bs.docLinkResolver(doc))
		if err != nil {
			return renderFailed(StageRenderDocs, err, route)
		}
		sidebarID, ok := bs.Sidebars.SidebarFor(doc.ID)
		if !ok {
			sidebarID = defaultSidebar
		}
		prev, next := r.Pager(sidebarID, doc.ID)
		view := render.DocView{
			Layout:      r.Layout(doc.Title, doc.Description, route, "docs"),
			Title:       doc.Title,
			ShowTitle:   !doc.HideTitle && !doc.TitleFromBody,
			HTML:        template.HTML(res.HTML), //nolint:gosec // rendered from authored Markdown
			TOC:         render.TOC(res.Headings),
			Sidebar:     r.Sidebar(sidebarID, doc.ID),
			Breadcrumbs: r.Breadcrumbs(sidebarID, doc.ID),
			Prev:        prev,
			Next:        next,
			EditURL:     render.EditURL(bs.Site.Docs.EditURL, bs.Site.Docs.Path, doc.RelPath),
			Tags:        doc.Tags,
		}
		if err := bs.writePage(ctx, route, r.Doc(view), true); err != nil {
			return renderFailed(StageRenderDocs, err, route)
		}
		bs.Manifest.Documents = append(bs.Manifest.Documents, ManifestDocument{
			ID: doc.ID, Source: doc.RelPath, Route: route, Fingerprint: doc.Fingerprint,
		})
		bs.logger.Debug("Rendered document", logfields.DocID(doc.ID), logfields.Route(route))
	}
	bs.recorder.AddPagesRendered("doc", bs.Corpus.Len())
	return nil
}

// docLinkResolver rewrites Markdown file links to document routes and
// site-relative links to routes under the base path.
func (bs *BuildState) docLinkResolver(doc *corpus.Document) markdown.LinkResolver {
	return markdown.LinkResolverFunc(func(dest string) (string, bool) {
		if markdown.IsMarkdownFile(dest) {
			target, ok := bs.Corpus.ResolveFile(doc, dest)
			if !ok {
				return "", false
			}
			_, suffix, _ := markdown.SplitFragment(dest)
			return bs.Router.Doc(target) + suffix, true
		}
		return bs.siteLink(dest), true
	})
}

func (bs *BuildState) siteLink(dest string) string {
	if strings.HasPrefix(dest, "/") {
		return bs.Router.Internal(dest)
	}
	return dest
}

// stageRenderBlog renders the post list, every post and the feed.
func stageRenderBlog(ctx context.Context, bs *BuildState) error {
	if !bs.Site.Blog.Enabled {
		return nil
	}
	r, err := bs.renderer()
	if err != nil {
		return renderFailed(StageRenderBlog, err, "")
	}
	resolver := markdown.LinkResolverFunc(func(dest string) (string, bool) { return bs.siteLink(dest), true })

	views := make([]render.PostView, len(bs.Posts))
	for i, p := range bs.Posts {
		v, err := bs.postView(p, resolver)
		if err != nil {
			return renderFailed(StageRenderBlog, err, bs.Router.BlogPost(p.Permalink))
		}
		views[i] = v
	}

	index := bs.Router.BlogIndex()
	list := render.BlogListView{
		Layout:          r.Layout("Blog", "", index, "blog"),
		Title:           "Blog",
		Posts:           views,
		ShowReadingTime: bs.Site.Blog.ShowReadingTime,
	}
	if err := bs.writePage(ctx, index, r.BlogList(list), true); err != nil {
		return renderFailed(StageRenderBlog, err, index)
	}

	for i, v := range views {
		p := bs.Posts[i]
		page := render.BlogPostView{
			Layout:          r.Layout(p.Title, p.Description, v.Href, "blog"),
			Post:            v,
			ShowReadingTime: bs.Site.Blog.ShowReadingTime,
		}
		// Posts are sorted newest first.
		if i > 0 {
			page.Newer = &render.PageLink{Label: views[i-1].Title, Href: views[i-1].Href}
		}
		if i+1 < len(views) {
			page.Older = &render.PageLink{Label: views[i+1].Title, Href: views[i+1].Href}
		}
		if err := bs.writePage(ctx, v.Href, r.BlogPost(page), true); err != nil {
			return renderFailed(StageRenderBlog, err, v.Href)
		}
		bs.Manifest.Posts = append(bs.Manifest.Posts, ManifestPost{Slug: p.Slug, Route: v.Href})
	}

	if bs.feedEnabled() {
		feed, err := blog.Feed(bs.Site, bs.Router, bs.Posts)
		if err != nil {
			return renderFailed(StageRenderBlog, err, bs.Router.BlogFeed())
		}
		rel, _ := bs.Router.OutputPath(bs.Router.BlogFeed())
		if err := bs.writeFile(rel, feed); err != nil {
			return fatal(StageRenderBlog, ErrOutput, err)
		}
		bs.Manifest.addRoute(bs.Router.BlogFeed())
	}
	bs.recorder.AddPagesRendered("blog", len(views)+1)
	return nil
}

func (bs *BuildState) postView(p *blog.Post, resolver markdown.LinkResolver) (render.PostView, error) {
	full, err := bs.Markdown.Render(p.Body, resolver)
	if err != nil {
		return render.PostView{}, err
	}
	summary := full
	if p.Truncated {
		if summary, err = bs.Markdown.Render(p.Summary, resolver); err != nil {
			return render.PostView{}, err
		}
	}
	return render.PostView{
		Title:       p.Title,
		Href:        bs.Router.BlogPost(p.Permalink),
		DateISO:     p.Date.Format("2006-01-02"),
		DateText:    p.Date.Format("January 2, 2006"),
		Authors:     p.Authors,
		Tags:        p.Tags,
		ReadingTime: p.ReadingTime,
		Summary:     template.HTML(summary.HTML), //nolint:gosec // rendered from authored Markdown
		HTML:        template.HTML(full.HTML),    //nolint:gosec // rendered from authored Markdown
		Truncated:   p.Truncated,
		EditURL:     render.EditURL(bs.Site.Blog.EditURL, bs.Site.Blog.Path, p.RelPath),
	}, nil
}

// stageRenderPages renders the landing page, the 404 page, the stylesheet
// and the sitemap.
func stageRenderPages(ctx context.Context, bs *BuildState) error {
	r, err := bs.renderer()
	if err != nil {
		return renderFailed(StageRenderPages, err, "")
	}

	home := bs.Router.Home()
	landingView := render.LandingView{
		Layout: r.Layout(bs.Landing.Title, bs.Landing.Description, home, "home"),
		Page:   bs.Landing,
	}
	if err := bs.writePage(ctx, home, r.Landing(landingView), true); err != nil {
		return renderFailed(StageRenderPages, err, home)
	}

	notFound := bs.Router.NotFound()
	nf := render.NotFoundView{Layout: r.Layout("Page Not Found", "", notFound, "notfound")}
	if err := bs.writePage(ctx, notFound, r.NotFound(nf), false); err != nil {
		return renderFailed(StageRenderPages, err, notFound)
	}

	css, err := fs.ReadFile(render.Assets(), render.StylesheetPath)
	if err != nil {
		return renderFailed(StageRenderPages, err, render.StylesheetPath)
	}
	if err := bs.writeFile(render.StylesheetPath, css); err != nil {
		return fatal(StageRenderPages, ErrOutput, err)
	}
	bs.Manifest.addRoute(bs.Router.Asset(render.StylesheetPath))

	sitemap, err := render.Sitemap(bs.Router, bs.Pages)
	if err != nil {
		return renderFailed(StageRenderPages, err, bs.Router.Sitemap())
	}
	rel, _ := bs.Router.OutputPath(bs.Router.Sitemap())
	if err := bs.writeFile(rel, sitemap); err != nil {
		return fatal(StageRenderPages, ErrOutput, err)
	}
	bs.Manifest.addRoute(bs.Router.Sitemap())
	bs.recorder.AddPagesRendered("page", 2)
	return nil
}
