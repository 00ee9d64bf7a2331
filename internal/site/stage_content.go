package site

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/studysite/internal/blog"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

// stageLoadContent discovers documents and blog posts.
func stageLoadContent(_ context.Context, bs *BuildState) error {
	docsDir := bs.Site.Resolve(bs.Site.Docs.Path)
	c, err := corpus.Discover(docsDir, corpus.Options{IncludeDrafts: bs.Options.IncludeDrafts})
	if err != nil {
		return fatal(StageLoadContent, ErrContent, ferrors.WrapError(err, ferrors.CategoryContent, "failed to load documents").
			WithContext("dir", docsDir).Fatal().Build())
	}
	bs.Corpus = c
	bs.Report.Documents = c.Len()

	if bs.Site.Blog.Enabled {
		blogDir := bs.Site.Resolve(bs.Site.Blog.Path)
		posts, err := blog.Load(blogDir, blog.Options{IncludeDrafts: bs.Options.IncludeDrafts})
		if err != nil {
			return fatal(StageLoadContent, ErrContent, ferrors.WrapError(err, ferrors.CategoryContent, "failed to load blog posts").
				WithContext("dir", blogDir).Fatal().Build())
		}
		bs.Posts = posts
		bs.Report.Posts = len(posts)
	}
	bs.logger.Info("Content loaded", logfields.Count(c.Len()), logfields.Path(docsDir))
	return nil
}

// stageLoadSidebars reads the navigation tree. A missing sidebar file means
// one sidebar is generated from the directory layout.
func stageLoadSidebars(_ context.Context, bs *BuildState) error {
	p := bs.Site.Resolve(bs.Site.Docs.SidebarPath)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		bs.Sidebars = sidebar.Autogenerate(bs.Corpus)
		bs.logger.Info("No sidebar file, generated navigation from directory layout", logfields.Path(p))
	} else {
		s, err := sidebar.Load(p)
		if err != nil {
			return fatal(StageLoadSidebars, ErrNavigation, ferrors.WrapError(err, ferrors.CategoryNavigation, "failed to load sidebars").
				WithContext("file", p).Fatal().Build())
		}
		bs.Sidebars = s
	}
	bs.Report.Sidebars = bs.Sidebars.Len()
	return nil
}
