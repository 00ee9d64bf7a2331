package site

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/studysite/internal/logfields"
)

// stageCopyStatic copies static_dir verbatim and publishes theme.custom_css.
func stageCopyStatic(_ context.Context, bs *BuildState) error {
	dir := bs.Site.Resolve(bs.Site.StaticDir)
	files, err := listStatic(dir)
	if err != nil {
		return newFatalStageError(StageCopyStatic, err)
	}
	for _, rel := range files {
		if err := copyFile(filepath.Join(dir, filepath.FromSlash(rel)), filepath.Join(bs.StageDir, filepath.FromSlash(rel))); err != nil {
			return fatal(StageCopyStatic, ErrStatic, err)
		}
		bs.Manifest.addRoute(bs.Router.Asset(rel))
	}

	if css := bs.Site.Theme.CustomCSS; css != "" {
		src := bs.Site.Resolve(css)
		if err := copyFile(src, filepath.Join(bs.StageDir, filepath.FromSlash(customCSSPath))); err != nil {
			return fatal(StageCopyStatic, ErrStatic, fmt.Errorf("custom css: %w", err))
		}
		bs.Manifest.addRoute(bs.customCSSRoute())
	}
	bs.logger.Debug("Copied static files", logfields.Count(len(files)), logfields.Path(dir))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec // published site directory
		return err
	}
	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // published site content
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
