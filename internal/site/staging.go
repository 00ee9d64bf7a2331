package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/studysite/internal/logfields"
)

// stagePrepareOutput creates a sibling staging directory for this build.
func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	parent := filepath.Dir(bs.OutputDir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fatal(StagePrepareOutput, ErrOutput, err)
	}
	dir, err := os.MkdirTemp(parent, filepath.Base(bs.OutputDir)+".staging-")
	if err != nil {
		return fatal(StagePrepareOutput, ErrOutput, err)
	}
	// MkdirTemp creates 0700; the published tree must be traversable.
	if err := os.Chmod(dir, 0o755); err != nil { //nolint:gosec // published site directory
		return fatal(StagePrepareOutput, ErrOutput, err)
	}
	bs.StageDir = dir
	bs.logger.Debug("Initialized staging directory", logfields.Path(dir))
	return nil
}

// stageFinalize writes the manifest and promotes the staging directory:
//  1. Move the existing output (if any) to <output>.prev.
//  2. Rename staging to output.
//  3. Drop the backup when output.clean is set.
func stageFinalize(_ context.Context, bs *BuildState) error {
	data, err := bs.Manifest.Marshal()
	if err != nil {
		return fatal(StageFinalize, ErrOutput, err)
	}
	if err := bs.writeFile(ManifestFile, data); err != nil {
		return fatal(StageFinalize, ErrOutput, err)
	}

	prev := bs.OutputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fatal(StageFinalize, ErrOutput, fmt.Errorf("remove previous backup: %w", err))
	}
	hadOutput := false
	if _, err := os.Stat(bs.OutputDir); err == nil {
		if err := os.Rename(bs.OutputDir, prev); err != nil {
			return fatal(StageFinalize, ErrOutput, fmt.Errorf("backup existing output: %w", err))
		}
		hadOutput = true
	}
	if err := os.Rename(bs.StageDir, bs.OutputDir); err != nil {
		if hadOutput {
			_ = os.Rename(prev, bs.OutputDir)
		}
		return fatal(StageFinalize, ErrOutput, fmt.Errorf("promote staging directory: %w", err))
	}
	bs.StageDir = ""
	if hadOutput && bs.Site.Output.Clean {
		if err := os.RemoveAll(prev); err != nil {
			bs.logger.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	return nil
}

// abortStaging removes the staging directory after a failed build.
func (bs *BuildState) abortStaging() {
	if bs.StageDir == "" {
		return
	}
	dir := bs.StageDir
	bs.StageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		bs.logger.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
		return
	}
	bs.logger.Debug("Removed staging directory after abort", logfields.Path(dir))
}
