// Package site runs the build pipeline: it loads configuration-driven
// content, checks every link, renders the static tree into a staging
// directory and swaps it into place only when the build succeeds.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/corpus"
	"git.home.luguber.info/inful/studysite/internal/gitinfo"
	"git.home.luguber.info/inful/studysite/internal/history"
	"git.home.luguber.info/inful/studysite/internal/linkcheck"
	"git.home.luguber.info/inful/studysite/internal/logfields"
	"git.home.luguber.info/inful/studysite/internal/metrics"
	"git.home.luguber.info/inful/studysite/internal/routes"
	"git.home.luguber.info/inful/studysite/internal/sidebar"
)

// Options tune a Builder.
type Options struct {
	// OutputDir overrides output.directory.
	OutputDir     string
	IncludeDrafts bool
	// LiveReloadScript is embedded into every page when set (preview builds).
	LiveReloadScript string
	// Now returns the build time. The copyright year is taken from it.
	Now func() time.Time
}

// Builder builds one site. It is safe to call Build repeatedly, but not
// concurrently.
type Builder struct {
	site     *config.Site
	opts     Options
	recorder metrics.Recorder
	history  history.Store
	logger   *slog.Logger
}

// NewBuilder returns a builder that records no metrics and no history.
func NewBuilder(site *config.Site, opts Options) *Builder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{site: site, opts: opts, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
}

func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// WithHistory records every finished build in s.
func (b *Builder) WithHistory(s history.Store) *Builder {
	b.history = s
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// OutputDir returns the absolute output directory.
func (b *Builder) OutputDir() string {
	if b.opts.OutputDir != "" {
		if filepath.IsAbs(b.opts.OutputDir) {
			return b.opts.OutputDir
		}
		abs, err := filepath.Abs(b.opts.OutputDir)
		if err == nil {
			return abs
		}
		return b.opts.OutputDir
	}
	return b.site.Resolve(b.site.Output.Directory)
}

func (b *Builder) newState() *BuildState {
	now := b.opts.Now()
	id := uuid.NewString()
	return &BuildState{
		Site:      b.site,
		Router:    routes.New(b.site),
		Options:   b.opts,
		BuildID:   id,
		Now:       now,
		OutputDir: b.OutputDir(),
		Report:    newBuildReport(id, now),
		Manifest:  &Manifest{Title: b.site.Title, BaseURL: b.site.BaseURL},
		recorder:  b.recorder,
		logger:    b.logger.With(logfields.BuildID(id)),
	}
}

// Build runs the full pipeline. The returned report is never nil. On
// failure the previous output directory is left untouched.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	bs := b.newState()
	report := bs.Report
	report.OutputDir = bs.OutputDir

	if info, err := gitinfo.Head(b.site.Root()); err == nil {
		report.Commit, report.Branch = info.Commit, info.Branch
	} else if !errors.Is(err, gitinfo.ErrNotRepository) {
		bs.logger.Debug("Could not read git metadata", logfields.Error(err))
	}

	bs.logger.Info("Build started", logfields.Path(bs.OutputDir))
	err := runStages(ctx, bs, buildStages())
	if err != nil {
		bs.abortStaging()
	}

	report.finish(time.Now())
	report.deriveOutcome()
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))

	if perr := report.Persist(filepath.Dir(bs.OutputDir)); perr != nil {
		bs.logger.Warn("Failed to persist build report", logfields.Error(perr))
	}
	b.recordHistory(ctx, report)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	bs.logger.Log(ctx, level, "Build finished",
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(report.RenderedPages),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, err
}

func (b *Builder) recordHistory(ctx context.Context, report *BuildReport) {
	if b.history == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		b.logger.Warn("Failed to encode build report for history", logfields.Error(err))
		return
	}
	// Recording must not be skipped when the build itself was canceled.
	ctx = context.WithoutCancel(ctx)
	err = b.history.Record(ctx, history.Build{
		ID:         report.BuildID,
		StartedAt:  report.Start,
		Duration:   report.Duration(),
		Outcome:    string(report.Outcome),
		Commit:     report.Commit,
		Pages:      report.RenderedPages,
		Errors:     len(report.Errors),
		Warnings:   len(report.Warnings),
		OutputDir:  report.OutputDir,
		ReportJSON: raw,
	})
	if err != nil {
		b.logger.Warn("Failed to record build history", logfields.Error(err))
	}
}

// Validate runs the consistency pass (content, navigation and links)
// without rendering anything.
func (b *Builder) Validate(ctx context.Context) (*linkcheck.Report, error) {
	bs := b.newState()
	err := runStages(ctx, bs, validationStages())
	if bs.Links == nil {
		bs.Links = &linkcheck.Report{}
	}
	return bs.Links, err
}

// Navigation loads the corpus and the resolved navigation tree. Sidebar
// references are not checked; use Validate for that.
func (b *Builder) Navigation(ctx context.Context) (*corpus.Corpus, *sidebar.Sidebars, error) {
	bs := b.newState()
	if err := runStages(ctx, bs, navigationStages()); err != nil {
		return nil, nil, err
	}
	return bs.Corpus, bs.Sidebars, nil
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	report := bs.Report
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(st.Name, err)
			report.StageErrorKinds[st.Name] = se.Kind
			report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			report.recordStageResult(st.Name, StageResultCanceled, bs.recorder)
			return se
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		report.StageDurations[st.Name] = dur
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		out := classifyStageResult(st.Name, err)
		if out.Error != nil {
			report.StageErrorKinds[st.Name] = out.Error.Kind
			report.AddIssue(out.IssueCode, st.Name, out.Severity, out.Error.Error(), out.Error)
		}
		report.recordStageResult(st.Name, out.Result, bs.recorder)
		bs.logger.Debug("Stage complete", logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000), logfields.Outcome(string(out.Result)))
		if out.Abort {
			return out.Error
		}
	}
	return nil
}

// fatal wraps cause with a classification sentinel into a fatal stage error.
func fatal(stage StageName, sentinel, cause error) *StageError {
	return newFatalStageError(stage, fmt.Errorf("%w: %w", sentinel, cause))
}
