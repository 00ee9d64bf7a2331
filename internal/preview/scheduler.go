package preview

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/linkverify"
	"git.home.luguber.info/inful/studysite/internal/logfields"
)

// verifyScheduler re-checks the external links of the served site on a
// fixed interval. Running checks stop when ctx is done.
type verifyScheduler struct {
	ctx       context.Context
	scheduler gocron.Scheduler
	verifier  *linkverify.Verifier
	outputDir string
}

func newVerifyScheduler(ctx context.Context, v *linkverify.Verifier, outputDir string, interval time.Duration) (*verifyScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	vs := &verifyScheduler{ctx: ctx, scheduler: s, verifier: v, outputDir: outputDir}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(vs.verify),
		gocron.WithName("verify-external-links"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to schedule link verification").
			WithContext("interval", interval.String()).Build()
	}
	return vs, nil
}

func (vs *verifyScheduler) Start() {
	slog.Info("Starting scheduler")
	vs.scheduler.Start()
}

func (vs *verifyScheduler) Stop() {
	slog.Info("Stopping scheduler")
	if err := vs.scheduler.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown error", logfields.Error(err))
	}
}

func (vs *verifyScheduler) verify() {
	ctx, cancel := context.WithTimeout(vs.ctx, 10*time.Minute)
	defer cancel()
	res, err := vs.verifier.Verify(ctx, vs.outputDir)
	if err != nil {
		slog.Warn("Scheduled link verification failed", logfields.Error(err))
		return
	}
	slog.Info("Scheduled link verification finished",
		"checked", res.Checked, "cached", res.Cached, "broken", len(res.Broken))
}
