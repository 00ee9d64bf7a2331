package site

import (
	"errors"

	"git.home.luguber.info/inful/studysite/internal/metrics"
)

// StageResult enumerates per-stage classification outcomes.
// Mirrors metrics.ResultLabel values to simplify emission.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageOutcome is the normalized result of a stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

func classifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = newFatalStageError(stage, err)
	}

	out := StageOutcome{Stage: stage, Error: se, IssueCode: classifyIssueCode(se)}
	switch se.Kind {
	case StageErrorWarning:
		out.Result, out.Severity = StageResultWarning, SeverityWarning
	case StageErrorCanceled:
		out.Result, out.Severity, out.Abort = StageResultCanceled, SeverityError, true
		out.IssueCode = IssueCanceled
	default:
		out.Result, out.Severity, out.Abort = StageResultFatal, SeverityError, true
	}
	return out
}

func classifyIssueCode(se *StageError) ReportIssueCode {
	switch {
	case errors.Is(se.Err, ErrLinks):
		if se.Kind == StageErrorWarning {
			return IssueLinkWarning
		}
		return IssueBrokenLinks
	case errors.Is(se.Err, ErrContent):
		return IssueContentInvalid
	case errors.Is(se.Err, ErrNavigation):
		return IssueNavigationInvalid
	case errors.Is(se.Err, ErrRender):
		return IssueRenderFailure
	case errors.Is(se.Err, ErrStatic):
		return IssueStaticCopyFailure
	case errors.Is(se.Err, ErrOutput):
		return IssueOutputFailure
	default:
		return IssueGenericStageError
	}
}

func metricsResult(res StageResult) metrics.ResultLabel {
	switch res {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultSuccess
	}
}
