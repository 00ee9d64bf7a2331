package site

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify stage failures. They are always wrapped
// with contextual information at the call site.
var (
	ErrOutput     = errors.New("studysite: output error")
	ErrContent    = errors.New("studysite: content error")
	ErrNavigation = errors.New("studysite: navigation error")
	ErrLinks      = errors.New("studysite: link error")
	ErrRender     = errors.New("studysite: render error")
	ErrStatic     = errors.New("studysite: static asset error")
)

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}
