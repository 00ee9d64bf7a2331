package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/studysite/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportFile is the name of the JSON build report written next to the output directory.
const ReportFile = "build-report.json"

// BuildReport captures what a build did and how it ended.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Commit          string
	Branch          string
	OutputDir       string
	Start           time.Time
	End             time.Time
	Documents       int
	Sidebars        int
	Posts           int
	RenderedPages   int
	LinksChecked    int
	Errors          []error // fatal errors causing build abortion
	Warnings        []error
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome
	// Issues captures machine-parsable issue entries (warnings and errors).
	Issues []ReportIssue
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are a stable contract and should only be appended.
type ReportIssueCode string

const (
	IssueBrokenLinks       ReportIssueCode = "BROKEN_LINKS"
	IssueLinkWarning       ReportIssueCode = "LINK_WARNING"
	IssueContentInvalid    ReportIssueCode = "CONTENT_INVALID"
	IssueNavigationInvalid ReportIssueCode = "NAVIGATION_INVALID"
	IssueRenderFailure     ReportIssueCode = "RENDER_FAILURE"
	IssueStaticCopyFailure ReportIssueCode = "STATIC_COPY_FAILURE"
	IssueOutputFailure     ReportIssueCode = "OUTPUT_FAILURE"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
	SeverityInfo    IssueSeverity = "info"
)

// ReportIssue is a structured entry describing a discrete problem.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
	Target   string          `json:"target,omitempty"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

func newBuildReport(buildID string, start time.Time) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           start,
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// AddIssue appends a structured issue and mirrors it into Errors/Warnings
// when err is non-nil.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// recordStageResult updates counters and emits metrics.
func (r *BuildReport) recordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
	case StageResultWarning:
		sc.Warning++
	case StageResultFatal:
		sc.Fatal++
	case StageResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc
	if recorder != nil {
		recorder.IncStageResult(string(stage), metricsResult(res))
	}
}

func (r *BuildReport) finish(end time.Time) { r.End = end }

// Duration is the wall time of the build.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s docs=%d posts=%d pages=%d links=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Documents, r.Posts, r.RenderedPages, r.LinksChecked,
		r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// deriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// reportJSON is the serialized form of BuildReport.
type reportJSON struct {
	SchemaVersion    int                          `json:"schema_version"`
	BuildID          string                       `json:"build_id"`
	Commit           string                       `json:"commit,omitempty"`
	Branch           string                       `json:"branch,omitempty"`
	OutputDir        string                       `json:"output_dir"`
	Start            time.Time                    `json:"start"`
	End              time.Time                    `json:"end"`
	DurationMS       int64                        `json:"duration_ms"`
	Outcome          BuildOutcome                 `json:"outcome"`
	Documents        int                          `json:"documents"`
	Sidebars         int                          `json:"sidebars"`
	Posts            int                          `json:"posts"`
	RenderedPages    int                          `json:"rendered_pages"`
	LinksChecked     int                          `json:"links_checked"`
	Errors           []string                     `json:"errors"`
	Warnings         []string                     `json:"warnings"`
	StageDurationsMS map[StageName]int64          `json:"stage_durations_ms"`
	StageErrorKinds  map[StageName]StageErrorKind `json:"stage_error_kinds"`
	StageCounts      map[StageName]StageCount     `json:"stage_counts"`
	Issues           []ReportIssue                `json:"issues"`
}

// MarshalJSON renders errors as strings and durations as milliseconds.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Commit:           r.Commit,
		Branch:           r.Branch,
		OutputDir:        r.OutputDir,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       r.Duration().Milliseconds(),
		Outcome:          r.Outcome,
		Documents:        r.Documents,
		Sidebars:         r.Sidebars,
		Posts:            r.Posts,
		RenderedPages:    r.RenderedPages,
		LinksChecked:     r.LinksChecked,
		Errors:           make([]string, 0, len(r.Errors)),
		Warnings:         make([]string, 0, len(r.Warnings)),
		StageDurationsMS: make(map[StageName]int64, len(r.StageDurations)),
		StageErrorKinds:  r.StageErrorKinds,
		StageCounts:      r.StageCounts,
		Issues:           r.Issues,
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	for k, d := range r.StageDurations {
		out.StageDurationsMS[k] = d.Milliseconds()
	}
	if out.Issues == nil {
		out.Issues = []ReportIssue{}
	}
	return json.Marshal(out)
}

// Persist writes build-report.json atomically into dir.
func (r *BuildReport) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(dir, ReportFile)
	tmp := jsonPath + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}
