package linkcheck

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/logfields"
)

// Severity indicates the importance level of an issue.
type Severity int

const (
	// SeverityInfo is recorded under the "log" policy.
	SeverityInfo Severity = iota
	// SeverityWarning is recorded under the "warn" policy.
	SeverityWarning
	// SeverityError aborts the build.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(strings.ToLower(s.String())), nil }

// Rule identifies which check produced an issue.
type Rule string

const (
	RuleSidebarRef   Rule = "sidebar-ref"
	RuleNavbarLink   Rule = "navbar-link"
	RuleFooterLink   Rule = "footer-link"
	RuleLandingLink  Rule = "landing-link"
	RuleMarkdownLink Rule = "markdown-link"
	RuleInternalLink Rule = "internal-link"
	RuleExternalURL  Rule = "external-url"
	RuleHTMLLink     Rule = "html-link"
)

// Issue is a single consistency problem.
type Issue struct {
	Severity Severity `json:"severity"`
	Rule     Rule     `json:"rule"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Message  string   `json:"message"`
}

// Report collects issues from the pre-render and post-render passes.
type Report struct {
	Issues  []Issue `json:"issues"`
	Checked int     `json:"checked"`
}

// BrokenMessage is the canonical diagnostic for an unresolved target.
func BrokenMessage(target, source string) string {
	return fmt.Sprintf("broken link: %q referenced from %s", target, source)
}

// Broken records an unresolved target under policy. Nothing is recorded for
// the ignore policy.
func (r *Report) Broken(policy config.ReportingSeverity, rule Rule, source, target string) {
	r.Add(policy, Issue{Rule: rule, Source: source, Target: target, Message: BrokenMessage(target, source)})
}

// Add records issue with the severity implied by policy.
func (r *Report) Add(policy config.ReportingSeverity, issue Issue) {
	switch policy {
	case config.SeverityThrow:
		issue.Severity = SeverityError
	case config.SeverityWarn:
		issue.Severity = SeverityWarning
	case config.SeverityLog:
		issue.Severity = SeverityInfo
	default:
		return
	}
	r.Issues = append(r.Issues, issue)
}

// Fatal records an issue that aborts the build regardless of policy.
func (r *Report) Fatal(rule Rule, source, target string) {
	r.Add(config.SeverityThrow, Issue{Rule: rule, Source: source, Target: target, Message: BrokenMessage(target, source)})
}

// Merge appends the issues of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Checked += other.Checked
}

// HasErrors returns true if any error-level issues exist.
func (r *Report) HasErrors() bool { return r.count(SeverityError) > 0 }

// HasWarnings returns true if any warning-level issues exist.
func (r *Report) HasWarnings() bool { return r.count(SeverityWarning) > 0 }

func (r *Report) ErrorCount() int   { return r.count(SeverityError) }
func (r *Report) WarningCount() int { return r.count(SeverityWarning) }
func (r *Report) InfoCount() int    { return r.count(SeverityInfo) }

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Sort orders issues by severity (errors first), rule, source and target.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		a, b := r.Issues[i], r.Issues[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
}

// Log emits non-fatal issues through slog.
func (r *Report) Log(logger *slog.Logger) {
	for _, issue := range r.Issues {
		attrs := []any{slog.String("rule", string(issue.Rule)), logfields.Source(issue.Source), logfields.Target(issue.Target)}
		switch issue.Severity {
		case SeverityWarning:
			logger.Warn(issue.Message, attrs...)
		case SeverityInfo:
			logger.Info(issue.Message, attrs...)
		}
	}
}

// Err returns a *BrokenLinksError when the report contains error-level issues.
func (r *Report) Err() error {
	var fatal []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			fatal = append(fatal, issue)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &BrokenLinksError{Issues: fatal}
}

// BrokenLinksError lists every fatal issue of a report.
type BrokenLinksError struct {
	Issues []Issue
}

func (e *BrokenLinksError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].Message
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d broken links:", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Targets returns the broken targets in report order.
func (e *BrokenLinksError) Targets() []string {
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issue.Target)
	}
	return out
}
