package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReportingSeverity is the policy applied to a class of problems found while
// building (onBrokenLinks, onBrokenMarkdownLinks).
type ReportingSeverity string

const (
	SeverityIgnore ReportingSeverity = "ignore"
	SeverityLog    ReportingSeverity = "log"
	SeverityWarn   ReportingSeverity = "warn"
	SeverityThrow  ReportingSeverity = "throw"
)

// ParseReportingSeverity normalizes raw and rejects unknown values.
func ParseReportingSeverity(raw string) (ReportingSeverity, error) {
	switch s := ReportingSeverity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityIgnore, SeverityLog, SeverityWarn, SeverityThrow:
		return s, nil
	default:
		return "", fmt.Errorf("invalid reporting severity %q (expected ignore|log|warn|throw)", raw)
	}
}

func (s *ReportingSeverity) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseReportingSeverity(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

// Fails reports whether a problem under this policy aborts the build.
func (s ReportingSeverity) Fails() bool { return s == SeverityThrow }

// Reported reports whether a problem under this policy is surfaced at all.
func (s ReportingSeverity) Reported() bool { return s != SeverityIgnore && s != "" }
