// Package history records completed builds in a SQLite database so that
// `studysite history` can list recent outcomes.
package history

import (
	"context"
	"time"
)

// Build is one recorded build.
type Build struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    string // success|warning|failed|canceled
	Commit     string
	Pages      int
	Errors     int
	Warnings   int
	OutputDir  string
	ReportJSON []byte
}

// Store persists build records.
type Store interface {
	Record(ctx context.Context, b Build) error
	// List returns the most recent builds first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Build, error)
	Get(ctx context.Context, id string) (Build, error)
	Close() error
}
