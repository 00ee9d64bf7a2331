package history

import (
	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
)

// Sentinel errors for history store operations.
var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.NewError(errors.CategoryHistory, "could not open build history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.NewError(errors.CategoryHistory, "failed to initialize build history schema").Build()

	ErrRecordFailed = errors.NewError(errors.CategoryHistory, "failed to record build").Build()
	ErrQueryFailed  = errors.NewError(errors.CategoryHistory, "failed to query build history").Build()

	// ErrNotFound indicates no build with the requested id was recorded.
	ErrNotFound = errors.NewError(errors.CategoryNotFound, "build not found").Build()
)
