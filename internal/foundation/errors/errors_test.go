package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "studysite.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "studysite.yaml", file)
	})

	t.Run("Wrapped classified errors are found", func(t *testing.T) {
		inner := NavigationError("unknown document").WithContext("doc_id", "week1/security").Build()
		wrapped := fmt.Errorf("stage load_sidebars: %w", inner)

		require.True(t, IsClassified(wrapped))
		require.True(t, HasCategory(wrapped, CategoryNavigation))
		require.Equal(t, SeverityFatal, GetSeverity(wrapped))
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		require.False(t, IsClassified(err))
		require.Equal(t, CategoryInternal, GetCategory(err))
		require.Equal(t, SeverityError, GetSeverity(err))
	})
}

func TestErrorBuilder_WrapsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "write page").
		Warning().
		WithContext("path", "/tmp/out/index.html").
		Build()

	require.ErrorIs(t, err, cause)
	require.Equal(t, SeverityWarning, err.Severity())
	require.Contains(t, err.Error(), "[filesystem:warning] write page: permission denied")
}

func TestClassifiedError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := ContentError("duplicate document id").Build()
	derived := base.WithContext("doc_id", "intro")

	_, ok := base.Context().Get("doc_id")
	require.False(t, ok)
	id, ok := derived.Context().GetString("doc_id")
	require.True(t, ok)
	require.Equal(t, "intro", id)
	require.ErrorIs(t, derived, base)
}

func TestStatusCodeFor(t *testing.T) {
	require.Equal(t, http.StatusOK, StatusCodeFor(nil))
	require.Equal(t, http.StatusBadRequest, StatusCodeFor(ConfigError("x").Build()))
	require.Equal(t, http.StatusNotFound, StatusCodeFor(NewError(CategoryNotFound, "x").Build()))
	require.Equal(t, http.StatusUnprocessableEntity, StatusCodeFor(LinksError("x").Build()))
	require.Equal(t, http.StatusInternalServerError, StatusCodeFor(errors.New("x")))
}
