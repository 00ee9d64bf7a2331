package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"broken links", LinksError("broken links").Build(), 3},
		{"navigation", NavigationError("unknown doc").Build(), 3},
		{"config", ConfigError("bad config").Build(), 7},
		{"network", NetworkError("timeout").Build(), 8},
		{"render", RenderError("template").Build(), 11},
		{"wrapped", fmt.Errorf("build: %w", LinksError("x").Build()), 3},
		{"unclassified", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	err := LinksError("broken link").
		WithContext("target", "week1/security").
		WithContext("source", "sidebar").
		Build()

	out := adapter.FormatError(err)
	require.Equal(t, "Error: broken link\n  source: sidebar\n  target: week1/security", out)
	require.Equal(t, "Error: boom", adapter.FormatError(errors.New("boom")))
}

func TestCLIErrorAdapter_HandleErrorWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.Default())
	adapter.out = &buf

	code := adapter.HandleError(ConfigError("missing title").Build())
	require.Equal(t, 7, code)
	require.Contains(t, buf.String(), "missing title")
}
