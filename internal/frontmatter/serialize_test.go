package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{"sidebar_position": 1, "title": "Intro", "description": "Start here"}

	out1, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "description: Start here\nsidebar_position: 1\ntitle: Intro\n", string(out1))
}

func TestSerializeYAML_NestedAndCRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"outer": map[string]any{"b": 2, "a": 1}}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "outer:\r\n  a: 1\r\n  b: 2\r\n", string(out))
}
