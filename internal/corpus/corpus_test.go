package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestDiscover_DerivesIDsTitlesAndPermalinks(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "intro.md", "---\ntitle: Introduction\nsidebar_position: 1\n---\nWelcome.\n")
	writeDoc(t, root, "week1/README.md", "# Week 1: Admin & Flow\n\nOverview.\n")
	writeDoc(t, root, "week1/security.md", "---\nsidebar_label: Security\n---\n# Security Model\n")
	writeDoc(t, root, "GETTING_STARTED.md", "No heading here.\n")
	writeDoc(t, root, "week1/_partial.md", "# Partial\n")
	writeDoc(t, root, ".hidden/secret.md", "# Hidden\n")
	writeDoc(t, root, "week1/notes.txt", "not markdown")

	c, err := Discover(root, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"GETTING_STARTED", "intro", "week1/README", "week1/security"}, c.IDs())
	require.Equal(t, 4, c.Len())

	readme, ok := c.Get("week1/README")
	require.True(t, ok)
	require.True(t, readme.IsIndex)
	require.Equal(t, "week1", readme.Permalink)
	require.Equal(t, "Week 1: Admin & Flow", readme.Title)
	require.True(t, readme.TitleFromBody)
	require.Equal(t, "week1", readme.Dir())

	sec, _ := c.Get("week1/security")
	require.Equal(t, "Security", sec.Label())
	require.Equal(t, "Security Model", sec.Title)
	require.NotEmpty(t, sec.Fingerprint)

	gs, _ := c.Get("GETTING_STARTED")
	require.Equal(t, "Getting Started", gs.Title)

	intro, _ := c.Get("intro")
	pos, ok := intro.Position()
	require.True(t, ok)
	require.InDelta(t, 1.0, pos, 0.0001)
	require.Equal(t, "Introduction", intro.Frontmatter["title"])
}

func TestDiscover_DraftsAndFrontMatterIDs(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "week2/apex.md", "---\nid: apex-basics\n---\nbody\n")
	writeDoc(t, root, "week2/wip.md", "---\ndraft: true\n---\nbody\n")

	c, err := Discover(root, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"week2/apex-basics"}, c.IDs())

	c, err = Discover(root, Options{IncludeDrafts: true})
	require.NoError(t, err)
	require.True(t, c.Has("week2/wip"))
}

func TestDiscover_FingerprintIgnoresFrontMatterLayout(t *testing.T) {
	discover := func(content string) string {
		root := t.TempDir()
		writeDoc(t, root, "week1/flow.md", content)
		c, err := Discover(root, Options{})
		require.NoError(t, err)
		doc, ok := c.Get("week1/flow")
		require.True(t, ok)
		return doc.Fingerprint
	}

	a := discover("---\ntitle: Flow\ntags: [flow, automation]\n---\nBody.\n")
	b := discover("---\r\ntags:\r\n  - flow\r\n  - automation\r\ntitle: \"Flow\"\r\n---\r\nBody.\n")
	require.Equal(t, a, b)
	require.NotEqual(t, a, discover("---\ntitle: Flow Builder\ntags: [flow, automation]\n---\nBody.\n"))
	require.NotEqual(t, a, discover("---\ntitle: Flow\ntags: [flow, automation]\n---\nOther body.\n"))
}

func TestDiscover_DuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "body\n")
	writeDoc(t, root, "b.md", "---\nid: a\n---\nbody\n")

	_, err := Discover(root, Options{})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestDiscover_RouteCollision(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "week3/README.md", "# Week 3\n")
	writeDoc(t, root, "week3/index.md", "# Also week 3\n")

	_, err := Discover(root, Options{})
	require.ErrorIs(t, err, ErrPathCollision)
}

func TestDiscover_SlugOverridesPermalink(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "QUICK_REFERENCE.md", "---\nslug: /quick-reference\n---\nbody\n")
	writeDoc(t, root, "week2/soql.md", "---\nslug: soql-dml\n---\nbody\n")

	c, err := Discover(root, Options{})
	require.NoError(t, err)
	qr, _ := c.Get("QUICK_REFERENCE")
	require.Equal(t, "quick-reference", qr.Permalink)
	soql, _ := c.Get("week2/soql")
	require.Equal(t, "week2/soql-dml", soql.Permalink)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{})
	require.ErrorIs(t, err, ErrDocsPathNotFound)

	root := t.TempDir()
	writeDoc(t, root, "broken.md", "---\ntitle: never closed\n")
	_, err = Discover(root, Options{})
	require.ErrorIs(t, err, ErrInvalidFrontMatter)
}

func TestResolveFile(t *testing.T) {
	c, err := New(
		&Document{ID: "week1/README"},
		&Document{ID: "week1/flow"},
		&Document{ID: "week2/triggers"},
	)
	require.NoError(t, err)
	from, _ := c.Get("week1/flow")

	d, ok := c.ResolveFile(from, "./README.md#overview")
	require.True(t, ok)
	require.Equal(t, "week1/README", d.ID)

	d, ok = c.ResolveFile(from, "../week2/triggers.md")
	require.True(t, ok)
	require.Equal(t, "week2/triggers", d.ID)

	_, ok = c.ResolveFile(from, "../../outside.md")
	require.False(t, ok)

	readme, _ := c.Get("week1/README")
	require.Equal(t, "week1", readme.Permalink)
}

func TestHumanize(t *testing.T) {
	require.Equal(t, "Getting Started", Humanize("GETTING_STARTED"))
	require.Equal(t, "Soql Dml", Humanize("soql-dml"))
}
