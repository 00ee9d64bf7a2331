package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	body := []byte("See [flow](./flow.md) and ![logo](/img/logo.svg) or <https://trailhead.salesforce.com>.\n")

	links := ExtractLinks(body)
	require.Equal(t, []Link{
		{Kind: LinkKindAuto, Destination: "https://trailhead.salesforce.com"},
		{Kind: LinkKindInline, Destination: "./flow.md"},
		{Kind: LinkKindImage, Destination: "/img/logo.svg"},
	}, sortByKindOrder(links))
}

func TestExtractLinks_ReferenceLinksCountOnce(t *testing.T) {
	body := []byte("See [the guide][g].\n\n[g]: missing.md\n[unused]: ../week2/apex-basics.md\n")

	require.Equal(t, []Link{
		{Kind: LinkKindInline, Destination: "missing.md"},
	}, ExtractLinks(body))
}

// sortByKindOrder keeps test expectations readable regardless of walk order.
func sortByKindOrder(in []Link) []Link {
	order := map[LinkKind]int{LinkKindAuto: 0, LinkKindInline: 1, LinkKindImage: 2}
	out := append([]Link(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && order[out[j].Kind] < order[out[j-1].Kind]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestRender_RewritesLocalLinksAndCollectsHeadings(t *testing.T) {
	body := []byte("# Security Model\n\n## Profiles and Permission Sets\n\nRead [flows](./flow.md#record-triggered) and [apex](https://developer.salesforce.com).\n")

	resolver := LinkResolverFunc(func(dest string) (string, bool) {
		if dest == "./flow.md#record-triggered" {
			return "/learn-salesforce/docs/week1/flow/#record-triggered", true
		}
		return "", false
	})

	res, err := NewRenderer().Render(body, resolver)
	require.NoError(t, err)
	require.Equal(t, "Security Model", res.Title)
	require.Empty(t, res.Unresolved)
	require.Len(t, res.Headings, 2)
	require.Equal(t, Heading{Level: 2, ID: "profiles-and-permission-sets", Text: "Profiles and Permission Sets"}, res.Headings[1])

	html := string(res.HTML)
	require.Contains(t, html, `href="/learn-salesforce/docs/week1/flow/#record-triggered"`)
	require.Contains(t, html, `href="https://developer.salesforce.com"`)
}

func TestRender_ReportsUnresolved(t *testing.T) {
	res, err := NewRenderer().Render([]byte("[missing](./nope.md)\n"), LinkResolverFunc(func(string) (string, bool) { return "", false }))
	require.NoError(t, err)
	require.Equal(t, []string{"./nope.md"}, res.Unresolved)
	require.Contains(t, string(res.HTML), `href="./nope.md"`)
}

func TestRender_FencedCodeKeepsLanguageClass(t *testing.T) {
	res, err := NewRenderer().Render([]byte("```java\ntrigger AccountTrigger on Account (before insert) {}\n```\n"), nil)
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), `class="language-java"`)
}

func TestLinkClassification(t *testing.T) {
	require.True(t, IsLocal("./flow.md"))
	require.True(t, IsLocal("/docs/intro"))
	require.False(t, IsLocal("#anchor"))
	require.False(t, IsLocal("https://example.com"))
	require.False(t, IsLocal("mailto:someone@example.com"))
	require.False(t, IsLocal("//cdn.example.com/x.js"))

	require.True(t, IsMarkdownFile("../week2/README.md#top"))
	require.False(t, IsMarkdownFile("/img/logo.svg"))

	p, suffix, ok := SplitFragment("flow.md?x=1#a")
	require.True(t, ok)
	require.Equal(t, "flow.md", p)
	require.Equal(t, "?x=1#a", suffix)
}

func TestFirstHeadingAndWordCount(t *testing.T) {
	title, ok := FirstHeading([]byte("intro text\n\n# Week 1: Admin & Flow\n"))
	require.True(t, ok)
	require.Equal(t, "Week 1: Admin & Flow", title)

	_, ok = FirstHeading([]byte("## only h2\n"))
	require.False(t, ok)

	require.Equal(t, 400, WordCount([]byte(strings.Repeat("word ", 400))))
}
