package render

import (
	"bytes"
	"encoding/xml"
	"sort"

	"git.home.luguber.info/inful/studysite/internal/routes"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders sitemap XML for the given page routes. URLs are absolute,
// de-duplicated and sorted so the output is stable.
func Sitemap(router *routes.Router, pageRoutes []string) ([]byte, error) {
	seen := map[string]bool{}
	var locs []string
	for _, r := range pageRoutes {
		loc := router.Absolute(r)
		if !seen[loc] {
			seen[loc] = true
			locs = append(locs, loc)
		}
	}
	sort.Strings(locs)

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, loc := range locs {
		set.URLs = append(set.URLs, sitemapURL{Loc: loc, ChangeFreq: "weekly", Priority: "0.5"})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
