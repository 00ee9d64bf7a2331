package blog

import (
	"bytes"
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/studysite/internal/config"
	"git.home.luguber.info/inful/studysite/internal/routes"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

// Feed renders an RSS 2.0 document for posts. lastBuildDate is the date of
// the newest post, so identical inputs give identical feeds.
func Feed(site *config.Site, router *routes.Router, posts []*Post) ([]byte, error) {
	items := make([]rssItem, 0, len(posts))
	var newest time.Time
	for _, p := range posts {
		link := router.Absolute(router.BlogPost(p.Permalink))
		desc := p.Description
		if desc == "" {
			desc = string(bytes.TrimSpace(p.Summary))
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: desc,
			PubDate:     p.Date.UTC().Format(time.RFC1123Z),
			GUID:        link,
			Categories:  p.Tags,
		})
		if p.Date.After(newest) {
			newest = p.Date
		}
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Title + " Blog",
			Link:        router.Absolute(router.BlogIndex()),
			Description: site.Tagline,
			Language:    site.I18n.DefaultLocale,
			Items:       items,
		},
	}
	if !newest.IsZero() {
		feed.Channel.LastBuildDate = newest.UTC().Format(time.RFC1123Z)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
