package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Meta holds the front matter fields the site generator understands.
// Unknown fields are kept in the raw map returned by ParseYAML.
type Meta struct {
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title"`
	SidebarLabel    string   `yaml:"sidebar_label"`
	SidebarPosition *float64 `yaml:"sidebar_position"`
	Slug            string   `yaml:"slug"`
	Description     string   `yaml:"description"`
	Tags            []string `yaml:"tags"`
	Draft           bool     `yaml:"draft"`
	Date            string   `yaml:"date"`
	Authors         []string `yaml:"authors"`
	HideTitle       bool     `yaml:"hide_title"`
}

// DecodeMeta decodes raw YAML front matter into Meta.
func DecodeMeta(raw []byte) (Meta, error) {
	var m Meta
	if len(strings.TrimSpace(string(raw))) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Meta{}, fmt.Errorf("decode front matter: %w", err)
	}
	m.ID = strings.TrimSpace(m.ID)
	m.Slug = strings.TrimSpace(m.Slug)
	if strings.Contains(m.ID, "/") {
		return Meta{}, fmt.Errorf("front matter id %q must not contain '/'", m.ID)
	}
	return m, nil
}

// ParsedDate returns the front matter date, accepting a plain day or RFC 3339.
func (m Meta) ParsedDate() (time.Time, bool) {
	if m.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, m.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
