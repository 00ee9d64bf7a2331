package site

import (
	"encoding/json"
	"sort"
)

// ManifestFile is written at the root of the output directory.
const ManifestFile = "manifest.json"

// Manifest lists what a build produced. It carries no timestamps, so two
// builds of identical inputs produce identical manifests.
type Manifest struct {
	Title     string             `json:"title"`
	BaseURL   string             `json:"base_url"`
	Routes    []string           `json:"routes"`
	Documents []ManifestDocument `json:"documents"`
	Posts     []ManifestPost     `json:"posts,omitempty"`
}

// ManifestDocument records a rendered document and its content fingerprint.
type ManifestDocument struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Route       string `json:"route"`
	Fingerprint string `json:"fingerprint"`
}

type ManifestPost struct {
	Slug  string `json:"slug"`
	Route string `json:"route"`
}

func (m *Manifest) addRoute(route string) {
	m.Routes = append(m.Routes, route)
}

// Marshal sorts every list and encodes the manifest.
func (m *Manifest) Marshal() ([]byte, error) {
	sort.Strings(m.Routes)
	m.Routes = dedupe(m.Routes)
	sort.Slice(m.Documents, func(i, j int) bool { return m.Documents[i].ID < m.Documents[j].ID })
	sort.Slice(m.Posts, func(i, j int) bool { return m.Posts[i].Route < m.Posts[j].Route })
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
