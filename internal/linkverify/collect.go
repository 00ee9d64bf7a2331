package linkverify

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/linkcheck"
)

// Target is one external URL together with the pages that reference it.
type Target struct {
	URL     string
	Sources []string // page paths relative to the output directory
}

// Collect scans every HTML page below outputDir and returns the external
// http(s) links, de-duplicated and sorted by URL. Links to skipped hosts
// are left out.
func Collect(outputDir string, skipHosts []string) ([]Target, error) {
	bySource := map[string][]string{}
	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		f, err := os.Open(filepath.Clean(p))
		if err != nil {
			return err
		}
		links, err := linkcheck.ExtractHTMLLinks(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(outputDir, p)
		page := pageRoute(filepath.ToSlash(rel))
		for _, l := range links {
			if !l.IsExternal() || skipped(l.URL, skipHosts) {
				continue
			}
			u := stripFragment(l.URL)
			if !slices.Contains(bySource[u], page) {
				bySource[u] = append(bySource[u], page)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan built site").
			WithContext("output_dir", outputDir).
			Build()
	}

	targets := make([]Target, 0, len(bySource))
	for u, sources := range bySource {
		slices.Sort(sources)
		targets = append(targets, Target{URL: u, Sources: sources})
	}
	slices.SortFunc(targets, func(a, b Target) int { return strings.Compare(a.URL, b.URL) })
	return targets, nil
}

// pageRoute turns "docs/intro/index.html" into "/docs/intro/".
func pageRoute(rel string) string {
	if path.Base(rel) == "index.html" {
		dir := path.Dir(rel)
		if dir == "." {
			return "/"
		}
		return "/" + dir + "/"
	}
	return "/" + rel
}

func stripFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	return u.String()
}

func skipped(raw string, hosts []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// cacheKey maps a URL onto the key alphabet accepted by JetStream KV.
func cacheKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return "url." + hex.EncodeToString(sum[:])
}
