package linkverify

import (
	"time"
)

// BrokenLinkEvent represents a broken external link found in the built site.
// It is published to NATS for downstream processing (e.g. opening an issue
// against the course material).
type BrokenLinkEvent struct {
	URL    string `json:"url"`
	Status int    `json:"status"` // HTTP status code (0 for transport errors)
	Error  string `json:"error"`

	// Pages of the built site that contain the link, as site routes.
	Sources []string `json:"sources"`

	Timestamp     time.Time `json:"timestamp"`
	LastChecked   time.Time `json:"last_checked"`
	FailureCount  int       `json:"failure_count"`
	FirstFailedAt time.Time `json:"first_failed_at,omitzero"`

	SiteTitle string `json:"site_title,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
}

// CacheEntry represents a cached link verification result.
type CacheEntry struct {
	URL           string    `json:"url"`
	Status        int       `json:"status"`
	IsValid       bool      `json:"is_valid"`
	Error         string    `json:"error,omitempty"`
	LastChecked   time.Time `json:"last_checked"`
	FailureCount  int       `json:"failure_count"`
	FirstFailedAt time.Time `json:"first_failed_at,omitzero"`
}

// Cache TTLs. Failures are retried sooner than successes.
const (
	cacheTTL         = 24 * time.Hour
	cacheTTLFailures = time.Hour
)

// Fresh reports whether the entry is still usable at now.
func (e *CacheEntry) Fresh(now time.Time) bool {
	if e == nil {
		return false
	}
	ttl := cacheTTL
	if !e.IsValid {
		ttl = cacheTTLFailures
	}
	return now.Sub(e.LastChecked) < ttl
}
