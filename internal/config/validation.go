package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Validate checks the configuration after defaults have been applied.
func (s *Site) Validate() error {
	v := &siteValidator{site: s}
	for _, check := range []func() error{
		v.validateIdentity,
		v.validateBaseURL,
		v.validateLocales,
		v.validateNavbar,
		v.validateFooter,
		v.validateOperational,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type siteValidator struct {
	site *Site
}

func (v *siteValidator) validateIdentity() error {
	if strings.TrimSpace(v.site.Title) == "" {
		return errors.New("title is required")
	}
	if v.site.URL == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(v.site.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be an absolute http(s) origin", v.site.URL)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("url %q must not contain a path; use base_url", v.site.URL)
	}
	return nil
}

func (v *siteValidator) validateBaseURL() error {
	b := v.site.BaseURL
	if !strings.HasPrefix(b, "/") || !strings.HasSuffix(b, "/") {
		return fmt.Errorf("base_url %q must start and end with /", b)
	}
	if strings.Contains(b, "//") {
		return fmt.Errorf("base_url %q contains an empty segment", b)
	}
	for _, seg := range []struct{ name, val string }{
		{"docs.route_base_path", v.site.Docs.RouteBasePath},
		{"blog.route_base_path", v.site.Blog.RouteBasePath},
	} {
		if strings.Trim(seg.val, "/") == "" {
			return fmt.Errorf("%s must not be empty", seg.name)
		}
	}
	if v.site.Blog.Enabled && strings.Trim(v.site.Docs.RouteBasePath, "/") == strings.Trim(v.site.Blog.RouteBasePath, "/") {
		return errors.New("docs and blog route_base_path must differ")
	}
	switch v.site.Blog.Feed {
	case FeedRSS, FeedNone:
	default:
		return fmt.Errorf("blog.feed %q is not supported (expected rss|none)", v.site.Blog.Feed)
	}
	return nil
}

func (v *siteValidator) validateLocales() error {
	for _, l := range v.site.I18n.Locales {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("i18n: invalid locale %q: %w", l, err)
		}
	}
	if !slices.Contains(v.site.I18n.Locales, v.site.I18n.DefaultLocale) {
		return fmt.Errorf("i18n: default_locale %q not listed in locales", v.site.I18n.DefaultLocale)
	}
	return nil
}

func (v *siteValidator) validateNavbar() error {
	for i, item := range v.site.Theme.Navbar.Items {
		where := fmt.Sprintf("theme.navbar.items[%d]", i)
		if item.Position != "left" && item.Position != "right" {
			return fmt.Errorf("%s: position %q must be left or right", where, item.Position)
		}
		switch item.Type {
		case NavbarDocSidebar:
			if item.SidebarID == "" {
				return fmt.Errorf("%s: docSidebar requires sidebar_id", where)
			}
		case NavbarDoc:
			if item.DocID == "" {
				return fmt.Errorf("%s: doc requires doc_id", where)
			}
		case NavbarLink:
			if err := checkTarget(where, item.To, item.Href); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown type %q", where, item.Type)
		}
	}
	return nil
}

func (v *siteValidator) validateFooter() error {
	for ci, col := range v.site.Theme.Footer.Links {
		for li, l := range col.Items {
			where := fmt.Sprintf("theme.footer.links[%d].items[%d]", ci, li)
			if l.Label == "" {
				return fmt.Errorf("%s: label is required", where)
			}
			if err := checkTarget(where, l.To, l.Href); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *siteValidator) validateOperational() error {
	if _, err := time.ParseDuration(v.site.LinkVerification.Timeout); err != nil {
		return fmt.Errorf("link_verification.timeout: %w", err)
	}
	if iv := v.site.LinkVerification.Interval; iv != "" {
		d, err := time.ParseDuration(iv)
		if err != nil {
			return fmt.Errorf("link_verification.interval: %w", err)
		}
		if d < time.Minute {
			return fmt.Errorf("link_verification.interval %s is below the 1m minimum", d)
		}
	}
	if err := validateRetry(v.site.LinkVerification.Retry); err != nil {
		return err
	}
	if p := v.site.Preview.Port; p < 0 || p > 65535 {
		return fmt.Errorf("preview.port %d out of range", p)
	}
	return nil
}

func validateRetry(r RetryConfig) error {
	switch r.Backoff {
	case "", RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return fmt.Errorf("link_verification.retry.backoff: unknown mode %q", r.Backoff)
	}
	for name, raw := range map[string]string{"initial": r.Initial, "max": r.Max} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("link_verification.retry.%s: %w", name, err)
		}
	}
	if r.MaxRetries < 0 || r.MaxRetries > 10 {
		return fmt.Errorf("link_verification.retry.max_retries %d out of range 0-10", r.MaxRetries)
	}
	return nil
}

// checkTarget requires exactly one of an internal route or an absolute URL.
func checkTarget(where, to, href string) error {
	switch {
	case to != "" && href != "":
		return fmt.Errorf("%s: set either to or href, not both", where)
	case to == "" && href == "":
		return fmt.Errorf("%s: one of to or href is required", where)
	case to != "" && !strings.HasPrefix(to, "/"):
		return fmt.Errorf("%s: internal route %q must start with /", where, to)
	case href != "":
		if !IsAbsoluteURL(href) {
			return fmt.Errorf("%s: href %q is not an absolute URL", where, href)
		}
	}
	return nil
}

// IsAbsoluteURL reports whether raw is a syntactically valid absolute http(s)
// or mailto URL.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "mailto":
		return u.Opaque != ""
	default:
		return false
	}
}
