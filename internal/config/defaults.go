package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(site *Site)
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&siteDefaults{},
		&docsDefaults{},
		&blogDefaults{},
		&themeDefaults{},
		&operationalDefaults{},
	}
}

func applyDefaults(site *Site) {
	for _, a := range defaultAppliers() {
		a.ApplyDefaults(site)
	}
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(site *Site) {
	if site.BaseURL == "" {
		site.BaseURL = "/"
	}
	if site.OnBrokenLinks == "" {
		site.OnBrokenLinks = SeverityThrow
	}
	if site.OnBrokenMarkdownLinks == "" {
		site.OnBrokenMarkdownLinks = SeverityWarn
	}
	if site.I18n.DefaultLocale == "" {
		site.I18n.DefaultLocale = "en"
	}
	if len(site.I18n.Locales) == 0 {
		site.I18n.Locales = []string{site.I18n.DefaultLocale}
	}
	if site.StaticDir == "" {
		site.StaticDir = "static"
	}
	if site.Output.Directory == "" {
		site.Output.Directory = "build"
	}
}

type docsDefaults struct{}

func (docsDefaults) Domain() string { return "docs" }

func (docsDefaults) ApplyDefaults(site *Site) {
	if site.Docs.Path == "" {
		site.Docs.Path = "docs"
	}
	if site.Docs.RouteBasePath == "" {
		site.Docs.RouteBasePath = "docs"
	}
	if site.Docs.SidebarPath == "" {
		site.Docs.SidebarPath = "sidebars.yaml"
	}
}

type blogDefaults struct{}

func (blogDefaults) Domain() string { return "blog" }

func (blogDefaults) ApplyDefaults(site *Site) {
	if site.Blog.Path == "" {
		site.Blog.Path = "blog"
	}
	if site.Blog.RouteBasePath == "" {
		site.Blog.RouteBasePath = "blog"
	}
	if site.Blog.Feed == "" {
		site.Blog.Feed = FeedRSS
	}
}

type themeDefaults struct{}

func (themeDefaults) Domain() string { return "theme" }

func (themeDefaults) ApplyDefaults(site *Site) {
	if site.Theme.Navbar.Title == "" {
		site.Theme.Navbar.Title = site.Title
	}
	for i := range site.Theme.Navbar.Items {
		item := &site.Theme.Navbar.Items[i]
		if item.Type == "" {
			item.Type = NavbarLink
		}
		if item.Position == "" {
			item.Position = "left"
		}
	}
	if site.Theme.Footer.Style == "" {
		site.Theme.Footer.Style = "dark"
	}
	if site.Theme.Prism.Theme == "" {
		site.Theme.Prism.Theme = "github"
	}
	if site.Theme.Prism.DarkTheme == "" {
		site.Theme.Prism.DarkTheme = "dracula"
	}
}

type operationalDefaults struct{}

func (operationalDefaults) Domain() string { return "operational" }

func (operationalDefaults) ApplyDefaults(site *Site) {
	lv := &site.LinkVerification
	if lv.Concurrency <= 0 {
		lv.Concurrency = 8
	}
	if lv.Timeout == "" {
		lv.Timeout = "10s"
	}
	if lv.UserAgent == "" {
		lv.UserAgent = "studysite-linkcheck"
	}
	if lv.Retry.Backoff == "" {
		lv.Retry.Backoff = RetryBackoffLinear
	}
	if lv.Retry.Initial == "" {
		lv.Retry.Initial = "1s"
	}
	if lv.Retry.Max == "" {
		lv.Retry.Max = "30s"
	}
	if lv.NATS.Subject == "" {
		lv.NATS.Subject = "studysite.links.broken"
	}
	if lv.NATS.KVBucket == "" {
		lv.NATS.KVBucket = "studysite-link-cache"
	}
	if site.History.Path == "" {
		site.History.Path = ".studysite/history.db"
	}
	if site.Metrics.Path == "" {
		site.Metrics.Path = "/metrics"
	}
	if site.Preview.Host == "" {
		site.Preview.Host = "127.0.0.1"
	}
	if site.Preview.Port == 0 {
		site.Preview.Port = 3000
	}
}
