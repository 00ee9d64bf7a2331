package config

// Site is the immutable site metadata record. It is produced by Load and must
// not be mutated by build stages.
type Site struct {
	Title                 string            `yaml:"title"`
	Tagline               string            `yaml:"tagline,omitempty"`
	Favicon               string            `yaml:"favicon,omitempty"`
	URL                   string            `yaml:"url"`
	BaseURL               string            `yaml:"base_url"`
	OrganizationName      string            `yaml:"organization_name,omitempty"`
	ProjectName           string            `yaml:"project_name,omitempty"`
	DeploymentBranch      string            `yaml:"deployment_branch,omitempty"`
	TrailingSlash         *bool             `yaml:"trailing_slash,omitempty"`
	OnBrokenLinks         ReportingSeverity `yaml:"on_broken_links,omitempty"`
	OnBrokenMarkdownLinks ReportingSeverity `yaml:"on_broken_markdown_links,omitempty"`
	I18n                  I18nConfig        `yaml:"i18n"`
	Docs                  DocsConfig        `yaml:"docs"`
	Blog                  BlogConfig        `yaml:"blog"`
	Theme                 ThemeConfig       `yaml:"theme"`
	StaticDir             string            `yaml:"static_dir,omitempty"`
	Output                OutputConfig      `yaml:"output"`
	LinkVerification      LinkVerification  `yaml:"link_verification"`
	History               HistoryConfig     `yaml:"history"`
	Metrics               MetricsConfig     `yaml:"metrics"`
	Preview               PreviewConfig     `yaml:"preview"`

	// root is the directory containing the configuration file. Relative
	// content paths are resolved against it.
	root string
}

// I18nConfig declares the site locales. Only the default locale is rendered.
type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

// DocsConfig configures the documentation plugin.
type DocsConfig struct {
	Path          string `yaml:"path"`            // content directory, relative to the site root
	RouteBasePath string `yaml:"route_base_path"` // URL segment under base_url
	SidebarPath   string `yaml:"sidebar_path"`    // navigation tree file; missing file means autogenerate
	EditURL       string `yaml:"edit_url,omitempty"`
}

type BlogConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Path            string   `yaml:"path"`
	RouteBasePath   string   `yaml:"route_base_path"`
	ShowReadingTime bool     `yaml:"show_reading_time"`
	EditURL         string   `yaml:"edit_url,omitempty"`
	Feed            FeedType `yaml:"feed,omitempty"`
}

// FeedType selects the blog feed format.
type FeedType string

const (
	FeedRSS  FeedType = "rss"
	FeedNone FeedType = "none"
)

type ThemeConfig struct {
	CustomCSS string       `yaml:"custom_css,omitempty"`
	Image     string       `yaml:"image,omitempty"` // social card
	Navbar    NavbarConfig `yaml:"navbar"`
	Footer    FooterConfig `yaml:"footer"`
	Prism     PrismConfig  `yaml:"prism"`
}

type NavbarConfig struct {
	Title string       `yaml:"title"`
	Logo  Logo         `yaml:"logo"`
	Items []NavbarItem `yaml:"items"`
}

type Logo struct {
	Alt string `yaml:"alt"`
	Src string `yaml:"src"`
}

// NavbarItemType enumerates navbar entry kinds.
type NavbarItemType string

const (
	NavbarLink       NavbarItemType = "link"
	NavbarDoc        NavbarItemType = "doc"
	NavbarDocSidebar NavbarItemType = "docSidebar"
)

// NavbarItem is one navbar entry. Exactly one of To, Href, DocID or
// SidebarID is meaningful depending on Type.
type NavbarItem struct {
	Type      NavbarItemType `yaml:"type,omitempty"`
	Label     string         `yaml:"label"`
	To        string         `yaml:"to,omitempty"`
	Href      string         `yaml:"href,omitempty"`
	DocID     string         `yaml:"doc_id,omitempty"`
	SidebarID string         `yaml:"sidebar_id,omitempty"`
	Position  string         `yaml:"position,omitempty"` // left|right
}

type FooterConfig struct {
	Style     string         `yaml:"style,omitempty"` // dark|light
	Links     []FooterColumn `yaml:"links"`
	Copyright string         `yaml:"copyright,omitempty"`
}

type FooterColumn struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
}

// FooterLink points either to an internal route (To) or an external URL (Href).
type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

type PrismConfig struct {
	Theme               string   `yaml:"theme"`
	DarkTheme           string   `yaml:"dark_theme"`
	AdditionalLanguages []string `yaml:"additional_languages,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // drop the previous output instead of keeping it as <directory>.prev
}

// LinkVerification configures the external link checker (verify-links and preview).
type LinkVerification struct {
	Concurrency int         `yaml:"concurrency"`
	Timeout     string      `yaml:"timeout"`
	UserAgent   string      `yaml:"user_agent,omitempty"`
	SkipHosts   []string    `yaml:"skip_hosts,omitempty"`
	Interval    string      `yaml:"interval,omitempty"` // periodic re-check while previewing; empty disables
	Retry       RetryConfig `yaml:"retry"`
	NATS        NATSConfig  `yaml:"nats"`
}

// RetryBackoffMode selects how the delay between link check attempts grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig controls retries of transient link check failures
// (network errors, 429 and 5xx responses).
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    string           `yaml:"initial,omitempty"`
	Max        string           `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries"`
}

// NATSConfig enables publication of broken link events to JetStream.
type NATSConfig struct {
	URL      string `yaml:"url,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	KVBucket string `yaml:"kv_bucket,omitempty"`
}

// Enabled reports whether a NATS server is configured.
func (n NATSConfig) Enabled() bool { return n.URL != "" }

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type PreviewConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}
