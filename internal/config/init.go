package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with defaults applied and every required
// field populated with placeholder values.
func Default() *Site {
	s := &Site{
		Title: "My Study Site",
		URL:   "https://example.com",
	}
	applyDefaults(s)
	s.root = "."
	return s
}

// Example returns the configuration of the certification curriculum site
// used as the scaffold written by Init.
func Example() *Site {
	s := &Site{
		Title:                 "Salesforce Platform Developer I",
		Tagline:               "4-week intensive learning path to certification",
		Favicon:               "img/favicon.svg",
		URL:                   "https://lehoaibao130497.github.io",
		BaseURL:               "/learn-salesforce/",
		OrganizationName:      "lehoaibao130497",
		ProjectName:           "learn-salesforce",
		OnBrokenLinks:         SeverityThrow,
		OnBrokenMarkdownLinks: SeverityWarn,
		I18n:                  I18nConfig{DefaultLocale: "en", Locales: []string{"en"}},
		Docs: DocsConfig{
			EditURL: "https://github.com/lehoaibao130497/learn-salesforce/tree/main/website/",
		},
		Blog: BlogConfig{
			Enabled:         true,
			ShowReadingTime: true,
			EditURL:         "https://github.com/lehoaibao130497/learn-salesforce/tree/main/website/",
		},
		Theme: ThemeConfig{
			CustomCSS: "src/css/custom.css",
			Image:     "img/social-card.svg",
			Navbar: NavbarConfig{
				Title: "Salesforce Dev I",
				Logo:  Logo{Alt: "Salesforce Logo", Src: "img/logo.svg"},
				Items: []NavbarItem{
					{Type: NavbarDocSidebar, SidebarID: "sidebar", Label: "Documentation", Position: "left"},
					{Type: NavbarLink, To: "/blog", Label: "Blog", Position: "left"},
					{Type: NavbarLink, Href: "https://github.com/lehoaibao130497/learn-salesforce", Label: "GitHub", Position: "right"},
				},
			},
			Footer: FooterConfig{
				Style: "dark",
				Links: []FooterColumn{
					{Title: "Docs", Items: []FooterLink{
						{Label: "Getting Started", To: "/docs/GETTING_STARTED"},
						{Label: "Quick Reference", To: "/docs/QUICK_REFERENCE"},
						{Label: "Resources", To: "/docs/RESOURCES"},
					}},
					{Title: "Community", Items: []FooterLink{
						{Label: "Stack Overflow", Href: "https://stackoverflow.com/questions/tagged/salesforce"},
						{Label: "Discord", Href: "https://discordapp.com/invite/docusaurus"},
						{Label: "Twitter", Href: "https://twitter.com/salesforcedevs"},
					}},
					{Title: "More", Items: []FooterLink{
						{Label: "Blog", To: "/blog"},
						{Label: "GitHub", Href: "https://github.com/your-username/learn-salesforce"},
					}},
				},
				Copyright: "Copyright © {year} Salesforce Learning Journey. Built with studysite.",
			},
			Prism: PrismConfig{
				Theme:               "github",
				DarkTheme:           "dracula",
				AdditionalLanguages: []string{"java", "sql", "javascript", "typescript", "bash"},
			},
		},
	}
	applyDefaults(s)
	s.root = "."
	return s
}

// Init writes the example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	header := []byte("# studysite configuration\n# Environment variables (${VAR}) are expanded; .env and .env.local are loaded first.\n\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
