package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
)

// DefaultFile is the configuration filename looked up by the CLI.
const DefaultFile = "studysite.yaml"

// Load reads, expands, decodes, defaults and validates a site configuration.
//
// Variables from .env and .env.local next to the configuration file are loaded
// first without overriding the process environment, then ${VAR} references in
// the YAML are expanded.
func Load(configPath string) (*Site, error) {
	root := filepath.Dir(configPath)
	loadEnvFiles(root)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Fatal().Build()
	}

	site, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
			WithContext("path", configPath).Fatal().Build()
	}
	site.root = root
	return site, nil
}

// Parse decodes configuration bytes (after environment expansion), applies
// defaults and validates the result. The site root is the working directory.
func Parse(data []byte) (*Site, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	applyDefaults(&site)
	if err := site.Validate(); err != nil {
		return nil, err
	}
	site.root = "."
	return &site, nil
}

// loadEnvFiles loads .env then .env.local. godotenv.Load never overrides
// variables already present in the environment.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load environment file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", p)
	}
}

// Root returns the directory the configuration was loaded from.
func (s *Site) Root() string {
	if s.root == "" {
		return "."
	}
	return s.root
}

// WithRoot returns a copy of s rooted at dir.
func (s *Site) WithRoot(dir string) *Site {
	c := *s
	c.root = dir
	return &c
}

// Resolve joins p with the site root unless p is absolute.
func (s *Site) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root(), p)
}

// UsesTrailingSlash reports whether routes are emitted as directory indexes.
func (s *Site) UsesTrailingSlash() bool {
	return s.TrailingSlash == nil || *s.TrailingSlash
}

// Copyright renders the footer copyright with {year} substituted from now.
func (s *Site) Copyright(now time.Time) string {
	return strings.ReplaceAll(s.Theme.Footer.Copyright, "{year}", strconv.Itoa(now.Year()))
}

// LinkTimeout returns the parsed per-request timeout for external checks.
func (s *Site) LinkTimeout() time.Duration {
	d, err := time.ParseDuration(s.LinkVerification.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// VerifyInterval returns the periodic verification interval, zero when disabled.
func (s *Site) VerifyInterval() time.Duration {
	if s.LinkVerification.Interval == "" {
		return 0
	}
	d, _ := time.ParseDuration(s.LinkVerification.Interval)
	return d
}
