package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRegistry()
	c.normalizeMatching()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRegistry() {
	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	c.Registry.APIKey = strings.TrimSpace(c.Registry.APIKey)
	if c.Registry.TimeoutSeconds <= 0 {
		c.Registry.TimeoutSeconds = defaultRegistryTimeoutSeconds
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.MinPathSegments <= 0 {
		c.Matching.MinPathSegments = defaultMinPathSegments
	}

	categories := make([]string, 0, len(c.Matching.EligibleCategories))
	for _, category := range c.Matching.EligibleCategories {
		category = strings.ToUpper(strings.TrimSpace(category))
		if category != "" {
			categories = append(categories, category)
		}
	}
	if len(categories) > 0 {
		c.Matching.EligibleCategories = categories
	}

	known := make([]string, 0, len(c.Matching.KnownCategories))
	for _, category := range c.Matching.KnownCategories {
		category = strings.ToUpper(strings.TrimSpace(category))
		if category != "" {
			known = append(known, category)
		}
	}
	c.Matching.KnownCategories = known

	names := make([]string, 0, len(c.Matching.IdentityFileNames))
	for _, name := range c.Matching.IdentityFileNames {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		c.Matching.IdentityFileNames = names
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
