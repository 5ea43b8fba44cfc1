package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRegistry() error {
	if !c.Registry.Enabled {
		return nil
	}
	if c.Registry.BaseURL == "" {
		return errors.New("registry.base_url must be set when registry.enabled is true")
	}
	if !strings.HasPrefix(c.Registry.BaseURL, "http://") && !strings.HasPrefix(c.Registry.BaseURL, "https://") {
		return fmt.Errorf("registry.base_url must be an http(s) URL, got %q", c.Registry.BaseURL)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.MinPathSegments < 1 {
		return errors.New("matching.min_path_segments must be at least 1")
	}
	if len(c.Matching.EligibleCategories) == 0 {
		return errors.New("matching.eligible_categories must list at least one trial category")
	}
	return nil
}

func (c *Config) validateDedup() error {
	if c.Dedup.MinSimilarity < 0 || c.Dedup.MinSimilarity > 1 {
		return errors.New("dedup.min_similarity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
