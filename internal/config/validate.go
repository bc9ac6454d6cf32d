package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WatchedRoot) == "" {
		return errors.New("paths.watched_root must be set")
	}
	if c.Paths.WatchedRoot == string(filepath.Separator) {
		return errors.New("paths.watched_root must not be the filesystem root")
	}
	return nil
}

func (c *Config) validateRules() error {
	for i, rule := range c.Rules {
		if rule.Pattern == "" {
			return fmt.Errorf("rules[%d]: pattern must be set", i)
		}
		if rule.Category == "" {
			return fmt.Errorf("rules[%d]: category must be set for pattern %q", i, rule.Pattern)
		}
		if strings.ContainsRune(rule.Category, filepath.Separator) {
			return fmt.Errorf("rules[%d]: category %q must be a plain folder name", i, rule.Category)
		}
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	if strings.ContainsRune(c.Organizer.DuplicatesDir, filepath.Separator) {
		return fmt.Errorf("organizer.duplicates_dir %q must be a plain folder name", c.Organizer.DuplicatesDir)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
