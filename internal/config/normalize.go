package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganizer()
	c.normalizeWatcher()
	c.normalizeRules()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WatchedRoot) == "" {
		c.Paths.WatchedRoot = defaultWatchedRoot
	}
	if c.Paths.WatchedRoot, err = expandPath(c.Paths.WatchedRoot); err != nil {
		return fmt.Errorf("paths.watched_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeOrganizer() {
	c.Organizer.DuplicatesDir = strings.TrimSpace(c.Organizer.DuplicatesDir)
	if c.Organizer.DuplicatesDir == "" {
		c.Organizer.DuplicatesDir = defaultDuplicatesDir
	}
	if c.Organizer.FingerprintWorkers <= 0 {
		c.Organizer.FingerprintWorkers = defaultFingerprintWorkers
	}
	if c.Organizer.QueueDepth <= 0 {
		c.Organizer.QueueDepth = defaultQueueDepth
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.DebounceWindowMS <= 0 {
		c.Watcher.DebounceWindowMS = defaultDebounceWindowMS
	}
	if c.Watcher.SettlePollMS <= 0 {
		c.Watcher.SettlePollMS = defaultSettlePollMS
	}
}

func (c *Config) normalizeRules() {
	normalized := c.Rules[:0]
	for _, rule := range c.Rules {
		rule.Pattern = strings.TrimSpace(rule.Pattern)
		rule.Category = strings.TrimSpace(rule.Category)
		if rule.Pattern == "" && rule.Category == "" {
			continue
		}
		normalized = append(normalized, rule)
	}
	c.Rules = normalized
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
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
