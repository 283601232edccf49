package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultCapacity            = 3
	DefaultIdleTimeout         = 2 * time.Minute
	DefaultHealthCheckInterval = 5 * time.Second
	DefaultStatCacheSize       = 20000
	DefaultDialTimeout         = 30 * time.Second
	DefaultBookmarksFile       = "ftpdeck/bookmarks.json"
	DefaultHistoryFile         = "ftpdeck/history.json"
	DefaultLogLevel            = "info"
)

func (c *Config) applyDefaults() {
	if c.Pool.Capacity == 0 {
		c.Pool.Capacity = DefaultCapacity
	}
	if c.Pool.IdleTimeout == 0 {
		c.Pool.IdleTimeout = DefaultIdleTimeout
	}
	if c.Pool.HealthCheckInterval == 0 {
		c.Pool.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if c.Pool.StatCacheSize == 0 {
		c.Pool.StatCacheSize = DefaultStatCacheSize
	}

	if c.FTP.DialTimeout == 0 {
		c.FTP.DialTimeout = DefaultDialTimeout
	}

	if c.Files.Bookmarks == "" {
		c.Files.Bookmarks = DefaultBookmarksFile
	}
	if c.Files.History == "" {
		c.Files.History = DefaultHistoryFile
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
