package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Pool.Capacity < 1 {
		return errors.New("pool.capacity must be >= 1")
	}
	if c.Pool.IdleTimeout <= 0 {
		return errors.New("pool.idle_timeout must be positive")
	}
	if c.Pool.HealthCheckInterval <= 0 {
		return errors.New("pool.health_check_interval must be positive")
	}
	if c.Pool.StatCacheSize < 1 {
		return errors.New("pool.stat_cache_size must be >= 1")
	}

	if c.FTP.DialTimeout <= 0 {
		return errors.New("ftp.dial_timeout must be positive")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level)
}
