package config

import "time"

// Config is the root ftpdeck configuration.
type Config struct {
	Pool  PoolConfig  `yaml:"pool"`
	FTP   FTPConfig   `yaml:"ftp"`
	Files FilesConfig `yaml:"files"`
	Log   LogConfig   `yaml:"log"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	Capacity            int           `yaml:"capacity"`
	IdleTimeout         time.Duration `yaml:"idle_timeout"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	StatCacheSize       int           `yaml:"stat_cache_size"`
}

// FTPConfig holds settings for dialing servers.
type FTPConfig struct {
	DialTimeout time.Duration `yaml:"dial_timeout"`
	InsecureTLS bool          `yaml:"insecure_tls"` // skip certificate verification for ftps
}

// FilesConfig locates the bookmark and history files.
type FilesConfig struct {
	Bookmarks string `yaml:"bookmarks"`
	History   string `yaml:"history"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
