// Package config loads the ftpdeck YAML configuration: pool sizing and
// timeouts, FTP dial behavior, and the bookmark/history file locations.
// Values go through environment-variable expansion, defaulting, and
// validation before use.
package config
