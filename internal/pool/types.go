package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/panekit/ftpdeck/internal/ftpx"
	"github.com/panekit/ftpdeck/internal/identity"
)

// Errors
var (
	ErrUnsupportedScheme = errors.New(`url scheme must be "ftp" or "ftps"`)
)

// ConnectError reports a failed initial connect (DNS, TCP, TLS or login).
// Reuse-path faults never surface as this; they are handled by transparent
// reconnection.
type ConnectError struct {
	BaseURL string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.BaseURL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Session is what the pool needs from an FTP client session, and what it
// hands to consumers through a Lease.
type Session interface {
	// Pool lifecycle.
	NoOp() error
	Closed() bool
	Close() error
	ReapFinished()
	ResizeStatCache(n int)

	// Protocol operations for the filesystem adapter.
	List(dir string) ([]ftpx.Entry, error)
	Stat(path string) (ftpx.Entry, error)
	OpenRead(path string) (io.ReadCloser, error)
	OpenWrite(path string) (io.WriteCloser, error)
	Rename(from, to string) error
	Delete(path string) error
	RemoveDir(path string) error
	MakeDir(path string) error
}

var _ Session = (*ftpx.Host)(nil)

// Dialer opens a fresh session for an identity.
type Dialer func(ctx context.Context, id identity.Identity) (Session, error)

// Key identifies one pooled connection. Owner is the caller-context token,
// so concurrent callers get distinct connections even to the same server.
type Key struct {
	Owner    string
	Host     string
	Port     int
	User     string
	Password string
}

func keyFor(owner string, id identity.Identity) Key {
	return Key{
		Owner:    owner,
		Host:     id.Host,
		Port:     id.Port,
		User:     id.User,
		Password: id.Password,
	}
}

// Config configures the pool Manager.
type Config struct {
	Capacity            int           // max pooled sessions; FTP servers commonly cap per-IP connections near this
	IdleTimeout         time.Duration // sessions idle longer than this are swept
	HealthCheckInterval time.Duration // minimum gap between NOOP validations per session
	StatCacheSize       int           // stat cache bound applied to fresh sessions
	FTP                 ftpx.Options  // dial options for the default dialer

	Dialer  Dialer                   // nil = dial real FTP sessions via ftpx
	Aliases func() map[string]string // bookmark alias snapshot, nil = none
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:            3,
		IdleTimeout:         2 * time.Minute,
		HealthCheckInterval: 5 * time.Second,
		StatCacheSize:       20000,
		FTP:                 ftpx.DefaultOptions(),
	}
}

// OpenConnection pairs a live server with where the caller last navigated
// on it, for "jump to an open connection" style UIs.
type OpenConnection struct {
	BaseURL     string
	LastVisited string
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Open         int   // live pooled sessions
	Hits         int64 // acquires served by reuse
	Misses       int64 // acquires that dialed
	HealthChecks int64 // NOOP validations sent
	Evictions    int64 // sessions closed by sweep, capacity, staleness or request
}
