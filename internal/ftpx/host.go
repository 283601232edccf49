package ftpx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	gopath "path"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jlaffaye/ftp"

	"github.com/panekit/ftpdeck/internal/identity"
)

// Errors
var (
	ErrClosed   = errors.New("ftp session closed")
	ErrNotExist = errors.New("no such file or directory")
)

// Options configures how hosts dial and cache.
type Options struct {
	DialTimeout   time.Duration // per-connection dial timeout
	InsecureTLS   bool          // skip certificate verification for ftps
	StatCacheSize int           // initial stat cache bound
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		DialTimeout:   30 * time.Second,
		StatCacheSize: DefaultStatCacheSize,
	}
}

// Entry describes one file or directory from a listing.
type Entry struct {
	Name   string
	Size   int64
	Time   time.Time
	Dir    bool
	Link   bool
	Target string // symlink target, if any
}

// Host is one live FTP/FTPS session: a control connection plus the child
// sessions spawned for file transfers.
type Host struct {
	id     identity.Identity
	opts   Options
	logger *slog.Logger
	cache  *statCache

	mu       sync.Mutex
	conn     *ftp.ServerConn
	closed   bool
	finished bool // child hosts: transfer complete, safe to reap
	children []*Host
}

// Dial connects and logs in. For ftps identities the control channel is
// upgraded with explicit TLS before login.
func Dial(ctx context.Context, id identity.Identity, opts Options, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dialConn(ctx, id, opts)
	if err != nil {
		return nil, err
	}

	h := &Host{
		id:     id,
		opts:   opts,
		logger: logger,
		cache:  newStatCache(opts.StatCacheSize),
		conn:   conn,
	}

	logger.Debug("ftp session established", "base_url", id.BaseURL())
	return h, nil
}

func dialConn(ctx context.Context, id identity.Identity, opts Options) (*ftp.ServerConn, error) {
	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(opts.DialTimeout),
	}
	if id.FTPS() {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         id.Host,
			InsecureSkipVerify: opts.InsecureTLS,
		}))
	}

	conn, err := ftp.Dial(id.Addr(), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", id.Addr(), err)
	}

	user, pass := id.User, id.Password
	if user == "" {
		user, pass = "anonymous", "anonymous"
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login %s: %w", id.BaseURL(), err)
	}
	return conn, nil
}

// NoOp sends the protocol keepalive.
func (h *Host) NoOp() error {
	conn, err := h.control()
	if err != nil {
		return err
	}
	return conn.NoOp()
}

// Closed reports whether Close has run.
func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// List returns the entries of a directory and fills the stat cache with
// their metadata.
func (h *Host) List(dir string) ([]Entry, error) {
	conn, err := h.control()
	if err != nil {
		return nil, err
	}

	raw, err := conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		if r.Name == "." || r.Name == ".." {
			continue
		}
		e := convertEntry(r)
		h.cache.put(gopath.Join(dir, e.Name), e)
		entries = append(entries, e)
	}
	return entries, nil
}

// Stat returns metadata for one path, from the cache when a previous
// listing covered it, otherwise by listing the parent directory.
func (h *Host) Stat(path string) (Entry, error) {
	path = gopath.Clean(path)
	if e, ok := h.cache.get(path); ok {
		return e, nil
	}

	dir := gopath.Dir(path)
	if _, err := h.List(dir); err != nil {
		return Entry{}, err
	}
	if e, ok := h.cache.get(path); ok {
		return e, nil
	}
	return Entry{}, fmt.Errorf("stat %s: %w", path, ErrNotExist)
}

// Rename moves a file or directory on the server.
func (h *Host) Rename(from, to string) error {
	conn, err := h.control()
	if err != nil {
		return err
	}
	if err := conn.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", from, to, err)
	}
	h.cache.invalidate(gopath.Clean(from))
	h.cache.invalidate(gopath.Clean(to))
	return nil
}

// Delete removes a file.
func (h *Host) Delete(path string) error {
	conn, err := h.control()
	if err != nil {
		return err
	}
	if err := conn.Delete(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	h.cache.invalidate(gopath.Clean(path))
	return nil
}

// RemoveDir removes an empty directory.
func (h *Host) RemoveDir(path string) error {
	conn, err := h.control()
	if err != nil {
		return err
	}
	if err := conn.RemoveDir(path); err != nil {
		return fmt.Errorf("rmdir %s: %w", path, err)
	}
	h.cache.invalidate(gopath.Clean(path))
	return nil
}

// MakeDir creates a directory.
func (h *Host) MakeDir(path string) error {
	conn, err := h.control()
	if err != nil {
		return err
	}
	if err := conn.MakeDir(path); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// ResizeStatCache grows or shrinks the stat cache bound.
func (h *Host) ResizeStatCache(n int) {
	h.cache.resize(n)
}

// Children returns the number of live child sessions.
func (h *Host) Children() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.children)
}

// ReapFinished closes and drops child sessions whose transfers are done.
// Close failures are logged, never returned: a stuck child must not block
// releasing the parent.
func (h *Host) ReapFinished() {
	h.mu.Lock()
	var done, live []*Host
	for _, c := range h.children {
		if c.isFinished() {
			done = append(done, c)
		} else {
			live = append(live, c)
		}
	}
	h.children = live
	h.mu.Unlock()

	var errs error
	for _, c := range done {
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		h.logger.Warn("closing finished transfer sessions",
			"base_url", h.id.BaseURL(),
			"error", errs,
		)
	}
}

// Close shuts down all children, then the control connection. Idempotent;
// the aggregated error is informational only.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	children := h.children
	h.children = nil
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()

	var errs error
	for _, c := range children {
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if conn != nil {
		if err := conn.Quit(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// control returns the control connection or ErrClosed.
func (h *Host) control() (*ftp.ServerConn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.conn == nil {
		return nil, ErrClosed
	}
	return h.conn, nil
}

// spawnChild dials a sibling session for a file transfer.
func (h *Host) spawnChild() (*Host, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.DialTimeout)
	defer cancel()

	child, err := Dial(ctx, h.id, h.opts, h.logger.With("transfer", true))
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = child.Close()
		return nil, ErrClosed
	}
	h.children = append(h.children, child)
	h.mu.Unlock()
	return child, nil
}

func (h *Host) isFinished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finished
}

func (h *Host) markFinished() {
	h.mu.Lock()
	h.finished = true
	h.mu.Unlock()
}

func convertEntry(r *ftp.Entry) Entry {
	return Entry{
		Name:   r.Name,
		Size:   int64(r.Size),
		Time:   r.Time,
		Dir:    r.Type == ftp.EntryTypeFolder,
		Link:   r.Type == ftp.EntryTypeLink,
		Target: r.Target,
	}
}
