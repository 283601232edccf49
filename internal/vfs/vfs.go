package vfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/panekit/ftpdeck/internal/ftpx"
	"github.com/panekit/ftpdeck/internal/pool"
)

// Errors
var (
	ErrCrossServer = errors.New("rename requires source and destination on the same server")
	ErrIsDir       = errors.New("path is a directory")
)

// FS performs filesystem operations on remote FTP servers through the
// connection pool.
type FS struct {
	pool   *pool.Manager
	logger *slog.Logger
}

// New creates a filesystem adapter over the pool.
func New(p *pool.Manager, logger *slog.Logger) *FS {
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{pool: p, logger: logger}
}

// List returns the entries of the directory at url and records the visit.
func (f *FS) List(ctx context.Context, url string) ([]ftpx.Entry, error) {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	entries, err := lease.Session().List(lease.Path())
	if err != nil {
		return nil, err
	}

	if err := f.pool.RecordVisited(url); err != nil {
		f.logger.Warn("recording visit", "url", url, "error", err)
	}
	return entries, nil
}

// Stat returns metadata for the file or directory at url.
func (f *FS) Stat(ctx context.Context, url string) (ftpx.Entry, error) {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return ftpx.Entry{}, err
	}
	defer lease.Release()

	return lease.Session().Stat(lease.Path())
}

// Exists reports whether url names an existing file or directory. A
// server that cannot be reached counts as "does not exist" from the
// browser's point of view.
func (f *FS) Exists(ctx context.Context, url string) bool {
	_, err := f.Stat(ctx, url)
	return err == nil
}

// IsDir reports whether url names a directory, false when unreachable.
func (f *FS) IsDir(ctx context.Context, url string) bool {
	e, err := f.Stat(ctx, url)
	return err == nil && e.Dir
}

// Mkdir creates the directory at url.
func (f *FS) Mkdir(ctx context.Context, url string) error {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return err
	}
	defer lease.Release()

	return lease.Session().MakeDir(lease.Path())
}

// Remove deletes the file at url. Directories go through RemoveDir.
func (f *FS) Remove(ctx context.Context, url string) error {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return err
	}
	defer lease.Release()

	if e, err := lease.Session().Stat(lease.Path()); err == nil && e.Dir {
		return fmt.Errorf("remove %s: %w", lease.Path(), ErrIsDir)
	}
	return lease.Session().Delete(lease.Path())
}

// RemoveDir deletes the empty directory at url.
func (f *FS) RemoveDir(ctx context.Context, url string) error {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return err
	}
	defer lease.Release()

	return lease.Session().RemoveDir(lease.Path())
}

// Rename moves srcURL to dstURL on one server, using a single session.
func (f *FS) Rename(ctx context.Context, srcURL, dstURL string) error {
	src, err := f.pool.ResolveURL(srcURL)
	if err != nil {
		return err
	}
	dst, err := f.pool.ResolveURL(dstURL)
	if err != nil {
		return err
	}
	if src.BaseURL() != dst.BaseURL() {
		return ErrCrossServer
	}

	lease, err := f.pool.Acquire(ctx, srcURL)
	if err != nil {
		return err
	}
	defer lease.Release()

	return lease.Session().Rename(src.Path, dst.Path)
}

// Copy duplicates a single file between FTP locations by streaming
// through paired transfer connections. Directory trees are the caller's
// business.
func (f *FS) Copy(ctx context.Context, srcURL, dstURL string) error {
	srcLease, err := f.pool.Acquire(ctx, srcURL)
	if err != nil {
		return err
	}
	defer srcLease.Release()

	dstLease, err := f.pool.Acquire(ctx, dstURL)
	if err != nil {
		return err
	}
	defer dstLease.Release()

	r, err := srcLease.Session().OpenRead(srcLease.Path())
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := dstLease.Session().OpenWrite(dstLease.Path())
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy %s -> %s: %w", srcURL, dstURL, err)
	}
	return w.Close()
}

// Download streams the file at url into w.
func (f *FS) Download(ctx context.Context, url string, w io.Writer) error {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return err
	}
	defer lease.Release()

	r, err := lease.Session().OpenRead(lease.Path())
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return nil
}

// Upload streams r into the file at url.
func (f *FS) Upload(ctx context.Context, url string, r io.Reader) error {
	lease, err := f.pool.Acquire(ctx, url)
	if err != nil {
		return err
	}
	defer lease.Release()

	w, err := lease.Session().OpenWrite(lease.Path())
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", url, err)
	}
	return w.Close()
}
