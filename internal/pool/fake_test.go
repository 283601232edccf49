package pool

import (
	"context"
	"io"
	"sync"

	"github.com/panekit/ftpdeck/internal/ftpx"
	"github.com/panekit/ftpdeck/internal/identity"
)

// fakeSession implements Session in memory and counts what the pool does
// to it.
type fakeSession struct {
	baseURL string

	mu        sync.Mutex
	closed    bool
	noops     int
	noopErr   error
	reaps     int
	cacheSize int
	listCalls int
	entries   []ftpx.Entry
}

func (s *fakeSession) NoOp() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noops++
	return s.noopErr
}

func (s *fakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) ReapFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reaps++
}

func (s *fakeSession) ResizeStatCache(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheSize = n
}

func (s *fakeSession) List(dir string) ([]ftpx.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.entries, nil
}

func (s *fakeSession) Stat(path string) (ftpx.Entry, error) {
	return ftpx.Entry{Name: path}, nil
}

func (s *fakeSession) OpenRead(path string) (io.ReadCloser, error) { return nil, nil }
func (s *fakeSession) OpenWrite(path string) (io.WriteCloser, error) { return nil, nil }
func (s *fakeSession) Rename(from, to string) error { return nil }
func (s *fakeSession) Delete(path string) error { return nil }
func (s *fakeSession) RemoveDir(path string) error { return nil }
func (s *fakeSession) MakeDir(path string) error { return nil }

func (s *fakeSession) noopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noops
}

func (s *fakeSession) reapCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reaps
}

func (s *fakeSession) setNoopErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noopErr = err
}

func (s *fakeSession) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// fakeDialer hands out fakeSessions and records every dial in order.
type fakeDialer struct {
	mu       sync.Mutex
	sessions []*fakeSession
	err      error
}

func (d *fakeDialer) dial(ctx context.Context, id identity.Identity) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeSession{baseURL: id.BaseURL()}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

func (d *fakeDialer) session(i int) *fakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[i]
}
