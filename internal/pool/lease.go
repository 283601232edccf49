package pool

import (
	"sync"

	"github.com/panekit/ftpdeck/internal/identity"
)

// Lease is scoped access to one pooled session: the resolved residual
// path plus the session handle. Release must run on every exit path
// (defer it); it reaps finished transfer connections and is idempotent.
type Lease struct {
	m       *Manager
	key     Key
	path    string
	session Session

	mu       sync.Mutex
	released bool
}

func newLease(m *Manager, e *entry, id identity.Identity) *Lease {
	return &Lease{
		m:       m,
		key:     e.key,
		path:    id.Path,
		session: e.session,
	}
}

// Path is the residual path of the acquired URL, after alias resolution.
func (l *Lease) Path() string {
	return l.path
}

// Session returns the protocol handle. Using a lease after Release is a
// caller bug, not a runtime fault, and panics.
func (l *Lease) Session() Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		panic("pool: Session called on released lease")
	}
	return l.session
}

// Release returns the session to the pool and reaps finished transfer
// connections. Safe to call more than once.
func (l *Lease) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	l.mu.Unlock()

	l.m.release(l.key)
}
