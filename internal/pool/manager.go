package pool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panekit/ftpdeck/internal/ftpx"
	"github.com/panekit/ftpdeck/internal/identity"
)

// entry is one pooled session plus its bookkeeping.
type entry struct {
	key     Key
	session Session
	baseURL string

	createdAt   time.Time
	lastUsedAt  time.Time
	lastCheckAt time.Time
}

// Manager owns the session pool and the visited-URL registry. All state
// mutation is serialized behind one mutex; protocol I/O on an acquired
// session happens outside it.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	dial   Dialer
	now    func() time.Time

	mu      sync.Mutex
	conns   map[Key]*entry
	visited map[string]string // baseURL -> last visited full URL
	stats   Stats
}

// NewManager creates a pool Manager. Zero config fields fall back to
// DefaultConfig values.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultConfig()
	if cfg.Capacity == 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = def.HealthCheckInterval
	}
	if cfg.StatCacheSize == 0 {
		cfg.StatCacheSize = def.StatCacheSize
	}
	if cfg.FTP.DialTimeout == 0 {
		cfg.FTP.DialTimeout = def.FTP.DialTimeout
	}
	if cfg.FTP.StatCacheSize == 0 {
		cfg.FTP.StatCacheSize = def.FTP.StatCacheSize
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		conns:   make(map[Key]*entry),
		visited: make(map[string]string),
	}

	m.dial = cfg.Dialer
	if m.dial == nil {
		m.dial = func(ctx context.Context, id identity.Identity) (Session, error) {
			return ftpx.Dial(ctx, id, cfg.FTP, logger)
		}
	}
	return m
}

// Acquire resolves the URL and returns a Lease on a live session for the
// calling owner, reusing a pooled one when it is still healthy. The
// caller must Release the lease when its operation is done, success or
// not.
func (m *Manager) Acquire(ctx context.Context, rawURL string) (*Lease, error) {
	id, err := m.ResolveURL(rawURL)
	if err != nil {
		return nil, err
	}
	if id.Scheme != "ftp" && id.Scheme != "ftps" {
		return nil, ErrUnsupportedScheme
	}

	key := keyFor(OwnerFromContext(ctx), id)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	m.enforceCapacityLocked()

	if e, ok := m.conns[key]; ok {
		if reused := m.revalidateLocked(e, now); reused {
			m.stats.Hits++
			return newLease(m, e, id), nil
		}
	}

	m.stats.Misses++
	sess, err := m.dial(ctx, id)
	if err != nil {
		return nil, &ConnectError{BaseURL: id.BaseURL(), Err: err}
	}
	sess.ResizeStatCache(m.cfg.StatCacheSize)

	e := &entry{
		key:         key,
		session:     sess,
		baseURL:     id.BaseURL(),
		createdAt:   now,
		lastUsedAt:  now,
		lastCheckAt: now,
	}
	m.conns[key] = e
	m.enforceCapacityLocked()

	m.logger.Debug("connection opened", "base_url", e.baseURL)
	return newLease(m, e, id), nil
}

// revalidateLocked decides whether an existing entry can be reused,
// evicting it if not. A NOOP is only sent when the last check is older
// than the health-check interval, which amortizes the round trip across
// rapid successive operations.
func (m *Manager) revalidateLocked(e *entry, now time.Time) bool {
	if e.session.Closed() {
		m.evictLocked(e.key, "session closed")
		return false
	}

	if now.Sub(e.lastCheckAt) > m.cfg.HealthCheckInterval {
		m.stats.HealthChecks++
		if err := e.session.NoOp(); err != nil {
			m.logger.Debug("keepalive failed, will reconnect",
				"base_url", e.baseURL,
				"error", err,
			)
			m.evictLocked(e.key, "keepalive failed")
			return false
		}
		e.lastCheckAt = now
	}

	e.lastUsedAt = now
	return true
}

// ResolveURL resolves a raw URL through the configured bookmark aliases.
func (m *Manager) ResolveURL(rawURL string) (identity.Identity, error) {
	var aliases map[string]string
	if m.cfg.Aliases != nil {
		aliases = m.cfg.Aliases()
	}
	return identity.Resolve(rawURL, aliases)
}

// Stats returns a snapshot of pool activity.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Open = len(m.conns)
	return s
}

// release reaps finished transfer sessions on the entry, if it is still
// pooled. Runs outside the pool lock: reaping closes child connections
// and must not stall unrelated acquires.
func (m *Manager) release(key Key) {
	m.mu.Lock()
	e, ok := m.conns[key]
	m.mu.Unlock()

	if ok {
		e.session.ReapFinished()
	}
}

// sweepLocked evicts every entry idle longer than the idle timeout. This
// bounds resource usage when a caller disappears without releasing.
func (m *Manager) sweepLocked(now time.Time) {
	var stale []Key
	for key, e := range m.conns {
		if now.Sub(e.lastUsedAt) > m.cfg.IdleTimeout {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		m.evictLocked(key, "idle timeout")
	}
}

// enforceCapacityLocked evicts oldest-by-last-use entries until the pool
// is within capacity.
func (m *Manager) enforceCapacityLocked() {
	for len(m.conns) > m.cfg.Capacity {
		var victim Key
		var oldest time.Time
		first := true
		for key, e := range m.conns {
			if first || e.lastUsedAt.Before(oldest) {
				victim = key
				oldest = e.lastUsedAt
				first = false
			}
		}
		m.evictLocked(victim, "capacity")
	}
}

// evictLocked removes an entry and closes its session, children first.
// Close errors are absorbed: eviction must always make forward progress.
func (m *Manager) evictLocked(key Key, reason string) {
	e, ok := m.conns[key]
	if !ok {
		return
	}
	delete(m.conns, key)
	m.stats.Evictions++

	if err := e.session.Close(); err != nil {
		m.logger.Warn("closing evicted connection",
			"base_url", e.baseURL,
			"reason", reason,
			"error", err,
		)
		return
	}
	m.logger.Debug("connection evicted", "base_url", e.baseURL, "reason", reason)
}
