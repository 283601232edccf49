// Package pool keeps live FTP/FTPS sessions alive between filesystem
// operations so that small, frequent metadata calls do not pay the login
// handshake every time.
//
// Sessions are keyed by (caller token, host, port, user, password): two
// concurrent callers never share a control connection, while one caller's
// repeated operations against the same server reuse one. Reuse is
// validated with a throttled NOOP; stale or excess sessions are evicted
// under a single lock at the start of every acquire. The pool also keeps
// a per-server "last visited URL" registry for navigation UIs.
package pool
