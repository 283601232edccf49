// Package vfs maps file-manager directory operations onto pool-borrowed
// FTP sessions.
//
// Every operation acquires a lease for its URL, runs on the lease's
// session, and releases it on all exit paths, so finished transfer
// connections are reaped whether the operation succeeded or not.
// Successful navigations are recorded in the pool's visited registry.
package vfs
