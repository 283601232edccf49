// Package identity turns user-supplied FTP URLs into canonical connection
// identities.
//
// A raw URL is parsed into (scheme, host, port, user, password, path) with
// the usual FTP defaults (port 21, path "/"). Before parsing, the URL's
// base (everything except the path) is looked up in a bookmark alias table:
// if it matches, the alias's stored target replaces the server and
// credentials while the typed path is kept. Resolution is a single hop, so
// the same logical server always yields the same identity no matter which
// alias the caller typed.
package identity
