// Package bookmark persists FTP bookmark aliases and the connection
// history as small JSON files.
//
// A bookmark maps an alias base URL (no path) to a target base URL, a
// default path, and an optional web mirror URL. The on-disk shape is an
// array per alias ("ftp://alias": ["ftp://real.host:21", "/pub"]) kept
// compatible with existing bookmark files.
//
// The pool core never touches these files; it is handed an alias snapshot
// by whoever wires the application together.
package bookmark
