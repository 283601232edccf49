// Package ftpx wraps the jlaffaye/ftp client with the session model the
// connection pool needs.
//
// A Host owns one long-lived control connection. File transfers never run
// on it: OpenRead and OpenWrite each spawn a child Host with its own
// control and data connection, so directory operations stay responsive
// while transfers are in flight. Finished children are reaped on release.
//
// Listing a directory fills a bounded per-host stat cache, so the stat
// calls a file-manager issues right after a listing are answered without
// another round trip.
package ftpx
