// Package store is the SQLite-backed persistence gateway.
//
// It holds two kinds of rows, both keyed under an application namespace
// string: reference documents (exemplars that ground reviewer stages) and
// passed review records (write-once snapshots of approved runs, embedding
// the document, every verdict, and the aggregate summary).
//
// The database lives in a single local file via the pure-Go
// modernc.org/sqlite driver. Permission problems (read-only database file)
// are mapped to ErrPermissionDenied so the CLI can show a specific message
// rather than a generic failure.
package store
