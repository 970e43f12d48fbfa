// Package logtail reads the tail of storefront's log file.
//
// Read keeps a ring buffer of the last N lines, so memory is O(N) no
// matter how large the file is, and returns them oldest first:
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// Classify and Filter give the TUI and the logs command a coarse severity
// per line. The standard log package has no levels, so severity is read
// from wording ("failed", "superseded", ...).
package logtail
