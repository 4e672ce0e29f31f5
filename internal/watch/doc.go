// Package watch keeps a directory under continuous scanning. It listens
// for filesystem events on the input root, waits for a settle window after
// the last change, and triggers a rescan. Scans never overlap.
package watch
