// Package walker enumerates candidate image files under a scan root.
package walker
