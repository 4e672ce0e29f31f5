// Package organizer routes scored photos into the clean and sensitive
// destination folders under the output root.
package organizer
