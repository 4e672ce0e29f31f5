// Package report accumulates per-file scan results and renders the scan
// artifacts: the plain-text summary, the JSON results array, and the
// console summary table.
package report
