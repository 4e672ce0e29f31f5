// Package scanner orchestrates one scan: walk the input tree, score each
// image, route it into the clean or sensitive folder, and write the report
// artifacts. A single worker processes files sequentially; cancellation is
// observed at each per-file boundary.
package scanner
