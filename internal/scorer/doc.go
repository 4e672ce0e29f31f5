// Package scorer assigns each image a sensitivity score in [0,1].
//
// The score is a placeholder heuristic over pixel color statistics and
// aspect ratio plus a random jitter term. It is explicitly non-authoritative
// and makes no claim to detect anything reliably. The Scorer boundary takes
// a file path and returns a calibrated-looking probability so a real
// classifier can replace the heuristic without touching the pipeline.
package scorer
