// Package services defines shared utilities consumed by the scan pipeline
// components.
//
// Key responsibilities:
//   - Context helpers that stamp scan run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration, per-file, and fatal categories.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
