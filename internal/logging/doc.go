// Package logging constructs the slog loggers used across photoclean.
//
// It provides a human-oriented console handler, a JSON handler with
// normalized keys, attribute helper aliases, and context-derived fields so
// every log line carries the scan run ID and pipeline stage. The on-disk
// photoclean.log sink rotates via lumberjack.
package logging
