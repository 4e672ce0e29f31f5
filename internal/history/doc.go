// Package history persists completed scan runs in SQLite.
//
// The Store manages the database connection, schema initialization, and
// retention. Each run row captures the request, stats, and an interrupted
// flag; per-file results hang off the run. Schema changes bump the version
// in schema.go; users clear the database to adopt the new schema.
package history
