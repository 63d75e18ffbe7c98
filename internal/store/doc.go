// Package store is the durable record store for telemetry readings.
//
// It wraps a single SQLite database in WAL mode. Readings are keyed by a
// monotonically increasing id assigned on insertion; a NULL is_anomaly
// column marks a reading as pending. Outcome updates are applied as a
// single transaction and are guarded so an already-scored reading is never
// rewritten.
package store
