// Package store provides SQL storage for events and their slots.
//
// The store binds the event model to two tables:
//   - events: one row per event, every scalar column written through a codec
//   - event_slots: the nested slot collection, keyed by slot id and ordered
//     by position
//
// Events exposes store, update, cascade update and retrieve callbacks as a
// dispatch.OperationGroup, so saves go through the dispatcher and run on a
// caller supplied session.
//
// # Column Formats
//
//   - Local dates and date-times: TIMESTAMP at UTC
//   - Local times: "HH:MM:SS[.fff]" text
//   - Zoned date-times: ISO offset text with a bracketed region id, NULL when unset
//   - Durations: ISO-8601 "PnDTnHnMnS" text
//   - UUIDs: canonical text; lists comma separated
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Postgres and MySQL use the schema file for their dialect; placeholders are
// rebound per dialect.
package store
