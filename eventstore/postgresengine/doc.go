// Package postgresengine provides the Postgres-backed event store engine for
// per-aggregate event streams.
//
// The engine keeps one append-only table of events with a unique constraint on
// (aggregate_id, sequence_number). Optimistic concurrency is enforced inside a
// single conditional INSERT: a CTE reads the stream's current version and the
// insert only happens when it still equals the caller's expected version, so
// there is no locking table and no read-modify-write window.
//
// Constructors accept a pgxpool.Pool, a sql.DB or a sqlx.DB; the SQL itself is
// built with goqu and shared across all three through small internal adapters.
package postgresengine
