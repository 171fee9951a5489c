// Package adapters provides database abstraction adapters for the Postgres
// event store engine.
//
// It wraps pgxpool.Pool, sql.DB, and sqlx.DB behind the common DBAdapter
// interface so the engine builds its SQL once and runs it against whichever
// client the application already uses.
package adapters
