// Package sqliteengine provides a SQLite-backed event store engine with the
// same contract as the Postgres engine.
//
// It targets single-node deployments, local development, and edge setups where
// running Postgres is not worth it: one file on disk, the pure-Go driver from
// modernc.org/sqlite, and no server process. The append stays conditional on
// the expected stream version through the same CTE technique, which is safe
// under SQLite's single-writer model.
package sqliteengine
