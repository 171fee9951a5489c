// Package eventstore defines the storage-agnostic building blocks for the
// clinical-trial event sourcing core: the StorableEvent DTO used to append
// and read per-aggregate event streams, stream version handling for
// optimistic concurrency, snapshots, and the observability interfaces
// implemented by the engine packages.
//
// Engines live in the subpackages postgresengine, sqliteengine and
// memoryengine; all of them provide the same contract:
//
//	ReadStream(ctx, aggregateID)                      -> events, currentVersion
//	Append(ctx, aggregateID, expectedVersion, events) -> newVersion | ErrConcurrencyConflict
//	ReadBatch(ctx, afterGlobalPosition, limit)        -> events (projection feed)
//
// Events are immutable once appended: no engine exposes an update or delete
// operation, which is what makes the log usable as a regulatory audit trail.
package eventstore
