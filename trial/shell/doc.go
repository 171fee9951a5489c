// Package shell contains the imperative glue between the pure domain core and
// the event store: serialization of domain events, command processing with
// optimistic-concurrency retry, the in-process event bus, and the command
// dispatcher.
//
// The core decides, the shell executes. Nothing in this package contains
// business rules; it reads streams, replays history through core decision
// functions, and appends the resulting events.
package shell
