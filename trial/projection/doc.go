// Package projection contains the engine that feeds committed events into
// read models, plus the durable checkpoint stores it relies on.
//
// The engine polls the event store's global feed per registered projection,
// converts storable events back into domain events, and applies them in
// per-aggregate order. Delivery is at-least-once: a sequence checkpoint per
// (projection, aggregate) makes redelivered events a logged no-op instead of
// a double-applied update.
package projection
