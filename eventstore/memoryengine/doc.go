// Package memoryengine provides an in-memory event store engine with the same
// contract as the Postgres engine: per-aggregate streams with gapless sequence
// numbers, conditional appends on an expected stream version, a store-wide
// global position feeding projections, and one snapshot per aggregate.
//
// It exists for tests, simulations, and demos. Everything lives behind one
// mutex, appends are atomic, and reads return copies so callers can never
// mutate stored history.
package memoryengine
