// Package core contains the pure domain layer of the clinical trial engine:
// domain events, aggregate states with their replay functions, status machines,
// and the Decide result type.
//
// Nothing in this package performs I/O, reads clocks beyond the timestamps it
// is handed, or depends on infrastructure. Replaying the same history always
// yields the same state, and deciding on the same state and command always
// yields the same result. Everything impure lives in the shell package.
package core
