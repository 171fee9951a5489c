package projection

import (
	"context"
	"sync"

	"github.com/clinforge/trialcore/eventstore"
)

// CheckpointStore persists projection progress.
//
// The position cursor drives the poll loop: it is the global position of the
// last event a projection has fully processed. The per-aggregate sequence is
// the idempotency guard: events at or below it were already applied and are
// skipped on redelivery.
type CheckpointStore interface {
	LoadPosition(ctx context.Context, projectionName string) (eventstore.GlobalPositionUint64, error)
	SavePosition(ctx context.Context, projectionName string, position eventstore.GlobalPositionUint64) error
	LastSequence(ctx context.Context, projectionName string, aggregateID string) (eventstore.StreamVersionUint, error)
	SaveSequence(ctx context.Context, projectionName string, aggregateID string, sequence eventstore.StreamVersionUint) error
}

// MemoryCheckpointStore is a CheckpointStore for tests and the simulation
// binary. Progress does not survive a restart.
type MemoryCheckpointStore struct {
	mu        sync.RWMutex
	positions map[string]eventstore.GlobalPositionUint64
	sequences map[string]eventstore.StreamVersionUint
}

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		positions: make(map[string]eventstore.GlobalPositionUint64),
		sequences: make(map[string]eventstore.StreamVersionUint),
	}
}

// LoadPosition returns the cursor for a projection, 0 when unknown.
func (s *MemoryCheckpointStore) LoadPosition(_ context.Context, projectionName string) (eventstore.GlobalPositionUint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.positions[projectionName], nil
}

// SavePosition stores the cursor for a projection.
func (s *MemoryCheckpointStore) SavePosition(_ context.Context, projectionName string, position eventstore.GlobalPositionUint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[projectionName] = position

	return nil
}

// LastSequence returns the last applied sequence for (projection, aggregate), 0 when unknown.
func (s *MemoryCheckpointStore) LastSequence(_ context.Context, projectionName string, aggregateID string) (eventstore.StreamVersionUint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sequences[projectionName+"|"+aggregateID], nil
}

// SaveSequence stores the last applied sequence for (projection, aggregate).
func (s *MemoryCheckpointStore) SaveSequence(_ context.Context, projectionName string, aggregateID string, sequence eventstore.StreamVersionUint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[projectionName+"|"+aggregateID] = sequence

	return nil
}
