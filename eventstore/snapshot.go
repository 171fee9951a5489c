package eventstore

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidSnapshotJSON is returned when snapshot JSON data is malformed or invalid.
	ErrInvalidSnapshotJSON = errors.New("snapshot json is not valid")

	// ErrEmptySnapshotAggregateID is returned when an empty aggregate id is provided.
	ErrEmptySnapshotAggregateID = errors.New("snapshot aggregate id must not be empty")

	// ErrEmptyAggregateType is returned when an empty aggregate type is provided.
	ErrEmptyAggregateType = errors.New("snapshot aggregate type must not be empty")

	// ErrNoSnapshotFound is returned when no snapshot exists for the requested aggregate.
	ErrNoSnapshotFound = errors.New("no snapshot found")

	// ErrSavingSnapshotFailed is returned when the snapshot save operation fails.
	ErrSavingSnapshotFailed = errors.New("saving snapshot failed")

	// ErrLoadingSnapshotFailed is returned when the snapshot load operation fails.
	ErrLoadingSnapshotFailed = errors.New("loading snapshot failed")

	// ErrDeletingSnapshotFailed is returned when the snapshot delete operation fails.
	ErrDeletingSnapshotFailed = errors.New("deleting snapshot failed")
)

// Snapshot caches an aggregate's folded state at a given stream version so
// that replay can resume from SequenceNumber+1 instead of event 1.
//
// A snapshot is a shortcut, never a source of truth: the event log remains
// authoritative and a stale or deleted snapshot only costs a longer replay.
type Snapshot struct {
	AggregateID    string                // Identity of the snapshotted aggregate
	AggregateType  string                // Aggregate type tag (e.g. "Study")
	SequenceNumber StreamVersionUint     // Last event folded into Data
	Data           json.RawMessage       // Serialized aggregate state as JSON
	CreatedAt      time.Time             // When this snapshot was created/updated
}

// Validate ensures the snapshot has valid data for storage operations.
func (s Snapshot) Validate() error {
	if s.AggregateID == "" {
		return ErrEmptySnapshotAggregateID
	}

	if s.AggregateType == "" {
		return ErrEmptyAggregateType
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildSnapshot creates a new Snapshot with validation.
func BuildSnapshot(
	aggregateID string,
	aggregateType string,
	sequenceNumber StreamVersionUint,
	data json.RawMessage,
) (Snapshot, error) {
	snapshot := Snapshot{
		AggregateID:    aggregateID,
		AggregateType:  aggregateType,
		SequenceNumber: sequenceNumber,
		Data:           data,
		CreatedAt:      time.Now(),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
