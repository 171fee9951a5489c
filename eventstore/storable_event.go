package eventstore

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrEmptyAggregateID = errors.New("aggregate id must not be empty")
var ErrEmptyEventType = errors.New("event type must not be empty")
var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrInvalidMetadataJSON = errors.New("metadata json is not valid")

// StorableEvents is an alias type for a slice of StorableEvent.
type StorableEvents = []StorableEvent

// StorableEvent is a DTO (data transfer object) used by the engines to append
// events onto an aggregate's stream and to read them back.
//
// It is built on scalars to be completely agnostic of the implementation of
// Domain Events in the client code.
//
// SequenceNumber and GlobalPosition are assigned by the engine: they are
// populated on events read back from a store and ignored on append input,
// where the engine derives consecutive sequence numbers from the expected
// stream version.
//
// While its properties are exported, it should only be constructed with the
// supplied factory methods:
//   - BuildStorableEvent
//   - BuildStorableEventWithEmptyMetadata
type StorableEvent struct {
	AggregateID    string
	SequenceNumber StreamVersionUint
	EventType      string
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
	GlobalPosition GlobalPositionUint64
}

// BuildStorableEvent is a factory method for StorableEvent.
//
// It populates the StorableEvent with the given scalar input.
// Returns an error if aggregateID or eventType are empty,
// or if payloadJSON or metadataJSON are not valid JSON.
func BuildStorableEvent(
	aggregateID string,
	eventType string,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (StorableEvent, error) {

	if aggregateID == "" {
		return StorableEvent{}, ErrEmptyAggregateID
	}

	if eventType == "" {
		return StorableEvent{}, ErrEmptyEventType
	}

	if !json.Valid(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !json.Valid(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		AggregateID:  aggregateID,
		EventType:    eventType,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is a factory method for StorableEvent.
//
// It populates the StorableEvent with the given scalar input and creates valid
// empty JSON for MetadataJSON. Returns an error if payloadJSON is not valid JSON.
func BuildStorableEventWithEmptyMetadata(
	aggregateID string,
	eventType string,
	occurredAt time.Time,
	payloadJSON []byte,
) (StorableEvent, error) {

	return BuildStorableEvent(aggregateID, eventType, occurredAt, payloadJSON, []byte("{}"))
}
