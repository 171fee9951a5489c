package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/clinforge/trialcore/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating all events of one business flow.
type CorrelationID = string

// EventMetadata contains event tracking information.
//
// IssuedBy records who triggered the command: a user identifier for
// interactive commands, or "system" for events issued by coordinators.
type EventMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
	IssuedBy      string
}

// BuildEventMetadata creates EventMetadata from UUID values and the issuer.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID, issuedBy string) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
		IssuedBy:      issuedBy,
	}
}

// CommandMetadata creates the metadata for a fresh command: the command's
// message ID is its own causation ID and starts a new correlation.
func CommandMetadata(commandID uuid.UUID, issuedBy string) EventMetadata {
	return BuildEventMetadata(commandID, commandID, commandID, issuedBy)
}

// CausedBy derives metadata for a follow-up message: new message ID, caused by
// the given parent, same correlation, same issuer unless overridden.
func (m EventMetadata) CausedBy(parentMessageID MessageID) EventMetadata {
	return EventMetadata{
		MessageID:     uuid.New().String(),
		CausationID:   parentMessageID,
		CorrelationID: m.CorrelationID,
		IssuedBy:      m.IssuedBy,
	}
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
