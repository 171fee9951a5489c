package core

import (
	"time"

	"github.com/google/uuid"
)

// ProtocolVersionCreatedEventType is the event type identifier.
const ProtocolVersionCreatedEventType = "ProtocolVersionCreated"

// ProtocolVersionCreated represents the creation of a protocol version in
// DRAFT status. It is always the first event of a protocol version stream.
type ProtocolVersionCreated struct {
	EventType     EventTypeString
	VersionID     ProtocolVersionIDString
	StudyID       StudyIDString
	VersionNumber string
	Description   string
	CreatedBy     UserIDString
	OccurredAt    OccurredAtTS
}

// BuildProtocolVersionCreated creates a new ProtocolVersionCreated event.
func BuildProtocolVersionCreated(
	versionID uuid.UUID,
	studyID uuid.UUID,
	versionNumber string,
	description string,
	createdBy UserIDString,
	occurredAt time.Time,
) ProtocolVersionCreated {

	return ProtocolVersionCreated{
		EventType:     ProtocolVersionCreatedEventType,
		VersionID:     versionID.String(),
		StudyID:       studyID.String(),
		VersionNumber: versionNumber,
		Description:   description,
		CreatedBy:     createdBy,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ProtocolVersionCreated) IsEventType() string {
	return ProtocolVersionCreatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ProtocolVersionCreated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the protocol version stream this event belongs to.
func (e ProtocolVersionCreated) AffectsAggregateID() string {
	return e.VersionID
}
