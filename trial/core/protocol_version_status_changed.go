package core

import (
	"time"

	"github.com/google/uuid"
)

// ProtocolVersionStatusChangedEventType is the event type identifier.
const ProtocolVersionStatusChangedEventType = "ProtocolVersionStatusChanged"

// ProtocolVersionStatusChanged represents a legal transition of a protocol
// version's lifecycle status, covering submission, approval, activation, and
// supersession.
type ProtocolVersionStatusChanged struct {
	EventType  EventTypeString
	VersionID  ProtocolVersionIDString
	OldStatus  ProtocolVersionStatus
	NewStatus  ProtocolVersionStatus
	Reason     string
	ChangedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildProtocolVersionStatusChanged creates a new ProtocolVersionStatusChanged event.
func BuildProtocolVersionStatusChanged(
	versionID uuid.UUID,
	oldStatus ProtocolVersionStatus,
	newStatus ProtocolVersionStatus,
	reason string,
	changedBy UserIDString,
	occurredAt time.Time,
) ProtocolVersionStatusChanged {

	return ProtocolVersionStatusChanged{
		EventType:  ProtocolVersionStatusChangedEventType,
		VersionID:  versionID.String(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
		ChangedBy:  changedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ProtocolVersionStatusChanged) IsEventType() string {
	return ProtocolVersionStatusChangedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ProtocolVersionStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the protocol version stream this event belongs to.
func (e ProtocolVersionStatusChanged) AffectsAggregateID() string {
	return e.VersionID
}
