package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyStatusChangedEventType is the event type identifier.
const StudyStatusChangedEventType = "StudyStatusChanged"

// StudyStatusChanged represents a legal transition of a study's lifecycle
// status. Reason is set when the target status requires one.
type StudyStatusChanged struct {
	EventType  EventTypeString
	StudyID    StudyIDString
	OldStatus  StudyStatus
	NewStatus  StudyStatus
	Reason     string
	ChangedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildStudyStatusChanged creates a new StudyStatusChanged event.
func BuildStudyStatusChanged(
	studyID uuid.UUID,
	oldStatus StudyStatus,
	newStatus StudyStatus,
	reason string,
	changedBy UserIDString,
	occurredAt time.Time,
) StudyStatusChanged {

	return StudyStatusChanged{
		EventType:  StudyStatusChangedEventType,
		StudyID:    studyID.String(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
		ChangedBy:  changedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyStatusChanged) IsEventType() string {
	return StudyStatusChangedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the study stream this event belongs to.
func (e StudyStatusChanged) AffectsAggregateID() string {
	return e.StudyID
}
