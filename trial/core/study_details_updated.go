package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyDetailsUpdatedEventType is the event type identifier.
const StudyDetailsUpdatedEventType = "StudyDetailsUpdated"

// StudyDetailsUpdated represents a partial update of a study's descriptive
// fields. Nil fields were not part of the update and keep their value.
type StudyDetailsUpdated struct {
	EventType  EventTypeString
	StudyID    StudyIDString
	Name       *string
	Sponsor    *string
	Phase      *string
	UpdatedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildStudyDetailsUpdated creates a new StudyDetailsUpdated event.
// Pass nil for fields that are not being changed.
func BuildStudyDetailsUpdated(
	studyID uuid.UUID,
	name *string,
	sponsor *string,
	phase *string,
	updatedBy UserIDString,
	occurredAt time.Time,
) StudyDetailsUpdated {

	return StudyDetailsUpdated{
		EventType:  StudyDetailsUpdatedEventType,
		StudyID:    studyID.String(),
		Name:       name,
		Sponsor:    sponsor,
		Phase:      phase,
		UpdatedBy:  updatedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyDetailsUpdated) IsEventType() string {
	return StudyDetailsUpdatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyDetailsUpdated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the study stream this event belongs to.
func (e StudyDetailsUpdated) AffectsAggregateID() string {
	return e.StudyID
}
