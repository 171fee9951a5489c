package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyArmAddedEventType is the event type identifier.
const StudyArmAddedEventType = "StudyArmAdded"

// StudyArmAdded represents the addition of a treatment arm to a study design.
type StudyArmAdded struct {
	EventType        EventTypeString
	DesignID         DesignIDString
	ArmID            string
	Name             string
	ArmType          string
	TargetEnrollment int
	AddedBy          UserIDString
	OccurredAt       OccurredAtTS
}

// BuildStudyArmAdded creates a new StudyArmAdded event.
func BuildStudyArmAdded(
	designID uuid.UUID,
	armID uuid.UUID,
	name string,
	armType string,
	targetEnrollment int,
	addedBy UserIDString,
	occurredAt time.Time,
) StudyArmAdded {

	return StudyArmAdded{
		EventType:        StudyArmAddedEventType,
		DesignID:         designID.String(),
		ArmID:            armID.String(),
		Name:             name,
		ArmType:          armType,
		TargetEnrollment: targetEnrollment,
		AddedBy:          addedBy,
		OccurredAt:       ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyArmAdded) IsEventType() string {
	return StudyArmAddedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyArmAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the design stream this event belongs to.
func (e StudyArmAdded) AffectsAggregateID() string {
	return e.DesignID
}
