package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyVisitDefinedEventType is the event type identifier.
const StudyVisitDefinedEventType = "StudyVisitDefined"

// StudyVisitDefined represents a scheduled visit added to a study design.
// An empty ArmID means the visit applies to the whole design rather than
// to a single arm.
type StudyVisitDefined struct {
	EventType    EventTypeString
	DesignID     DesignIDString
	VisitID      string
	ArmID        string
	Name         string
	Timepoint    int
	WindowBefore int
	WindowAfter  int
	VisitType    string
	DefinedBy    UserIDString
	OccurredAt   OccurredAtTS
}

// BuildStudyVisitDefined creates a new StudyVisitDefined event. Pass uuid.Nil
// as armID for a design-wide visit.
func BuildStudyVisitDefined(
	designID uuid.UUID,
	visitID uuid.UUID,
	armID uuid.UUID,
	name string,
	timepoint int,
	windowBefore int,
	windowAfter int,
	visitType string,
	definedBy UserIDString,
	occurredAt time.Time,
) StudyVisitDefined {

	armIDString := ""
	if armID != uuid.Nil {
		armIDString = armID.String()
	}

	return StudyVisitDefined{
		EventType:    StudyVisitDefinedEventType,
		DesignID:     designID.String(),
		VisitID:      visitID.String(),
		ArmID:        armIDString,
		Name:         name,
		Timepoint:    timepoint,
		WindowBefore: windowBefore,
		WindowAfter:  windowAfter,
		VisitType:    visitType,
		DefinedBy:    definedBy,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyVisitDefined) IsEventType() string {
	return StudyVisitDefinedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyVisitDefined) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the design stream this event belongs to.
func (e StudyVisitDefined) AffectsAggregateID() string {
	return e.DesignID
}
