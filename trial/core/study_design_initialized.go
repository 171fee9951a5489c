package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyDesignInitializedEventType is the event type identifier.
const StudyDesignInitializedEventType = "StudyDesignInitialized"

// StudyDesignInitialized represents the one-time initialization of the design
// companion of a study. It is always the first event of a design stream, and
// a design stream accepts it exactly once.
type StudyDesignInitialized struct {
	EventType  EventTypeString
	DesignID   DesignIDString
	StudyID    StudyIDString
	StudyName  string
	CreatedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildStudyDesignInitialized creates a new StudyDesignInitialized event.
func BuildStudyDesignInitialized(
	designID uuid.UUID,
	studyID uuid.UUID,
	studyName string,
	createdBy UserIDString,
	occurredAt time.Time,
) StudyDesignInitialized {

	return StudyDesignInitialized{
		EventType:  StudyDesignInitializedEventType,
		DesignID:   designID.String(),
		StudyID:    studyID.String(),
		StudyName:  studyName,
		CreatedBy:  createdBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyDesignInitialized) IsEventType() string {
	return StudyDesignInitializedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyDesignInitialized) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the design stream this event belongs to.
func (e StudyDesignInitialized) AffectsAggregateID() string {
	return e.DesignID
}
