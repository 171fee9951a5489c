package core

import (
	"time"

	"github.com/google/uuid"
)

// StudyCreatedEventType is the event type identifier.
const StudyCreatedEventType = "StudyCreated"

// StudyCreated represents the creation of a new study in PLANNING status.
// It is always the first event of a study stream.
type StudyCreated struct {
	EventType      EventTypeString
	StudyID        StudyIDString
	Name           string
	Sponsor        string
	ProtocolNumber string
	Phase          string
	CreatedBy      UserIDString
	OccurredAt     OccurredAtTS
}

// BuildStudyCreated creates a new StudyCreated event.
func BuildStudyCreated(
	studyID uuid.UUID,
	name string,
	sponsor string,
	protocolNumber string,
	phase string,
	createdBy UserIDString,
	occurredAt time.Time,
) StudyCreated {

	return StudyCreated{
		EventType:      StudyCreatedEventType,
		StudyID:        studyID.String(),
		Name:           name,
		Sponsor:        sponsor,
		ProtocolNumber: protocolNumber,
		Phase:          phase,
		CreatedBy:      createdBy,
		OccurredAt:     ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e StudyCreated) IsEventType() string {
	return StudyCreatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e StudyCreated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the study stream this event belongs to.
func (e StudyCreated) AffectsAggregateID() string {
	return e.StudyID
}
