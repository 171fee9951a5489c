package core

import (
	"time"

	"github.com/google/uuid"
)

// PatientRegisteredEventType is the event type identifier.
const PatientRegisteredEventType = "PatientRegistered"

// PatientRegistered represents the registration of a patient in REGISTERED
// status. It is always the first event of a patient stream.
type PatientRegistered struct {
	EventType       EventTypeString
	PatientID       PatientIDString
	ScreeningNumber string
	DateOfBirth     time.Time
	PhoneNumber     string
	Email           string
	RegisteredBy    UserIDString
	OccurredAt      OccurredAtTS
}

// BuildPatientRegistered creates a new PatientRegistered event.
func BuildPatientRegistered(
	patientID uuid.UUID,
	screeningNumber string,
	dateOfBirth time.Time,
	phoneNumber string,
	email string,
	registeredBy UserIDString,
	occurredAt time.Time,
) PatientRegistered {

	return PatientRegistered{
		EventType:       PatientRegisteredEventType,
		PatientID:       patientID.String(),
		ScreeningNumber: screeningNumber,
		DateOfBirth:     dateOfBirth.UTC(),
		PhoneNumber:     phoneNumber,
		Email:           email,
		RegisteredBy:    registeredBy,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e PatientRegistered) IsEventType() string {
	return PatientRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e PatientRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the patient stream this event belongs to.
func (e PatientRegistered) AffectsAggregateID() string {
	return e.PatientID
}
