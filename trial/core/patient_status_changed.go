package core

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatusChangedEventType is the event type identifier.
const PatientStatusChangedEventType = "PatientStatusChanged"

// PatientStatusChanged represents a legal transition of a patient's lifecycle
// status. Withdrawal always carries the documented reason.
type PatientStatusChanged struct {
	EventType  EventTypeString
	PatientID  PatientIDString
	OldStatus  PatientStatus
	NewStatus  PatientStatus
	Reason     string
	ChangedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildPatientStatusChanged creates a new PatientStatusChanged event.
func BuildPatientStatusChanged(
	patientID uuid.UUID,
	oldStatus PatientStatus,
	newStatus PatientStatus,
	reason string,
	changedBy UserIDString,
	occurredAt time.Time,
) PatientStatusChanged {

	return PatientStatusChanged{
		EventType:  PatientStatusChangedEventType,
		PatientID:  patientID.String(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
		ChangedBy:  changedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e PatientStatusChanged) IsEventType() string {
	return PatientStatusChangedEventType
}

// HasOccurredAt returns when this event occurred.
func (e PatientStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the patient stream this event belongs to.
func (e PatientStatusChanged) AffectsAggregateID() string {
	return e.PatientID
}
