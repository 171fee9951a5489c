package core

import (
	"time"

	"github.com/google/uuid"
)

// PatientEnrolledEventType is the event type identifier.
const PatientEnrolledEventType = "PatientEnrolled"

// PatientEnrolled represents the enrollment of a patient into a study at a
// site. A patient can hold at most one enrollment per study.
type PatientEnrolled struct {
	EventType        EventTypeString
	PatientID        PatientIDString
	StudyID          StudyIDString
	SiteID           SiteIDString
	EnrollmentNumber string
	EnrolledBy       UserIDString
	OccurredAt       OccurredAtTS
}

// BuildPatientEnrolled creates a new PatientEnrolled event.
func BuildPatientEnrolled(
	patientID uuid.UUID,
	studyID uuid.UUID,
	siteID uuid.UUID,
	enrollmentNumber string,
	enrolledBy UserIDString,
	occurredAt time.Time,
) PatientEnrolled {

	return PatientEnrolled{
		EventType:        PatientEnrolledEventType,
		PatientID:        patientID.String(),
		StudyID:          studyID.String(),
		SiteID:           siteID.String(),
		EnrollmentNumber: enrollmentNumber,
		EnrolledBy:       enrolledBy,
		OccurredAt:       ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e PatientEnrolled) IsEventType() string {
	return PatientEnrolledEventType
}

// HasOccurredAt returns when this event occurred.
func (e PatientEnrolled) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the patient stream this event belongs to.
func (e PatientEnrolled) AffectsAggregateID() string {
	return e.PatientID
}
