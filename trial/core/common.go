package core

import (
	"time"
)

// Instead of implementing full value objects, alias types keep the event
// payloads flat and serialization-friendly.

// EventTypeString identifies a domain event type.
type EventTypeString = string

// StudyIDString represents a study aggregate identifier.
type StudyIDString = string

// PatientIDString represents a patient aggregate identifier.
type PatientIDString = string

// SiteIDString represents a site aggregate identifier.
type SiteIDString = string

// ProtocolVersionIDString represents a protocol version aggregate identifier.
type ProtocolVersionIDString = string

// DocumentIDString represents a study document aggregate identifier.
type DocumentIDString = string

// DesignIDString represents a study design aggregate identifier.
type DesignIDString = string

// UserIDString identifies the user (or system actor) who issued a command.
type UserIDString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// MinReasonLength is the minimum length of a human-supplied reason for
// status changes that require one (suspension, termination, withdrawal).
const MinReasonLength = 3

// MinPatientAge is the minimum age in full years for patient registration.
const MinPatientAge = 18
