package core

import (
	"time"

	"github.com/google/uuid"
)

// SiteRegisteredEventType is the event type identifier.
const SiteRegisteredEventType = "SiteRegistered"

// SiteRegistered represents the registration of a clinical site for a study,
// starting in PENDING status. It is always the first event of a site stream.
type SiteRegistered struct {
	EventType    EventTypeString
	SiteID       SiteIDString
	StudyID      StudyIDString
	Name         string
	SiteNumber   string
	RegisteredBy UserIDString
	OccurredAt   OccurredAtTS
}

// BuildSiteRegistered creates a new SiteRegistered event.
func BuildSiteRegistered(
	siteID uuid.UUID,
	studyID uuid.UUID,
	name string,
	siteNumber string,
	registeredBy UserIDString,
	occurredAt time.Time,
) SiteRegistered {

	return SiteRegistered{
		EventType:    SiteRegisteredEventType,
		SiteID:       siteID.String(),
		StudyID:      studyID.String(),
		Name:         name,
		SiteNumber:   siteNumber,
		RegisteredBy: registeredBy,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e SiteRegistered) IsEventType() string {
	return SiteRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e SiteRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the site stream this event belongs to.
func (e SiteRegistered) AffectsAggregateID() string {
	return e.SiteID
}
