package core

import (
	"time"

	"github.com/google/uuid"
)

// SiteStatusChangedEventType is the event type identifier.
const SiteStatusChangedEventType = "SiteStatusChanged"

// SiteStatusChanged represents a legal transition of a site's lifecycle
// status, including the PENDING to ACTIVE activation.
type SiteStatusChanged struct {
	EventType  EventTypeString
	SiteID     SiteIDString
	OldStatus  SiteStatus
	NewStatus  SiteStatus
	Reason     string
	ChangedBy  UserIDString
	OccurredAt OccurredAtTS
}

// BuildSiteStatusChanged creates a new SiteStatusChanged event.
func BuildSiteStatusChanged(
	siteID uuid.UUID,
	oldStatus SiteStatus,
	newStatus SiteStatus,
	reason string,
	changedBy UserIDString,
	occurredAt time.Time,
) SiteStatusChanged {

	return SiteStatusChanged{
		EventType:  SiteStatusChangedEventType,
		SiteID:     siteID.String(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
		ChangedBy:  changedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e SiteStatusChanged) IsEventType() string {
	return SiteStatusChangedEventType
}

// HasOccurredAt returns when this event occurred.
func (e SiteStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the site stream this event belongs to.
func (e SiteStatusChanged) AffectsAggregateID() string {
	return e.SiteID
}
