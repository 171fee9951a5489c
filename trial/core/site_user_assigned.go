package core

import (
	"time"

	"github.com/google/uuid"
)

// SiteUserAssignedEventType is the event type identifier.
const SiteUserAssignedEventType = "SiteUserAssigned"

// SiteUserAssigned represents the assignment of a user in a given role to a
// site. The same (user, role) pair is assigned at most once.
type SiteUserAssigned struct {
	EventType  EventTypeString
	SiteID     SiteIDString
	UserID     UserIDString
	Role       string
	AssignedBy UserIDString
	OccurredAt OccurredAtTS
}

// BuildSiteUserAssigned creates a new SiteUserAssigned event.
func BuildSiteUserAssigned(
	siteID uuid.UUID,
	userID UserIDString,
	role string,
	assignedBy UserIDString,
	occurredAt time.Time,
) SiteUserAssigned {

	return SiteUserAssigned{
		EventType:  SiteUserAssignedEventType,
		SiteID:     siteID.String(),
		UserID:     userID,
		Role:       role,
		AssignedBy: assignedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e SiteUserAssigned) IsEventType() string {
	return SiteUserAssignedEventType
}

// HasOccurredAt returns when this event occurred.
func (e SiteUserAssigned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the site stream this event belongs to.
func (e SiteUserAssigned) AffectsAggregateID() string {
	return e.SiteID
}
