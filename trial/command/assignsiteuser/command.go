package assignsiteuser

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "AssignSiteUser"

// Command represents the intent to assign a user in a role to a site.
type Command struct {
	SiteID     uuid.UUID
	UserID     core.UserIDString
	Role       string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	siteID uuid.UUID,
	userID core.UserIDString,
	role string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		SiteID:     siteID,
		UserID:     userID,
		Role:       role,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
