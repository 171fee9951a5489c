package activatesite

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ActivateSite"

// Command represents the intent to activate a pending or suspended site.
type Command struct {
	SiteID     uuid.UUID
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	siteID uuid.UUID,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		SiteID:     siteID,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
