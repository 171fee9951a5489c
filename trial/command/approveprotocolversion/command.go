package approveprotocolversion

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ApproveProtocolVersion"

// Command represents the intent to approve a submitted protocol version.
type Command struct {
	VersionID  uuid.UUID
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	versionID uuid.UUID,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		VersionID:  versionID,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
