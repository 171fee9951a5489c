package activateprotocolversion

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ActivateProtocolVersion"

// Command represents the intent to activate an approved protocol version.
//
// PreviousActiveVersionID names the version that is currently ACTIVE, if any.
// Activation marks it SUPERSEDED so exactly one version is active per study.
type Command struct {
	VersionID               uuid.UUID
	PreviousActiveVersionID uuid.UUID
	IssuedBy                core.UserIDString
	OccurredAt              core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
// Pass uuid.Nil as previousActiveVersionID when no version is active yet.
func BuildCommand(
	versionID uuid.UUID,
	previousActiveVersionID uuid.UUID,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		VersionID:               versionID,
		PreviousActiveVersionID: previousActiveVersionID,
		IssuedBy:                issuedBy,
		OccurredAt:              core.ToOccurredAt(occurredAt),
	}
}
