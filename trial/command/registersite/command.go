package registersite

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "RegisterSite"

// Command represents the intent to register a new trial site for a study.
type Command struct {
	SiteID     uuid.UUID
	StudyID    uuid.UUID
	Name       string
	SiteNumber string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	siteID uuid.UUID,
	studyID uuid.UUID,
	name string,
	siteNumber string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		SiteID:     siteID,
		StudyID:    studyID,
		Name:       name,
		SiteNumber: siteNumber,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
