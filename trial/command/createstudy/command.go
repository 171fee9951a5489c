package createstudy

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "CreateStudy"

// Command represents the intent to create a new study.
// It encapsulates all the necessary information required to execute the create study use case.
type Command struct {
	StudyID        uuid.UUID
	Name           string
	Sponsor        string
	ProtocolNumber string
	Phase          string
	IssuedBy       core.UserIDString
	OccurredAt     core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	studyID uuid.UUID,
	name string,
	sponsor string,
	protocolNumber string,
	phase string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		StudyID:        studyID,
		Name:           name,
		Sponsor:        sponsor,
		ProtocolNumber: protocolNumber,
		Phase:          phase,
		IssuedBy:       issuedBy,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
