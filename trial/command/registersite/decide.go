package registersite

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic to determine whether a site should be registered.
//
// Business Rules:
//
//	GIVEN: A site stream for SiteID
//	WHEN: RegisterSite command is received
//	THEN: SiteRegistered event is generated and the site starts as PENDING
//	ERROR: Site name or site number empty
//	IDEMPOTENCY: If the site already exists, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplaySite(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Exists {
		return core.IdempotentDecision(), nil
	}

	if command.Name == "" {
		return core.ErrorDecision(core.NewValidationError(
			"site.name.required", "site name must not be empty")), nil
	}

	if command.SiteNumber == "" {
		return core.ErrorDecision(core.NewValidationError(
			"site.sitenumber.required", "site number must not be empty")), nil
	}

	return core.SuccessDecision(core.BuildSiteRegistered(
		command.SiteID,
		command.StudyID,
		command.Name,
		command.SiteNumber,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
