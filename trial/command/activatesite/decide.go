package activatesite

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for activating a site.
//
// Business Rules:
//
//	GIVEN: An existing site
//	WHEN: ActivateSite command is received
//	THEN: SiteStatusChanged event moving the site to ACTIVE
//	ERROR: Site does not exist, or ACTIVE is not reachable from the current
//	       status (inactive sites stay retired)
//	IDEMPOTENCY: If the site is already ACTIVE, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplaySite(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"site.exists", "site does not exist")), nil
	}

	if state.Status == core.SiteStatusActive {
		return core.IdempotentDecision(), nil
	}

	if !state.Status.CanTransitionTo(core.SiteStatusActive) {
		return core.ErrorDecision(core.NewTransitionError(
			"site.status.transition",
			"cannot activate a site in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildSiteStatusChanged(
		command.SiteID,
		state.Status,
		core.SiteStatusActive,
		"",
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
