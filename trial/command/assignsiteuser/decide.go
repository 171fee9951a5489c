package assignsiteuser

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for assigning a user to a site.
//
// Business Rules:
//
//	GIVEN: An existing site
//	WHEN: AssignSiteUser command is received
//	THEN: SiteUserAssigned event is generated
//	ERROR: Site does not exist, user id or role empty, or the site does not
//	       accept assignments (inactive or suspended)
//	IDEMPOTENCY: If the same (user, role) pair is already assigned, no event
//	             is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplaySite(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"site.exists", "site does not exist")), nil
	}

	if command.UserID == "" || command.Role == "" {
		return core.ErrorDecision(core.NewValidationError(
			"site.assignment.required", "site assignment needs a user id and a role")), nil
	}

	if state.HasAssignment(command.UserID, command.Role) {
		return core.IdempotentDecision(), nil
	}

	if !state.Status.AcceptsUserAssignments() {
		return core.ErrorDecision(core.NewValidationError(
			"site.assignment.status",
			"cannot assign users to a site in status "+state.Status.String())), nil
	}

	return core.SuccessDecision(core.BuildSiteUserAssigned(
		command.SiteID,
		command.UserID,
		command.Role,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
