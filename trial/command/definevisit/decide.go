package definevisit

import (
	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for defining a visit in a study design.
//
// Business Rules:
//
//	GIVEN: An initialized study design
//	WHEN: DefineVisit command is received
//	THEN: StudyVisitDefined event is generated
//	ERROR: Design is not initialized, visit name empty, duplicate visit name
//	       within the same arm scope, unknown arm reference, or a negative
//	       visit window
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayStudyDesign(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Initialized {
		return core.ErrorDecision(core.NewValidationError(
			"design.initialized", "study design is not initialized")), nil
	}

	if command.Name == "" {
		return core.ErrorDecision(core.NewValidationError(
			"design.visit.name.required", "visit name must not be empty")), nil
	}

	armIDScope := ""
	if command.ArmID != uuid.Nil {
		armIDScope = command.ArmID.String()

		if !state.HasArmWithID(armIDScope) {
			return core.ErrorDecision(core.NewValidationError(
				"design.visit.arm.exists", "arm "+armIDScope+" does not exist in this design")), nil
		}
	}

	if state.HasVisitNamed(armIDScope, command.Name) {
		return core.ErrorDecision(core.NewValidationError(
			"design.visit.name.unique", "visit "+command.Name+" already exists in this scope")), nil
	}

	if command.WindowBefore < 0 || command.WindowAfter < 0 {
		return core.ErrorDecision(core.NewValidationError(
			"design.visit.window.nonnegative", "visit windows must not be negative")), nil
	}

	return core.SuccessDecision(core.BuildStudyVisitDefined(
		command.DesignID,
		command.VisitID,
		command.ArmID,
		command.Name,
		command.Timepoint,
		command.WindowBefore,
		command.WindowAfter,
		command.VisitType,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
