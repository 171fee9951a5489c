package addstudyarm

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for adding an arm to a study design.
//
// Business Rules:
//
//	GIVEN: An initialized study design
//	WHEN: AddStudyArm command is received
//	THEN: StudyArmAdded event is generated
//	ERROR: Design is not initialized, arm name empty, duplicate arm name,
//	       or target enrollment not positive
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
			"design.arm.name.required", "study arm name must not be empty")), nil
	}

	if state.HasArmNamed(command.Name) {
		return core.ErrorDecision(core.NewValidationError(
			"design.arm.name.unique", "study arm "+command.Name+" already exists")), nil
	}

	if command.TargetEnrollment <= 0 {
		return core.ErrorDecision(core.NewValidationError(
			"design.arm.targetenrollment.positive", "target enrollment must be positive")), nil
	}

	return core.SuccessDecision(core.BuildStudyArmAdded(
		command.DesignID,
		command.ArmID,
		command.Name,
		command.ArmType,
		command.TargetEnrollment,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
