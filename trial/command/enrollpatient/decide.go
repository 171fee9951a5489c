package enrollpatient

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for enrolling a patient into a study.
//
// Business Rules:
//
//	GIVEN: An existing patient
//	WHEN: EnrollPatient command is received
//	THEN: PatientEnrolled event is generated and the patient becomes ENROLLED
//	ERROR: Patient does not exist, enrollment number empty, the patient is
//	       already enrolled in this study, or the patient's status is neither
//	       REGISTERED nor SCREENING
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayPatient(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"patient.exists", "patient does not exist")), nil
	}

	if state.IsEnrolledIn(command.StudyID.String()) {
		return core.ErrorDecision(core.NewValidationError(
			"patient.enrollment.duplicate", "patient is already enrolled in this study")), nil
	}

	if command.EnrollmentNumber == "" {
		return core.ErrorDecision(core.NewValidationError(
			"patient.enrollmentnumber.required", "patient enrollment number must not be empty")), nil
	}

	if state.Status != core.PatientStatusRegistered && state.Status != core.PatientStatusScreening {
		return core.ErrorDecision(core.NewTransitionError(
			"patient.enroll.status",
			"cannot enroll a patient in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildPatientEnrolled(
		command.PatientID,
		command.StudyID,
		command.SiteID,
		command.EnrollmentNumber,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
