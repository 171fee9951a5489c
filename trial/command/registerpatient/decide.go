package registerpatient

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic to determine whether a patient should be registered.
//
// Business Rules:
//
//	GIVEN: A patient stream for PatientID
//	WHEN: RegisterPatient command is received
//	THEN: PatientRegistered event is generated and the patient starts as REGISTERED
//	ERROR: Screening number empty, no contact info (phone or email required),
//	       or the patient is younger than 18 at registration time
//	IDEMPOTENCY: If the patient already exists, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayPatient(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Exists {
		return core.IdempotentDecision(), nil
	}

	if command.ScreeningNumber == "" {
		return core.ErrorDecision(core.NewValidationError(
			"patient.screeningnumber.required", "patient screening number must not be empty")), nil
	}

	if command.PhoneNumber == "" && command.Email == "" {
		return core.ErrorDecision(core.NewValidationError(
			"patient.contact.required", "patient needs a phone number or an email address")), nil
	}

	if ageAt(command.DateOfBirth, command.OccurredAt) < core.MinPatientAge {
		return core.ErrorDecision(core.NewValidationError(
			"patient.age.minimum", "patient must be at least 18 years old")), nil
	}

	return core.SuccessDecision(core.BuildPatientRegistered(
		command.PatientID,
		command.ScreeningNumber,
		command.DateOfBirth,
		command.PhoneNumber,
		command.Email,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}

// ageAt computes full years between birth and reference date.
func ageAt(dateOfBirth core.OccurredAtTS, reference core.OccurredAtTS) int {
	years := reference.Year() - dateOfBirth.Year()

	anniversary := dateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(reference) {
		years--
	}

	return years
}
