package core

// PatientState is the state of a patient folded from its event stream.
// The zero value represents a patient that does not exist yet.
type PatientState struct {
	Exists          bool
	PatientID       PatientIDString
	ScreeningNumber string
	Status          PatientStatus
	EnrolledStudies map[StudyIDString]bool
}

// IsEnrolledIn reports whether the patient already holds an enrollment in the study.
func (s PatientState) IsEnrolledIn(studyID StudyIDString) bool {
	return s.EnrolledStudies[studyID]
}

type applyPatientFunc func(PatientState, DomainEvent) (PatientState, error)

var patientApplyTable = map[EventTypeString]applyPatientFunc{
	PatientRegisteredEventType:    applyPatientRegistered,
	PatientEnrolledEventType:      applyPatientEnrolled,
	PatientStatusChangedEventType: applyPatientStatusChanged,
}

// ReplayPatient folds a patient's full history into its current state.
func ReplayPatient(history DomainEvents) (PatientState, error) {
	return FoldPatient(PatientState{}, history)
}

// FoldPatient folds further history onto an already replayed state. It is
// the incremental variant of ReplayPatient used when replay resumes from a
// snapshot.
func FoldPatient(state PatientState, history DomainEvents) (PatientState, error) {
	for i, event := range history {
		apply, known := patientApplyTable[event.IsEventType()]
		if !known {
			return PatientState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in patient stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return PatientState{}, err
		}

		state = next
	}

	return state, nil
}

func applyPatientRegistered(state PatientState, event DomainEvent) (PatientState, error) {
	e, ok := event.(PatientRegistered)
	if !ok {
		return PatientState{}, payloadMismatch(event)
	}

	state.Exists = true
	state.PatientID = e.PatientID
	state.ScreeningNumber = e.ScreeningNumber
	state.Status = PatientStatusRegistered
	state.EnrolledStudies = make(map[StudyIDString]bool)

	return state, nil
}

func applyPatientEnrolled(state PatientState, event DomainEvent) (PatientState, error) {
	e, ok := event.(PatientEnrolled)
	if !ok {
		return PatientState{}, payloadMismatch(event)
	}

	// Enrollment advances the lifecycle directly, the enroll rule governs
	// which source statuses permit it.
	state.Status = PatientStatusEnrolled

	if state.EnrolledStudies == nil {
		state.EnrolledStudies = make(map[StudyIDString]bool)
	}
	state.EnrolledStudies[e.StudyID] = true

	return state, nil
}

func applyPatientStatusChanged(state PatientState, event DomainEvent) (PatientState, error) {
	e, ok := event.(PatientStatusChanged)
	if !ok {
		return PatientState{}, payloadMismatch(event)
	}

	state.Status = e.NewStatus

	return state, nil
}
