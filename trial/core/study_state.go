package core

// StudyState is the state of a study folded from its event stream.
// The zero value represents a study that does not exist yet.
type StudyState struct {
	Exists         bool
	StudyID        StudyIDString
	Name           string
	Sponsor        string
	ProtocolNumber string
	Phase          string
	Status         StudyStatus
}

type applyStudyFunc func(StudyState, DomainEvent) (StudyState, error)

// studyApplyTable dispatches events to their apply function explicitly.
// An event type missing here makes the stream unreplayable, which ReplayStudy
// reports as an IntegrityError instead of silently skipping history.
var studyApplyTable = map[EventTypeString]applyStudyFunc{
	StudyCreatedEventType:        applyStudyCreated,
	StudyDetailsUpdatedEventType: applyStudyDetailsUpdated,
	StudyStatusChangedEventType:  applyStudyStatusChanged,
}

// ReplayStudy folds a study's full history into its current state.
// Replaying the same history always yields the same state.
func ReplayStudy(history DomainEvents) (StudyState, error) {
	return FoldStudy(StudyState{}, history)
}

// FoldStudy folds further history onto an already replayed state. It is the
// incremental variant of ReplayStudy used when replay resumes from a snapshot.
func FoldStudy(state StudyState, history DomainEvents) (StudyState, error) {
	for i, event := range history {
		apply, known := studyApplyTable[event.IsEventType()]
		if !known {
			return StudyState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in study stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return StudyState{}, err
		}

		state = next
	}

	return state, nil
}

func applyStudyCreated(state StudyState, event DomainEvent) (StudyState, error) {
	e, ok := event.(StudyCreated)
	if !ok {
		return StudyState{}, payloadMismatch(event)
	}

	state.Exists = true
	state.StudyID = e.StudyID
	state.Name = e.Name
	state.Sponsor = e.Sponsor
	state.ProtocolNumber = e.ProtocolNumber
	state.Phase = e.Phase
	state.Status = StudyStatusPlanning

	return state, nil
}

func applyStudyDetailsUpdated(state StudyState, event DomainEvent) (StudyState, error) {
	e, ok := event.(StudyDetailsUpdated)
	if !ok {
		return StudyState{}, payloadMismatch(event)
	}

	if e.Name != nil {
		state.Name = *e.Name
	}

	if e.Sponsor != nil {
		state.Sponsor = *e.Sponsor
	}

	if e.Phase != nil {
		state.Phase = *e.Phase
	}

	return state, nil
}

func applyStudyStatusChanged(state StudyState, event DomainEvent) (StudyState, error) {
	e, ok := event.(StudyStatusChanged)
	if !ok {
		return StudyState{}, payloadMismatch(event)
	}

	state.Status = e.NewStatus

	return state, nil
}

// payloadMismatch reports an event whose registered type string does not match
// its Go payload type. This can only happen through a wiring bug in the
// serialization boundary.
func payloadMismatch(event DomainEvent) error {
	return NewIntegrityError(event.AffectsAggregateID(), 0,
		"payload type does not match event type "+event.IsEventType())
}
