package core

import "strings"

// StudyDesignState is the state of a study design folded from its event
// stream. The zero value represents a design that is not initialized yet.
type StudyDesignState struct {
	Initialized bool
	DesignID    DesignIDString
	StudyID     StudyIDString
	ArmNames    map[string]bool
	ArmIDs      map[string]bool
	ArmCount    int
	VisitNames  map[string]bool
	VisitCount  int
}

// HasArmNamed reports whether an arm with this name was already added.
func (s StudyDesignState) HasArmNamed(name string) bool {
	return s.ArmNames[name]
}

// HasArmWithID reports whether an arm with this id was already added.
func (s StudyDesignState) HasArmWithID(armID string) bool {
	return s.ArmIDs[armID]
}

// HasVisitNamed reports whether a visit with this name already exists in the
// given arm scope. Name comparison is case-insensitive; an empty armID is the
// design-wide scope.
func (s StudyDesignState) HasVisitNamed(armID, name string) bool {
	return s.VisitNames[visitScopeKey(armID, name)]
}

func visitScopeKey(armID, name string) string {
	return armID + "|" + strings.ToLower(name)
}

type applyStudyDesignFunc func(StudyDesignState, DomainEvent) (StudyDesignState, error)

var studyDesignApplyTable = map[EventTypeString]applyStudyDesignFunc{
	StudyDesignInitializedEventType: applyStudyDesignInitialized,
	StudyArmAddedEventType:          applyStudyArmAdded,
	StudyVisitDefinedEventType:      applyStudyVisitDefined,
}

// ReplayStudyDesign folds a design's full history into its current state.
func ReplayStudyDesign(history DomainEvents) (StudyDesignState, error) {
	return FoldStudyDesign(StudyDesignState{}, history)
}

// FoldStudyDesign folds further history onto an already replayed state. It is
// the incremental variant of ReplayStudyDesign used when replay resumes from
// a snapshot.
func FoldStudyDesign(state StudyDesignState, history DomainEvents) (StudyDesignState, error) {
	for i, event := range history {
		apply, known := studyDesignApplyTable[event.IsEventType()]
		if !known {
			return StudyDesignState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in study design stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return StudyDesignState{}, err
		}

		state = next
	}

	return state, nil
}

func applyStudyDesignInitialized(state StudyDesignState, event DomainEvent) (StudyDesignState, error) {
	e, ok := event.(StudyDesignInitialized)
	if !ok {
		return StudyDesignState{}, payloadMismatch(event)
	}

	state.Initialized = true
	state.DesignID = e.DesignID
	state.StudyID = e.StudyID
	state.ArmNames = make(map[string]bool)
	state.ArmIDs = make(map[string]bool)
	state.VisitNames = make(map[string]bool)

	return state, nil
}

func applyStudyArmAdded(state StudyDesignState, event DomainEvent) (StudyDesignState, error) {
	e, ok := event.(StudyArmAdded)
	if !ok {
		return StudyDesignState{}, payloadMismatch(event)
	}

	if state.ArmNames == nil {
		state.ArmNames = make(map[string]bool)
	}
	if state.ArmIDs == nil {
		state.ArmIDs = make(map[string]bool)
	}
	state.ArmNames[e.Name] = true
	state.ArmIDs[e.ArmID] = true
	state.ArmCount++

	return state, nil
}

func applyStudyVisitDefined(state StudyDesignState, event DomainEvent) (StudyDesignState, error) {
	e, ok := event.(StudyVisitDefined)
	if !ok {
		return StudyDesignState{}, payloadMismatch(event)
	}

	if state.VisitNames == nil {
		state.VisitNames = make(map[string]bool)
	}
	state.VisitNames[visitScopeKey(e.ArmID, e.Name)] = true
	state.VisitCount++

	return state, nil
}
