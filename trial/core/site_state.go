package core

// SiteState is the state of a clinical site folded from its event stream.
// The zero value represents a site that does not exist yet.
type SiteState struct {
	Exists      bool
	SiteID      SiteIDString
	StudyID     StudyIDString
	Name        string
	SiteNumber  string
	Status      SiteStatus
	Assignments map[string]bool // keyed by userID + "|" + role
}

// AssignmentKey builds the uniqueness key for a (user, role) assignment.
func AssignmentKey(userID UserIDString, role string) string {
	return userID + "|" + role
}

// HasAssignment reports whether the (user, role) pair is already assigned.
func (s SiteState) HasAssignment(userID UserIDString, role string) bool {
	return s.Assignments[AssignmentKey(userID, role)]
}

type applySiteFunc func(SiteState, DomainEvent) (SiteState, error)

var siteApplyTable = map[EventTypeString]applySiteFunc{
	SiteRegisteredEventType:    applySiteRegistered,
	SiteStatusChangedEventType: applySiteStatusChanged,
	SiteUserAssignedEventType:  applySiteUserAssigned,
}

// ReplaySite folds a site's full history into its current state.
func ReplaySite(history DomainEvents) (SiteState, error) {
	return FoldSite(SiteState{}, history)
}

// FoldSite folds further history onto an already replayed state. It is the
// incremental variant of ReplaySite used when replay resumes from a snapshot.
func FoldSite(state SiteState, history DomainEvents) (SiteState, error) {
	for i, event := range history {
		apply, known := siteApplyTable[event.IsEventType()]
		if !known {
			return SiteState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in site stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return SiteState{}, err
		}

		state = next
	}

	return state, nil
}

func applySiteRegistered(state SiteState, event DomainEvent) (SiteState, error) {
	e, ok := event.(SiteRegistered)
	if !ok {
		return SiteState{}, payloadMismatch(event)
	}

	state.Exists = true
	state.SiteID = e.SiteID
	state.StudyID = e.StudyID
	state.Name = e.Name
	state.SiteNumber = e.SiteNumber
	state.Status = SiteStatusPending
	state.Assignments = make(map[string]bool)

	return state, nil
}

func applySiteStatusChanged(state SiteState, event DomainEvent) (SiteState, error) {
	e, ok := event.(SiteStatusChanged)
	if !ok {
		return SiteState{}, payloadMismatch(event)
	}

	state.Status = e.NewStatus

	return state, nil
}

func applySiteUserAssigned(state SiteState, event DomainEvent) (SiteState, error) {
	e, ok := event.(SiteUserAssigned)
	if !ok {
		return SiteState{}, payloadMismatch(event)
	}

	if state.Assignments == nil {
		state.Assignments = make(map[string]bool)
	}
	state.Assignments[AssignmentKey(e.UserID, e.Role)] = true

	return state, nil
}
