package core

// ProtocolVersionState is the state of a protocol version folded from its
// event stream. The zero value represents a version that does not exist yet.
type ProtocolVersionState struct {
	Exists        bool
	VersionID     ProtocolVersionIDString
	StudyID       StudyIDString
	VersionNumber string
	Status        ProtocolVersionStatus
}

type applyProtocolVersionFunc func(ProtocolVersionState, DomainEvent) (ProtocolVersionState, error)

var protocolVersionApplyTable = map[EventTypeString]applyProtocolVersionFunc{
	ProtocolVersionCreatedEventType:       applyProtocolVersionCreated,
	ProtocolVersionStatusChangedEventType: applyProtocolVersionStatusChanged,
}

// ReplayProtocolVersion folds a protocol version's full history into its current state.
func ReplayProtocolVersion(history DomainEvents) (ProtocolVersionState, error) {
	return FoldProtocolVersion(ProtocolVersionState{}, history)
}

// FoldProtocolVersion folds further history onto an already replayed state.
// It is the incremental variant of ReplayProtocolVersion used when replay
// resumes from a snapshot.
func FoldProtocolVersion(state ProtocolVersionState, history DomainEvents) (ProtocolVersionState, error) {
	for i, event := range history {
		apply, known := protocolVersionApplyTable[event.IsEventType()]
		if !known {
			return ProtocolVersionState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in protocol version stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return ProtocolVersionState{}, err
		}

		state = next
	}

	return state, nil
}

func applyProtocolVersionCreated(state ProtocolVersionState, event DomainEvent) (ProtocolVersionState, error) {
	e, ok := event.(ProtocolVersionCreated)
	if !ok {
		return ProtocolVersionState{}, payloadMismatch(event)
	}

	state.Exists = true
	state.VersionID = e.VersionID
	state.StudyID = e.StudyID
	state.VersionNumber = e.VersionNumber
	state.Status = ProtocolVersionStatusDraft

	return state, nil
}

func applyProtocolVersionStatusChanged(state ProtocolVersionState, event DomainEvent) (ProtocolVersionState, error) {
	e, ok := event.(ProtocolVersionStatusChanged)
	if !ok {
		return ProtocolVersionState{}, payloadMismatch(event)
	}

	state.Status = e.NewStatus

	return state, nil
}
