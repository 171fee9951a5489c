package core

// DocumentState is the state of a study document folded from its event stream.
// The zero value represents a document that does not exist yet.
type DocumentState struct {
	Exists       bool
	DocumentID   DocumentIDString
	StudyID      StudyIDString
	DocumentName string
	Status       DocumentStatus
}

type applyDocumentFunc func(DocumentState, DomainEvent) (DocumentState, error)

var documentApplyTable = map[EventTypeString]applyDocumentFunc{
	DocumentUploadedEventType:      applyDocumentUploaded,
	DocumentStatusChangedEventType: applyDocumentStatusChanged,
}

// ReplayDocument folds a document's full history into its current state.
func ReplayDocument(history DomainEvents) (DocumentState, error) {
	return FoldDocument(DocumentState{}, history)
}

// FoldDocument folds further history onto an already replayed state. It is
// the incremental variant of ReplayDocument used when replay resumes from a
// snapshot.
func FoldDocument(state DocumentState, history DomainEvents) (DocumentState, error) {
	for i, event := range history {
		apply, known := documentApplyTable[event.IsEventType()]
		if !known {
			return DocumentState{}, NewIntegrityError(
				event.AffectsAggregateID(), uint(i+1), "unknown event type "+event.IsEventType()+" in document stream")
		}

		next, err := apply(state, event)
		if err != nil {
			return DocumentState{}, err
		}

		state = next
	}

	return state, nil
}

func applyDocumentUploaded(state DocumentState, event DomainEvent) (DocumentState, error) {
	e, ok := event.(DocumentUploaded)
	if !ok {
		return DocumentState{}, payloadMismatch(event)
	}

	state.Exists = true
	state.DocumentID = e.DocumentID
	state.StudyID = e.StudyID
	state.DocumentName = e.DocumentName
	state.Status = DocumentStatusDraft

	return state, nil
}

func applyDocumentStatusChanged(state DocumentState, event DomainEvent) (DocumentState, error) {
	e, ok := event.(DocumentStatusChanged)
	if !ok {
		return DocumentState{}, payloadMismatch(event)
	}

	state.Status = e.NewStatus

	return state, nil
}
