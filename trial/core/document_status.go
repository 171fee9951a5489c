package core

// DocumentStatus is the lifecycle status of a study document.
type DocumentStatus string

// All statuses a study document can be in. Archiving a draft is the soft
// delete of the document; there is no hard delete.
const (
	DocumentStatusDraft      DocumentStatus = "DRAFT"
	DocumentStatusCurrent    DocumentStatus = "CURRENT"
	DocumentStatusSuperseded DocumentStatus = "SUPERSEDED"
	DocumentStatusArchived   DocumentStatus = "ARCHIVED"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:      {DocumentStatusCurrent, DocumentStatusArchived},
	DocumentStatusCurrent:    {DocumentStatusSuperseded, DocumentStatusArchived},
	DocumentStatusSuperseded: {},
	DocumentStatusArchived:   {},
}

// IsValid reports whether the status is part of the document lifecycle.
func (s DocumentStatus) IsValid() bool {
	_, known := documentTransitions[s]
	return known
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s DocumentStatus) IsTerminal() bool {
	return s.IsValid() && len(documentTransitions[s]) == 0
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	for _, next := range documentTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// ValidNext returns the legal target statuses as strings for error reporting.
func (s DocumentStatus) ValidNext() []string {
	next := make([]string, 0, len(documentTransitions[s]))
	for _, target := range documentTransitions[s] {
		next = append(next, string(target))
	}

	return next
}

// IsEditable reports whether the document content may still change.
// Only drafts are editable or deletable.
func (s DocumentStatus) IsEditable() bool {
	return s == DocumentStatusDraft
}

func (s DocumentStatus) String() string {
	return string(s)
}
