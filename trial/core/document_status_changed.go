package core

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatusChangedEventType is the event type identifier.
const DocumentStatusChangedEventType = "DocumentStatusChanged"

// DocumentStatusChanged represents a legal transition of a study document's
// lifecycle status: approval (DRAFT to CURRENT), supersession, or archival.
// SupersededByDocumentID is set only for transitions to SUPERSEDED.
type DocumentStatusChanged struct {
	EventType              EventTypeString
	DocumentID             DocumentIDString
	OldStatus              DocumentStatus
	NewStatus              DocumentStatus
	SupersededByDocumentID DocumentIDString
	Comment                string
	ChangedBy              UserIDString
	OccurredAt             OccurredAtTS
}

// BuildDocumentStatusChanged creates a new DocumentStatusChanged event.
func BuildDocumentStatusChanged(
	documentID uuid.UUID,
	oldStatus DocumentStatus,
	newStatus DocumentStatus,
	supersededByDocumentID DocumentIDString,
	comment string,
	changedBy UserIDString,
	occurredAt time.Time,
) DocumentStatusChanged {

	return DocumentStatusChanged{
		EventType:              DocumentStatusChangedEventType,
		DocumentID:             documentID.String(),
		OldStatus:              oldStatus,
		NewStatus:              newStatus,
		SupersededByDocumentID: supersededByDocumentID,
		Comment:                comment,
		ChangedBy:              changedBy,
		OccurredAt:             ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e DocumentStatusChanged) IsEventType() string {
	return DocumentStatusChangedEventType
}

// HasOccurredAt returns when this event occurred.
func (e DocumentStatusChanged) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the document stream this event belongs to.
func (e DocumentStatusChanged) AffectsAggregateID() string {
	return e.DocumentID
}
