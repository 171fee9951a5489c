package core

import (
	"time"

	"github.com/google/uuid"
)

// DocumentUploadedEventType is the event type identifier.
const DocumentUploadedEventType = "DocumentUploaded"

// DocumentUploaded represents the upload of a study document in DRAFT status.
// It is always the first event of a document stream.
type DocumentUploaded struct {
	EventType    EventTypeString
	DocumentID   DocumentIDString
	StudyID      StudyIDString
	DocumentName string
	DocumentType string
	FileName     string
	UploadedBy   UserIDString
	OccurredAt   OccurredAtTS
}

// BuildDocumentUploaded creates a new DocumentUploaded event.
func BuildDocumentUploaded(
	documentID uuid.UUID,
	studyID uuid.UUID,
	documentName string,
	documentType string,
	fileName string,
	uploadedBy UserIDString,
	occurredAt time.Time,
) DocumentUploaded {

	return DocumentUploaded{
		EventType:    DocumentUploadedEventType,
		DocumentID:   documentID.String(),
		StudyID:      studyID.String(),
		DocumentName: documentName,
		DocumentType: documentType,
		FileName:     fileName,
		UploadedBy:   uploadedBy,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e DocumentUploaded) IsEventType() string {
	return DocumentUploadedEventType
}

// HasOccurredAt returns when this event occurred.
func (e DocumentUploaded) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// AffectsAggregateID returns the document stream this event belongs to.
func (e DocumentUploaded) AffectsAggregateID() string {
	return e.DocumentID
}
