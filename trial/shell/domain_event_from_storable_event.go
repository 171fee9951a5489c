package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// unmarshalAs deserializes a payload into a concrete event type E.
func unmarshalAs[E core.DomainEvent](payload []byte) (core.DomainEvent, error) {
	event := new(E)
	if err := jsoniter.ConfigFastest.Unmarshal(payload, event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *event, nil
}

var domainEventUnmarshalTable = map[string]func([]byte) (core.DomainEvent, error){
	core.StudyCreatedEventType:                 unmarshalAs[core.StudyCreated],
	core.StudyDetailsUpdatedEventType:          unmarshalAs[core.StudyDetailsUpdated],
	core.StudyStatusChangedEventType:           unmarshalAs[core.StudyStatusChanged],
	core.PatientRegisteredEventType:            unmarshalAs[core.PatientRegistered],
	core.PatientEnrolledEventType:              unmarshalAs[core.PatientEnrolled],
	core.PatientStatusChangedEventType:         unmarshalAs[core.PatientStatusChanged],
	core.SiteRegisteredEventType:               unmarshalAs[core.SiteRegistered],
	core.SiteStatusChangedEventType:            unmarshalAs[core.SiteStatusChanged],
	core.SiteUserAssignedEventType:             unmarshalAs[core.SiteUserAssigned],
	core.ProtocolVersionCreatedEventType:       unmarshalAs[core.ProtocolVersionCreated],
	core.ProtocolVersionStatusChangedEventType: unmarshalAs[core.ProtocolVersionStatusChanged],
	core.DocumentUploadedEventType:             unmarshalAs[core.DocumentUploaded],
	core.DocumentStatusChangedEventType:        unmarshalAs[core.DocumentStatusChanged],
	core.StudyDesignInitializedEventType:       unmarshalAs[core.StudyDesignInitialized],
	core.StudyArmAddedEventType:                unmarshalAs[core.StudyArmAdded],
	core.StudyVisitDefinedEventType:            unmarshalAs[core.StudyVisitDefined],
}

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
//
// It verifies that the sequence numbers assigned by the store form a gapless
// run of consecutive values, so a corrupted or partially read stream is
// reported as an IntegrityError instead of being replayed silently.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for i, storableEvent := range storableEvents {
		if i > 0 {
			expected := storableEvents[i-1].SequenceNumber + 1
			if storableEvent.SequenceNumber != expected {
				return nil, core.NewIntegrityError(
					storableEvent.AggregateID,
					uint(storableEvent.SequenceNumber),
					"sequence gap in event stream",
				)
			}
		}

		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	unmarshal, known := domainEventUnmarshalTable[storableEvent.EventType]
	if !known {
		return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
	}

	return unmarshal(storableEvent.PayloadJSON)
}
