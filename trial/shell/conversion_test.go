package shell_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

var conversionFixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenMetadata(t *testing.T) shell.EventMetadata {
	t.Helper()

	return shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New(), "alice")
}

func Test_StorableEventFrom_RoundTripsAStudyEvent(t *testing.T) {
	studyID := uuid.New()
	event := core.BuildStudyCreated(studyID, "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", conversionFixedTime)
	metadata := givenMetadata(t)

	storable, err := shell.StorableEventFrom(event, metadata)
	require.NoError(t, err)
	assert.Equal(t, studyID.String(), storable.AggregateID)
	assert.Equal(t, core.StudyCreatedEventType, storable.EventType)

	restored, err := shell.DomainEventFrom(storable)
	require.NoError(t, err)
	assert.Equal(t, event, restored)

	restoredMetadata, err := shell.EventMetadataFrom(storable)
	require.NoError(t, err)
	assert.Equal(t, metadata, restoredMetadata)
}

func Test_StorableEventFrom_RoundTripsAPartialDetailsUpdate(t *testing.T) {
	studyID := uuid.New()
	newSponsor := "Novara Pharma"
	event := core.BuildStudyDetailsUpdated(studyID, nil, &newSponsor, nil, "bob", conversionFixedTime)

	storable, err := shell.StorableEventFrom(event, givenMetadata(t))
	require.NoError(t, err)

	restored, err := shell.DomainEventFrom(storable)
	require.NoError(t, err)

	restoredEvent, ok := restored.(core.StudyDetailsUpdated)
	require.True(t, ok)
	assert.Nil(t, restoredEvent.Name)
	require.NotNil(t, restoredEvent.Sponsor)
	assert.Equal(t, "Novara Pharma", *restoredEvent.Sponsor)
}

func Test_DomainEventFrom_RejectsUnknownEventType(t *testing.T) {
	storable, err := eventstore.BuildStorableEventWithEmptyMetadata(
		uuid.New().String(), "SomethingUnexpected", conversionFixedTime, []byte(`{}`))
	require.NoError(t, err)

	_, err = shell.DomainEventFrom(storable)

	require.Error(t, err)
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

func Test_DomainEventsFrom_DetectsSequenceGaps(t *testing.T) {
	studyID := uuid.New()
	first, err := shell.StorableEventFrom(
		core.BuildStudyCreated(studyID, "Oncology Pilot", "Medix", "PROT-002", "I", "alice", conversionFixedTime),
		givenMetadata(t))
	require.NoError(t, err)
	third, err := shell.StorableEventFrom(
		core.BuildStudyStatusChanged(studyID, core.StudyStatusPlanning, core.StudyStatusIRBReview, "", "alice", conversionFixedTime),
		givenMetadata(t))
	require.NoError(t, err)

	first.SequenceNumber = 1
	third.SequenceNumber = 3 // event 2 is missing

	_, err = shell.DomainEventsFrom(eventstore.StorableEvents{first, third})

	require.Error(t, err)
	assert.True(t, core.IsIntegrityError(err))
}

func Test_DomainEventsFrom_AcceptsAGaplessStream(t *testing.T) {
	studyID := uuid.New()
	first, err := shell.StorableEventFrom(
		core.BuildStudyCreated(studyID, "Oncology Pilot", "Medix", "PROT-002", "I", "alice", conversionFixedTime),
		givenMetadata(t))
	require.NoError(t, err)
	second, err := shell.StorableEventFrom(
		core.BuildStudyStatusChanged(studyID, core.StudyStatusPlanning, core.StudyStatusIRBReview, "", "alice", conversionFixedTime),
		givenMetadata(t))
	require.NoError(t, err)

	first.SequenceNumber = 1
	second.SequenceNumber = 2

	history, err := shell.DomainEventsFrom(eventstore.StorableEvents{first, second})

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.StudyCreatedEventType, history[0].IsEventType())
	assert.Equal(t, core.StudyStatusChangedEventType, history[1].IsEventType())
}

func Test_CommandMetadata_StartsANewCorrelation(t *testing.T) {
	commandID := uuid.New()

	metadata := shell.CommandMetadata(commandID, "system")

	assert.Equal(t, commandID.String(), metadata.MessageID)
	assert.Equal(t, commandID.String(), metadata.CausationID)
	assert.Equal(t, commandID.String(), metadata.CorrelationID)
	assert.Equal(t, "system", metadata.IssuedBy)
}

func Test_CausedBy_KeepsCorrelationAndIssuer(t *testing.T) {
	parent := shell.CommandMetadata(uuid.New(), "alice")

	child := parent.CausedBy(parent.MessageID)

	assert.NotEqual(t, parent.MessageID, child.MessageID)
	assert.Equal(t, parent.MessageID, child.CausationID)
	assert.Equal(t, parent.CorrelationID, child.CorrelationID)
	assert.Equal(t, "alice", child.IssuedBy)
}
