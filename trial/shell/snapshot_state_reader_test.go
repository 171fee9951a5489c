package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/eventstore/memoryengine"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

var snapshotFixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingSnapshotStore wraps the in-memory engine and records the
// afterSequence values passed to ReadStreamFrom.
type recordingSnapshotStore struct {
	*memoryengine.EventStore
	readsFrom []eventstore.StreamVersionUint
}

func (s *recordingSnapshotStore) ReadStreamFrom(
	ctx context.Context,
	aggregateID string,
	afterSequence eventstore.StreamVersionUint,
) (eventstore.StorableEvents, eventstore.StreamVersionUint, error) {

	s.readsFrom = append(s.readsFrom, afterSequence)

	return s.EventStore.ReadStreamFrom(ctx, aggregateID, afterSequence)
}

func givenDesignReader(t *testing.T, store shell.SnapshotCapableEventStore) *shell.SnapshotStateReader[core.StudyDesignState] {
	t.Helper()

	reader, err := shell.NewSnapshotStateReader(store, "StudyDesign", core.FoldStudyDesign)
	require.NoError(t, err)

	return reader
}

func givenDesignEvents(t *testing.T, store *memoryengine.EventStore, designID uuid.UUID, events ...core.DomainEvent) {
	t.Helper()

	ctx := context.Background()

	for _, event := range events {
		storable, err := shell.StorableEventFrom(event, shell.CommandMetadata(uuid.New(), "alice"))
		require.NoError(t, err)

		_, version, readErr := store.ReadStream(ctx, designID.String())
		require.NoError(t, readErr)

		_, appendErr := store.Append(ctx, designID.String(), version, storable)
		require.NoError(t, appendErr)
	}
}

func Test_SnapshotStateReader_FirstReadReplaysFullStreamAndStoresASnapshot(t *testing.T) {
	store := memoryengine.NewEventStore()
	designID := uuid.New()
	givenDesignEvents(t, store, designID,
		core.BuildStudyDesignInitialized(designID, uuid.New(), "Oncology Pilot", "system", snapshotFixedTime),
		core.BuildStudyArmAdded(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", snapshotFixedTime),
	)
	reader := givenDesignReader(t, store)

	state, version, err := reader.Read(context.Background(), designID)

	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Equal(t, 1, state.ArmCount)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)

	snapshot, err := store.LoadSnapshot(context.Background(), designID.String())
	require.NoError(t, err)
	assert.Equal(t, "StudyDesign", snapshot.AggregateType)
	assert.Equal(t, eventstore.StreamVersionUint(2), snapshot.SequenceNumber)
}

func Test_SnapshotStateReader_SecondReadResumesFromTheSnapshotSequence(t *testing.T) {
	store := &recordingSnapshotStore{EventStore: memoryengine.NewEventStore()}
	designID := uuid.New()
	givenDesignEvents(t, store.EventStore, designID,
		core.BuildStudyDesignInitialized(designID, uuid.New(), "Oncology Pilot", "system", snapshotFixedTime),
		core.BuildStudyArmAdded(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", snapshotFixedTime),
	)
	reader := givenDesignReader(t, store)

	_, _, err := reader.Read(context.Background(), designID)
	require.NoError(t, err)

	givenDesignEvents(t, store.EventStore, designID,
		core.BuildStudyVisitDefined(designID, uuid.New(), uuid.Nil, "Screening", -14, 3, 0, "SCREENING", "alice", snapshotFixedTime))

	state, version, err := reader.Read(context.Background(), designID)

	require.NoError(t, err)
	assert.Equal(t, 1, state.ArmCount)
	assert.Equal(t, 1, state.VisitCount)
	assert.Equal(t, eventstore.StreamVersionUint(3), version)
	require.Len(t, store.readsFrom, 2)
	assert.Equal(t, eventstore.StreamVersionUint(0), store.readsFrom[0])
	assert.Equal(t, eventstore.StreamVersionUint(2), store.readsFrom[1])
}

func Test_SnapshotStateReader_ReadWithoutNewEventsKeepsTheStreamVersion(t *testing.T) {
	store := memoryengine.NewEventStore()
	designID := uuid.New()
	givenDesignEvents(t, store, designID,
		core.BuildStudyDesignInitialized(designID, uuid.New(), "Oncology Pilot", "system", snapshotFixedTime),
	)
	reader := givenDesignReader(t, store)

	_, firstVersion, err := reader.Read(context.Background(), designID)
	require.NoError(t, err)

	state, secondVersion, err := reader.Read(context.Background(), designID)

	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Equal(t, firstVersion, secondVersion)
}

func Test_SnapshotStateReader_DiscardsAnUnusableSnapshotAndReplaysTheFullStream(t *testing.T) {
	store := memoryengine.NewEventStore()
	designID := uuid.New()
	givenDesignEvents(t, store, designID,
		core.BuildStudyDesignInitialized(designID, uuid.New(), "Oncology Pilot", "system", snapshotFixedTime),
		core.BuildStudyArmAdded(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", snapshotFixedTime),
	)

	brokenSnapshot, err := eventstore.BuildSnapshot(designID.String(), "StudyDesign", 1, []byte(`[1,2,3]`))
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(context.Background(), brokenSnapshot))

	reader := givenDesignReader(t, store)

	state, version, err := reader.Read(context.Background(), designID)

	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Equal(t, 1, state.ArmCount)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)

	replacedSnapshot, err := store.LoadSnapshot(context.Background(), designID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(2), replacedSnapshot.SequenceNumber)
}

func Test_SnapshotStateReader_EmptyStreamYieldsZeroStateAndNoSnapshot(t *testing.T) {
	store := memoryengine.NewEventStore()
	designID := uuid.New()
	reader := givenDesignReader(t, store)

	state, version, err := reader.Read(context.Background(), designID)

	require.NoError(t, err)
	assert.False(t, state.Initialized)
	assert.Equal(t, eventstore.StreamVersionUint(0), version)

	_, err = store.LoadSnapshot(context.Background(), designID.String())
	assert.ErrorIs(t, err, eventstore.ErrNoSnapshotFound)
}

func Test_NewSnapshotStateReader_RejectsMissingDependencies(t *testing.T) {
	store := memoryengine.NewEventStore()

	_, err := shell.NewSnapshotStateReader[core.StudyDesignState](nil, "StudyDesign", core.FoldStudyDesign)
	assert.ErrorIs(t, err, shell.ErrNilSnapshotStore)

	_, err = shell.NewSnapshotStateReader(store, "", core.FoldStudyDesign)
	assert.ErrorIs(t, err, shell.ErrEmptySnapshotAggregateType)

	_, err = shell.NewSnapshotStateReader[core.StudyDesignState](store, "StudyDesign", nil)
	assert.ErrorIs(t, err, shell.ErrNilFoldFunc)
}
