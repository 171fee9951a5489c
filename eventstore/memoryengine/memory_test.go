package memoryengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/eventstore/memoryengine"
)

func givenStorableEvent(t *testing.T, aggregateID string, eventType string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		aggregateID,
		eventType,
		time.Now(),
		[]byte(`{"value": 1}`),
	)
	require.NoError(t, err)

	return event
}

func Test_ReadStream_EmptyStreamHasVersionZero(t *testing.T) {
	es := memoryengine.NewEventStore()

	events, version, err := es.ReadStream(context.Background(), "unknown-aggregate")

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, eventstore.StreamVersionUint(0), version)
}

func Test_ReadStreamFrom_SkipsEventsUpToAfterSequence(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "design-2"

	_, err := es.Append(ctx, aggregateID, 0,
		givenStorableEvent(t, aggregateID, "StudyDesignInitialized"),
		givenStorableEvent(t, aggregateID, "StudyArmAdded"),
		givenStorableEvent(t, aggregateID, "StudyVisitDefined"),
	)
	require.NoError(t, err)

	events, version, err := es.ReadStreamFrom(ctx, aggregateID, 1)

	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(3), version)
	require.Len(t, events, 2)
	assert.Equal(t, eventstore.StreamVersionUint(2), events[0].SequenceNumber)
	assert.Equal(t, eventstore.StreamVersionUint(3), events[1].SequenceNumber)

	noNewEvents, version, err := es.ReadStreamFrom(ctx, aggregateID, 3)

	require.NoError(t, err)
	assert.Empty(t, noNewEvents)
	assert.Equal(t, eventstore.StreamVersionUint(3), version)
}

func Test_Append_AssignsGaplessSequenceNumbersStartingAtOne(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "study-1"

	newVersion, err := es.Append(ctx, aggregateID, 0, givenStorableEvent(t, aggregateID, "StudyCreated"))
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(1), newVersion)

	newVersion, err = es.Append(ctx, aggregateID, 1, givenStorableEvent(t, aggregateID, "StudyStatusChanged"))
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(2), newVersion)

	events, version, err := es.ReadStream(ctx, aggregateID)
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)
	require.Len(t, events, 2)
	assert.Equal(t, eventstore.StreamVersionUint(1), events[0].SequenceNumber)
	assert.Equal(t, eventstore.StreamVersionUint(2), events[1].SequenceNumber)
}

func Test_Append_MultipleEventsAreAtomicAndConsecutive(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "design-1"

	newVersion, err := es.Append(ctx, aggregateID, 0,
		givenStorableEvent(t, aggregateID, "StudyDesignInitialized"),
		givenStorableEvent(t, aggregateID, "StudyArmAdded"),
		givenStorableEvent(t, aggregateID, "StudyArmAdded"),
	)

	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(3), newVersion)

	events, _, err := es.ReadStream(ctx, aggregateID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, event := range events {
		assert.Equal(t, eventstore.StreamVersionUint(i+1), event.SequenceNumber)
	}
}

func Test_Append_StaleExpectedVersionIsConcurrencyConflict(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "patient-1"

	_, err := es.Append(ctx, aggregateID, 0, givenStorableEvent(t, aggregateID, "PatientRegistered"))
	require.NoError(t, err)

	_, err = es.Append(ctx, aggregateID, 1, givenStorableEvent(t, aggregateID, "PatientStatusChanged"))
	require.NoError(t, err)

	_, err = es.Append(ctx, aggregateID, 1, givenStorableEvent(t, aggregateID, "PatientStatusChanged"))

	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)

	events, version, readErr := es.ReadStream(ctx, aggregateID)
	require.NoError(t, readErr)
	assert.Len(t, events, 2)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)
}

func Test_Append_DuplicateInitializationIsDistinctFromVersionRace(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "design-2"

	_, err := es.Append(ctx, aggregateID, 0, givenStorableEvent(t, aggregateID, "StudyDesignInitialized"))
	require.NoError(t, err)

	_, err = es.Append(ctx, aggregateID, 0, givenStorableEvent(t, aggregateID, "StudyDesignInitialized"))

	assert.ErrorIs(t, err, eventstore.ErrStreamAlreadyInitialized)
	assert.NotErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Append_RejectsEventsForForeignAggregate(t *testing.T) {
	es := memoryengine.NewEventStore()

	_, err := es.Append(context.Background(), "aggregate-a", 0, givenStorableEvent(t, "aggregate-b", "StudyCreated"))

	assert.ErrorIs(t, err, eventstore.ErrAggregateIDMismatch)
}

func Test_ReadBatch_ReturnsEventsAfterPositionInGlobalOrder(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()

	_, err := es.Append(ctx, "study-1", 0, givenStorableEvent(t, "study-1", "StudyCreated"))
	require.NoError(t, err)
	_, err = es.Append(ctx, "site-1", 0, givenStorableEvent(t, "site-1", "SiteRegistered"))
	require.NoError(t, err)
	_, err = es.Append(ctx, "study-1", 1, givenStorableEvent(t, "study-1", "StudyStatusChanged"))
	require.NoError(t, err)

	batch, err := es.ReadBatch(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, eventstore.GlobalPositionUint64(1), batch[0].GlobalPosition)
	assert.Equal(t, eventstore.GlobalPositionUint64(3), batch[2].GlobalPosition)

	batch, err = es.ReadBatch(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "SiteRegistered", batch[0].EventType)

	batch, err = es.ReadBatch(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func Test_ReadStream_ReturnsCopiesNotSharedHistory(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "study-2"

	_, err := es.Append(ctx, aggregateID, 0, givenStorableEvent(t, aggregateID, "StudyCreated"))
	require.NoError(t, err)

	events, _, err := es.ReadStream(ctx, aggregateID)
	require.NoError(t, err)
	events[0].EventType = "Tampered"

	reread, _, err := es.ReadStream(ctx, aggregateID)
	require.NoError(t, err)
	assert.Equal(t, "StudyCreated", reread[0].EventType)
}

func Test_Append_ConcurrentWritersProduceExactlyOneWinnerPerVersion(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	aggregateID := "contended-aggregate"
	writers := 8
	appendsPerWriter := 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appendsPerWriter; i++ {
				for {
					_, version, readErr := es.ReadStream(ctx, aggregateID)
					if readErr != nil {
						return
					}

					_, appendErr := es.Append(ctx, aggregateID, version,
						givenStorableEvent(t, aggregateID, "StudyStatusChanged"))
					if appendErr == nil {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	events, version, err := es.ReadStream(ctx, aggregateID)
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(writers*appendsPerWriter), version)
	require.Len(t, events, writers*appendsPerWriter)

	for i, event := range events {
		assert.Equal(t, eventstore.StreamVersionUint(i+1), event.SequenceNumber)
	}
}

func Test_Snapshots_SaveLoadDeleteRoundtrip(t *testing.T) {
	es := memoryengine.NewEventStore()
	ctx := context.Background()

	snapshot, err := eventstore.BuildSnapshot("study-3", "Study", 12, []byte(`{"status": "ACTIVE"}`))
	require.NoError(t, err)

	require.NoError(t, es.SaveSnapshot(ctx, snapshot))

	loaded, err := es.LoadSnapshot(ctx, "study-3")
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(12), loaded.SequenceNumber)
	assert.Equal(t, "Study", loaded.AggregateType)

	require.NoError(t, es.DeleteSnapshot(ctx, "study-3"))

	_, err = es.LoadSnapshot(ctx, "study-3")
	assert.ErrorIs(t, err, eventstore.ErrNoSnapshotFound)
}

func Test_LoadSnapshot_UnknownAggregateReturnsNotFound(t *testing.T) {
	es := memoryengine.NewEventStore()

	_, err := es.LoadSnapshot(context.Background(), "nobody")

	assert.ErrorIs(t, err, eventstore.ErrNoSnapshotFound)
}
