package shell_test

import (
	"context"
	"sync"
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

var processorFixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenProcessor(t *testing.T, store shell.EventStore, options ...shell.ProcessorOption) *shell.CommandProcessor {
	t.Helper()

	processor, err := shell.NewCommandProcessor(store, options...)
	require.NoError(t, err)

	return processor
}

func givenStudyCreated(t *testing.T, store shell.EventStore, studyID uuid.UUID) {
	t.Helper()

	event := core.BuildStudyCreated(studyID, "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", processorFixedTime)
	storable, err := shell.StorableEventFrom(event, shell.CommandMetadata(uuid.New(), "alice"))
	require.NoError(t, err)

	_, err = store.Append(context.Background(), studyID.String(), 0, storable)
	require.NoError(t, err)
}

func Test_Processor_AppendsDecidedEvents(t *testing.T) {
	store := memoryengine.NewEventStore()
	processor := givenProcessor(t, store)
	studyID := uuid.New()
	givenStudyCreated(t, store, studyID)

	result, err := processor.Execute(context.Background(), studyID, "ChangeStudyStatus",
		shell.CommandMetadata(uuid.New(), "alice"),
		func(history core.DomainEvents) (core.DecisionResult, error) {
			state, replayErr := core.ReplayStudy(history)
			if replayErr != nil {
				return core.DecisionResult{}, replayErr
			}

			return core.SuccessDecision(core.BuildStudyStatusChanged(
				studyID, state.Status, core.StudyStatusIRBReview, "", "alice", processorFixedTime)), nil
		})

	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)

	storedEvents, version, err := store.ReadStream(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)
	assert.Equal(t, core.StudyStatusChangedEventType, storedEvents[1].EventType)
}

func Test_Processor_ReportsIdempotentDecisionsWithoutAppending(t *testing.T) {
	store := memoryengine.NewEventStore()
	processor := givenProcessor(t, store)
	studyID := uuid.New()
	givenStudyCreated(t, store, studyID)

	result, err := processor.Execute(context.Background(), studyID, "ChangeStudyStatus",
		shell.CommandMetadata(uuid.New(), "alice"),
		func(_ core.DomainEvents) (core.DecisionResult, error) {
			return core.IdempotentDecision(), nil
		})

	require.NoError(t, err)
	assert.True(t, result.Idempotent)

	_, version, err := store.ReadStream(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(1), version)
}

func Test_Processor_SurfacesBusinessRejectionsWithoutAppending(t *testing.T) {
	store := memoryengine.NewEventStore()
	processor := givenProcessor(t, store)
	studyID := uuid.New()
	givenStudyCreated(t, store, studyID)

	_, err := processor.Execute(context.Background(), studyID, "ChangeStudyStatus",
		shell.CommandMetadata(uuid.New(), "alice"),
		func(_ core.DomainEvents) (core.DecisionResult, error) {
			return core.ErrorDecision(core.NewTransitionError("study.status.transition",
				"cannot change study status from PLANNING to ACTIVE", core.StudyStatusPlanning.ValidNext())), nil
		})

	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	_, version, readErr := store.ReadStream(context.Background(), studyID.String())
	require.NoError(t, readErr)
	assert.Equal(t, eventstore.StreamVersionUint(1), version)
}

// racingStore lets another writer win the first n version races.
type racingStore struct {
	inner     *memoryengine.EventStore
	mu        sync.Mutex
	races     int
	interfere func() eventstore.StorableEvent
}

func (s *racingStore) ReadStream(ctx context.Context, aggregateID string) (
	eventstore.StorableEvents, eventstore.StreamVersionUint, error) {

	return s.inner.ReadStream(ctx, aggregateID)
}

func (s *racingStore) Append(
	ctx context.Context,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) (eventstore.StreamVersionUint, error) {

	s.mu.Lock()
	if s.races > 0 {
		s.races--
		s.mu.Unlock()

		if _, err := s.inner.Append(ctx, aggregateID, expectedVersion, s.interfere()); err != nil {
			return 0, err
		}

		return s.inner.Append(ctx, aggregateID, expectedVersion, event, additionalEvents...)
	}
	s.mu.Unlock()

	return s.inner.Append(ctx, aggregateID, expectedVersion, event, additionalEvents...)
}

func Test_Processor_RetriesLostVersionRacesWithFreshHistory(t *testing.T) {
	inner := memoryengine.NewEventStore()
	studyID := uuid.New()

	store := &racingStore{
		inner: inner,
		races: 1,
		interfere: func() eventstore.StorableEvent {
			event := core.BuildStudyStatusChanged(
				studyID, core.StudyStatusPlanning, core.StudyStatusIRBReview, "", "bob", processorFixedTime)
			storable, err := shell.StorableEventFrom(event, shell.CommandMetadata(uuid.New(), "bob"))
			require.NoError(t, err)

			return storable
		},
	}

	givenStudyCreated(t, inner, studyID)
	processor := givenProcessor(t, store, shell.WithRetryOptions(
		shell.WithBaseDelay(time.Millisecond), shell.WithJitterFactor(0)))

	decideCalls := 0
	result, err := processor.Execute(context.Background(), studyID, "ChangeStudyStatus",
		shell.CommandMetadata(uuid.New(), "alice"),
		func(history core.DomainEvents) (core.DecisionResult, error) {
			decideCalls++
			state, replayErr := core.ReplayStudy(history)
			if replayErr != nil {
				return core.DecisionResult{}, replayErr
			}

			if state.Status == core.StudyStatusIRBReview {
				// the concurrent writer already moved the study
				return core.IdempotentDecision(), nil
			}

			return core.SuccessDecision(core.BuildStudyStatusChanged(
				studyID, state.Status, core.StudyStatusIRBReview, "", "alice", processorFixedTime)), nil
		})

	require.NoError(t, err)
	assert.Equal(t, 2, decideCalls)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.True(t, result.Idempotent)

	_, version, err := inner.ReadStream(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)
}

func Test_Processor_PublishesAppendedEventsAfterCommit(t *testing.T) {
	store := memoryengine.NewEventStore()
	bus := shell.NewInProcessEventBus()

	var received []string
	bus.Subscribe(func(_ context.Context, event core.DomainEvent) error {
		received = append(received, event.IsEventType())

		return nil
	})

	processor := givenProcessor(t, store, shell.WithPublisher(bus))
	studyID := uuid.New()

	_, err := processor.Execute(context.Background(), studyID, "CreateStudy",
		shell.CommandMetadata(uuid.New(), "alice"),
		func(history core.DomainEvents) (core.DecisionResult, error) {
			if len(history) > 0 {
				return core.IdempotentDecision(), nil
			}

			return core.SuccessDecision(core.BuildStudyCreated(
				studyID, "Oncology Pilot", "Medix", "PROT-002", "I", "alice", processorFixedTime)), nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{core.StudyCreatedEventType}, received)
}

func Test_Processor_StampsCausationAndCorrelationOnStoredEvents(t *testing.T) {
	store := memoryengine.NewEventStore()
	processor := givenProcessor(t, store)
	studyID := uuid.New()
	commandID := uuid.New()

	_, err := processor.Execute(context.Background(), studyID, "CreateStudy",
		shell.CommandMetadata(commandID, "alice"),
		func(_ core.DomainEvents) (core.DecisionResult, error) {
			return core.SuccessDecision(core.BuildStudyCreated(
				studyID, "Oncology Pilot", "Medix", "PROT-002", "I", "alice", processorFixedTime)), nil
		})
	require.NoError(t, err)

	storedEvents, _, err := store.ReadStream(context.Background(), studyID.String())
	require.NoError(t, err)
	require.Len(t, storedEvents, 1)

	metadata, err := shell.EventMetadataFrom(storedEvents[0])
	require.NoError(t, err)
	assert.Equal(t, commandID.String(), metadata.CausationID)
	assert.Equal(t, commandID.String(), metadata.CorrelationID)
	assert.NotEqual(t, commandID.String(), metadata.MessageID)
	assert.Equal(t, "alice", metadata.IssuedBy)
}

func Test_EventBus_SubscriberErrorsDoNotStopDelivery(t *testing.T) {
	bus := shell.NewInProcessEventBus()

	var delivered []string
	bus.Subscribe(func(_ context.Context, _ core.DomainEvent) error {
		return assert.AnError
	})
	bus.Subscribe(func(_ context.Context, event core.DomainEvent) error {
		delivered = append(delivered, event.IsEventType())

		return nil
	})

	event := core.BuildStudyCreated(uuid.New(), "Oncology Pilot", "Medix", "PROT-002", "I", "alice", processorFixedTime)
	bus.Publish(context.Background(), core.DomainEvents{event})

	assert.Equal(t, []string{core.StudyCreatedEventType}, delivered)
}

func Test_Dispatcher_RoutesByCommandType(t *testing.T) {
	dispatcher := shell.NewCommandDispatcher()

	err := dispatcher.Register("CreateStudy", func(_ context.Context, _ any) (shell.HandlerResult, error) {
		return shell.HandlerResult{RetryAttempts: 1}, nil
	})
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), "CreateStudy", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RetryAttempts)

	_, err = dispatcher.Dispatch(context.Background(), "UnknownCommand", struct{}{})
	assert.ErrorIs(t, err, shell.ErrUnknownCommandType)

	err = dispatcher.Register("CreateStudy", func(_ context.Context, _ any) (shell.HandlerResult, error) {
		return shell.HandlerResult{}, nil
	})
	assert.ErrorIs(t, err, shell.ErrDuplicateCommandType)
}
