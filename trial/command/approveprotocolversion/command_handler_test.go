package approveprotocolversion_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/eventstore/memoryengine"
	"github.com/clinforge/trialcore/trial/command/approveprotocolversion"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

func Test_Handle_ConcurrentApprovesResolveToOneSuccessAndOneRejection(t *testing.T) {
	store := memoryengine.NewEventStore()
	processor, err := shell.NewCommandProcessor(store)
	require.NoError(t, err)
	handler := approveprotocolversion.NewCommandHandler(processor)

	versionID := uuid.New()
	for _, event := range givenSubmittedVersion(versionID) {
		storable, buildErr := shell.StorableEventFrom(event, shell.CommandMetadata(uuid.New(), "alice"))
		require.NoError(t, buildErr)

		_, version, readErr := store.ReadStream(context.Background(), versionID.String())
		require.NoError(t, readErr)
		_, appendErr := store.Append(context.Background(), versionID.String(), version, storable)
		require.NoError(t, appendErr)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = handler.Handle(context.Background(),
				approveprotocolversion.BuildCommand(versionID, "reviewer", fixedTime))
		}(i)
	}
	wg.Wait()

	successes := 0
	rejections := 0
	for _, handleErr := range errs {
		switch {
		case handleErr == nil:
			successes++
		case core.IsValidationError(handleErr):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", handleErr)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	storedEvents, _, err := store.ReadStream(context.Background(), versionID.String())
	require.NoError(t, err)
	require.Len(t, storedEvents, 3)

	final, err := shell.DomainEventsFrom(storedEvents)
	require.NoError(t, err)
	state, err := core.ReplayProtocolVersion(final)
	require.NoError(t, err)
	assert.Equal(t, core.ProtocolVersionStatusApproved, state.Status)
}
