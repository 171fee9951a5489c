package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/shell"
)

func Test_Retry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, metrics.Attempts)
	assert.Equal(t, "none", metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_Retry_RetriesConcurrencyConflictsUntilSuccess(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return eventstore.ErrConcurrencyConflict
		}

		return nil
	}, shell.WithBaseDelay(time.Millisecond), shell.WithJitterFactor(0))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, metrics.Attempts)
	assert.Equal(t, "none", metrics.LastErrorType)
	assert.Greater(t, metrics.TotalDelay, time.Duration(0))
}

func Test_Retry_DoesNotRetryPermanentErrors(t *testing.T) {
	permanentErr := errors.New("stream is broken")
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++

		return permanentErr
	})

	require.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "other", metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_Retry_DoesNotRetryDuplicateStreamInitialization(t *testing.T) {
	calls := 0

	_, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++

		return eventstore.ErrStreamAlreadyInitialized
	})

	require.ErrorIs(t, err, eventstore.ErrStreamAlreadyInitialized)
	assert.Equal(t, 1, calls)
}

func Test_Retry_ReportsExhaustionAfterMaxAttempts(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++

		return eventstore.ErrConcurrencyConflict
	}, shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond), shell.WithJitterFactor(0))

	require.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, metrics.Attempts)
	assert.Equal(t, "concurrency_conflict", metrics.LastErrorType)
	assert.True(t, metrics.RetriesExhausted)
}

func Test_Retry_StopsWhenContextIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := shell.RetryWithExponentialBackoff(ctx, func(_ context.Context) error {
		calls++
		cancel()

		return eventstore.ErrConcurrencyConflict
	}, shell.WithBaseDelay(time.Hour))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_Retry_ValidatesOptions(t *testing.T) {
	noop := func(_ context.Context) error { return nil }

	_, err := shell.RetryWithExponentialBackoff(context.Background(), noop, shell.WithMaxAttempts(0))
	assert.ErrorIs(t, err, shell.ErrInvalidMaxAttempts)

	_, err = shell.RetryWithExponentialBackoff(context.Background(), noop, shell.WithBaseDelay(-time.Second))
	assert.ErrorIs(t, err, shell.ErrNegativeBaseDelay)

	_, err = shell.RetryWithExponentialBackoff(context.Background(), noop, shell.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, shell.ErrInvalidJitterFactor)

	_, err = shell.RetryWithExponentialBackoff(context.Background(), noop, shell.WithMetrics(nil, "CreateStudy"))
	assert.ErrorIs(t, err, shell.ErrNilMetricsCollector)
}
