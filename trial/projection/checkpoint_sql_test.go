package projection_test

import (
	"context"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/clinforge/trialcore/trial/projection"
)

func givenSQLCheckpointStore(t *testing.T) *projection.SQLCheckpointStore {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := projection.NewSQLCheckpointStore(db, goqu.Dialect("sqlite3"))
	require.NoError(t, err)
	require.NoError(t, store.CreateSchema(context.Background()))

	return store
}

func Test_SQLCheckpointStore_AnUnknownProjectionStartsAtZero(t *testing.T) {
	store := givenSQLCheckpointStore(t)

	position, err := store.LoadPosition(context.Background(), "study_view")

	require.NoError(t, err)
	assert.Equal(t, uint64(0), position)
}

func Test_SQLCheckpointStore_SavingAPositionOverwritesThePreviousOne(t *testing.T) {
	store := givenSQLCheckpointStore(t)

	require.NoError(t, store.SavePosition(context.Background(), "study_view", 7))
	require.NoError(t, store.SavePosition(context.Background(), "study_view", 12))

	position, err := store.LoadPosition(context.Background(), "study_view")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), position)
}

func Test_SQLCheckpointStore_PositionsAreScopedPerProjection(t *testing.T) {
	store := givenSQLCheckpointStore(t)

	require.NoError(t, store.SavePosition(context.Background(), "study_view", 7))
	require.NoError(t, store.SavePosition(context.Background(), "patient_view", 3))

	position, err := store.LoadPosition(context.Background(), "patient_view")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), position)
}

func Test_SQLCheckpointStore_SequencesAreScopedPerProjectionAndAggregate(t *testing.T) {
	store := givenSQLCheckpointStore(t)
	firstAggregate := uuid.New().String()
	secondAggregate := uuid.New().String()

	require.NoError(t, store.SaveSequence(context.Background(), "study_view", firstAggregate, 4))
	require.NoError(t, store.SaveSequence(context.Background(), "study_view", secondAggregate, 1))
	require.NoError(t, store.SaveSequence(context.Background(), "study_view", firstAggregate, 5))

	sequence, err := store.LastSequence(context.Background(), "study_view", firstAggregate)
	require.NoError(t, err)
	assert.Equal(t, uint(5), sequence)

	sequence, err = store.LastSequence(context.Background(), "study_view", secondAggregate)
	require.NoError(t, err)
	assert.Equal(t, uint(1), sequence)

	sequence, err = store.LastSequence(context.Background(), "patient_view", firstAggregate)
	require.NoError(t, err)
	assert.Equal(t, uint(0), sequence)
}
