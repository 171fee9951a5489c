package createstudy_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/trial/command/createstudy"
	"github.com/clinforge/trialcore/trial/core"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func Test_Decide_CreatesANewStudy(t *testing.T) {
	command := createstudy.BuildCommand(uuid.New(), "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", fixedTime)

	result, err := createstudy.Decide(core.DomainEvents{}, command)

	require.NoError(t, err)
	require.True(t, result.HasEventsToAppend())
	event, ok := result.Events[0].(core.StudyCreated)
	require.True(t, ok)
	assert.Equal(t, "PROT-001", event.ProtocolNumber)
}

func Test_Decide_IsIdempotentForAnExistingStudy(t *testing.T) {
	studyID := uuid.New()
	history := core.DomainEvents{
		core.BuildStudyCreated(studyID, "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", fixedTime),
	}
	command := createstudy.BuildCommand(studyID, "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", fixedTime)

	result, err := createstudy.Decide(history, command)

	require.NoError(t, err)
	assert.False(t, result.HasEventsToAppend())
	assert.NoError(t, result.HasError())
}

func Test_Decide_RejectsMissingRequiredFields(t *testing.T) {
	for _, command := range []createstudy.Command{
		createstudy.BuildCommand(uuid.New(), "", "Medix", "PROT-001", "II", "alice", fixedTime),
		createstudy.BuildCommand(uuid.New(), "Hypertension Phase II", "", "PROT-001", "II", "alice", fixedTime),
		createstudy.BuildCommand(uuid.New(), "Hypertension Phase II", "Medix", "", "II", "alice", fixedTime),
	} {
		result, err := createstudy.Decide(core.DomainEvents{}, command)

		require.NoError(t, err)
		require.Error(t, result.HasError())
		assert.True(t, core.IsValidationError(result.HasError()))
	}
}
