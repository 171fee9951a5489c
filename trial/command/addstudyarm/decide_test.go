package addstudyarm_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/trial/command/addstudyarm"
	"github.com/clinforge/trialcore/trial/core"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenInitializedDesign(designID uuid.UUID) core.DomainEvents {
	return core.DomainEvents{
		core.BuildStudyDesignInitialized(designID, uuid.New(), "Oncology Pilot", "system", fixedTime),
	}
}

func Test_Decide_AddsAnArmToAnInitializedDesign(t *testing.T) {
	designID := uuid.New()
	command := addstudyarm.BuildCommand(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", fixedTime)

	result, err := addstudyarm.Decide(givenInitializedDesign(designID), command)

	require.NoError(t, err)
	require.True(t, result.HasEventsToAppend())
	assert.Equal(t, core.StudyArmAddedEventType, result.Events[0].IsEventType())
}

func Test_Decide_RejectsAnUninitializedDesign(t *testing.T) {
	command := addstudyarm.BuildCommand(uuid.New(), uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", fixedTime)

	result, err := addstudyarm.Decide(core.DomainEvents{}, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
	assert.True(t, core.IsValidationError(result.HasError()))
}

func Test_Decide_RejectsADuplicateArmName(t *testing.T) {
	designID := uuid.New()
	history := append(givenInitializedDesign(designID),
		core.BuildStudyArmAdded(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 120, "alice", fixedTime))
	command := addstudyarm.BuildCommand(designID, uuid.New(), "Treatment A", "EXPERIMENTAL", 60, "alice", fixedTime)

	result, err := addstudyarm.Decide(history, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}

func Test_Decide_RejectsNonPositiveTargetEnrollment(t *testing.T) {
	designID := uuid.New()
	command := addstudyarm.BuildCommand(designID, uuid.New(), "Placebo", "CONTROL", 0, "alice", fixedTime)

	result, err := addstudyarm.Decide(givenInitializedDesign(designID), command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}
