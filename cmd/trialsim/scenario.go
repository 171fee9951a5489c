package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/command/activateprotocolversion"
	"github.com/clinforge/trialcore/trial/command/activatesite"
	"github.com/clinforge/trialcore/trial/command/addstudyarm"
	"github.com/clinforge/trialcore/trial/command/approvedocument"
	"github.com/clinforge/trialcore/trial/command/approveprotocolversion"
	"github.com/clinforge/trialcore/trial/command/assignsiteuser"
	"github.com/clinforge/trialcore/trial/command/changepatientstatus"
	"github.com/clinforge/trialcore/trial/command/changestudystatus"
	"github.com/clinforge/trialcore/trial/command/createprotocolversion"
	"github.com/clinforge/trialcore/trial/command/createstudy"
	"github.com/clinforge/trialcore/trial/command/definevisit"
	"github.com/clinforge/trialcore/trial/command/enrollpatient"
	"github.com/clinforge/trialcore/trial/command/registerpatient"
	"github.com/clinforge/trialcore/trial/command/registersite"
	"github.com/clinforge/trialcore/trial/command/submitprotocolversion"
	"github.com/clinforge/trialcore/trial/command/supersededocument"
	"github.com/clinforge/trialcore/trial/command/updatestudydetails"
	"github.com/clinforge/trialcore/trial/command/uploaddocument"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/saga/designsetup"
	"github.com/clinforge/trialcore/trial/shell"
)

const (
	sponsorUser     = "dr.vasquez"
	coordinatorUser = "coordinator.lee"
	regulatorUser   = "regulatory.chen"
)

// scenarioIDs holds the aggregate ids the scenario created, so the report
// can look them up in the views afterwards.
type scenarioIDs struct {
	studyID         uuid.UUID
	siteID          uuid.UUID
	patientID       uuid.UUID
	firstVersionID  uuid.UUID
	secondVersionID uuid.UUID
	firstDocumentID uuid.UUID
	finalDocumentID uuid.UUID
}

// runScenario walks one study through its lifecycle: creation, protocol
// versioning with supersession, site activation, patient enrollment, and
// document turnover. Every command goes through the dispatcher, the same
// entry point an API layer would use.
func runScenario(ctx context.Context, dispatcher *shell.CommandDispatcher) (scenarioIDs, error) {
	ids := scenarioIDs{
		studyID:         uuid.New(),
		siteID:          uuid.New(),
		patientID:       uuid.New(),
		firstVersionID:  uuid.New(),
		secondVersionID: uuid.New(),
		firstDocumentID: uuid.New(),
		finalDocumentID: uuid.New(),
	}

	now := time.Now()
	newSponsor := "Helix Therapeutics"
	experimentalArmID := uuid.New()

	steps := []struct {
		commandType string
		command     any
	}{
		{createstudy.CommandType, createstudy.BuildCommand(
			ids.studyID, "Atezolizumab Combination Study", "Helix Labs", "HLX-2025-014", "PHASE_2", sponsorUser, now)},
		{updatestudydetails.CommandType, updatestudydetails.BuildCommand(
			ids.studyID, nil, &newSponsor, nil, sponsorUser, now)},

		{addstudyarm.CommandType, addstudyarm.BuildCommand(
			designsetup.DesignIDFor(ids.studyID), experimentalArmID, "Atezolizumab + SoC", "EXPERIMENTAL", 120, sponsorUser, now)},
		{addstudyarm.CommandType, addstudyarm.BuildCommand(
			designsetup.DesignIDFor(ids.studyID), uuid.New(), "Standard of Care", "CONTROL", 120, sponsorUser, now)},
		{definevisit.CommandType, definevisit.BuildCommand(
			designsetup.DesignIDFor(ids.studyID), uuid.New(), uuid.Nil,
			"Screening", -14, 3, 0, "SCREENING", sponsorUser, now)},
		{definevisit.CommandType, definevisit.BuildCommand(
			designsetup.DesignIDFor(ids.studyID), uuid.New(), experimentalArmID,
			"Week 4 Follow-up", 28, 2, 2, "TREATMENT", sponsorUser, now)},

		{createprotocolversion.CommandType, createprotocolversion.BuildCommand(
			ids.firstVersionID, ids.studyID, "1.0", "initial protocol", sponsorUser, now)},
		{submitprotocolversion.CommandType, submitprotocolversion.BuildCommand(
			ids.firstVersionID, sponsorUser, now)},
		{approveprotocolversion.CommandType, approveprotocolversion.BuildCommand(
			ids.firstVersionID, regulatorUser, now)},
		{activateprotocolversion.CommandType, activateprotocolversion.BuildCommand(
			ids.firstVersionID, uuid.Nil, regulatorUser, now)},

		{changestudystatus.CommandType, changestudystatus.BuildCommand(
			ids.studyID, core.StudyStatusRegulatorySubmission, "", sponsorUser, now)},
		{changestudystatus.CommandType, changestudystatus.BuildCommand(
			ids.studyID, core.StudyStatusApproved, "", regulatorUser, now)},
		{changestudystatus.CommandType, changestudystatus.BuildCommand(
			ids.studyID, core.StudyStatusActive, "", sponsorUser, now)},

		{registersite.CommandType, registersite.BuildCommand(
			ids.siteID, ids.studyID, "Riverside Medical Center", "RMC-01", coordinatorUser, now)},
		{activatesite.CommandType, activatesite.BuildCommand(
			ids.siteID, coordinatorUser, now)},
		{assignsiteuser.CommandType, assignsiteuser.BuildCommand(
			ids.siteID, "dr.okafor", "INVESTIGATOR", coordinatorUser, now)},

		{registerpatient.CommandType, registerpatient.BuildCommand(
			ids.patientID, "SCR-1001", time.Date(1982, 7, 19, 0, 0, 0, 0, time.UTC),
			"", "p1001@example.org", coordinatorUser, now)},
		{enrollpatient.CommandType, enrollpatient.BuildCommand(
			ids.patientID, ids.studyID, ids.siteID, "ENR-0001", coordinatorUser, now)},
		{changepatientstatus.CommandType, changepatientstatus.BuildCommand(
			ids.patientID, core.PatientStatusActive, "", coordinatorUser, now)},

		{createprotocolversion.CommandType, createprotocolversion.BuildCommand(
			ids.secondVersionID, ids.studyID, "2.0", "dose escalation amendment", sponsorUser, now)},
		{submitprotocolversion.CommandType, submitprotocolversion.BuildCommand(
			ids.secondVersionID, sponsorUser, now)},
		{approveprotocolversion.CommandType, approveprotocolversion.BuildCommand(
			ids.secondVersionID, regulatorUser, now)},
		{activateprotocolversion.CommandType, activateprotocolversion.BuildCommand(
			ids.secondVersionID, ids.firstVersionID, regulatorUser, now)},

		{uploaddocument.CommandType, uploaddocument.BuildCommand(
			ids.firstDocumentID, ids.studyID, "Informed Consent Form", "CONSENT", "icf_v1.pdf", coordinatorUser, now)},
		{approvedocument.CommandType, approvedocument.BuildCommand(
			ids.firstDocumentID, "approved for enrollment", regulatorUser, now)},
		{uploaddocument.CommandType, uploaddocument.BuildCommand(
			ids.finalDocumentID, ids.studyID, "Informed Consent Form", "CONSENT", "icf_v2.pdf", coordinatorUser, now)},
		{approvedocument.CommandType, approvedocument.BuildCommand(
			ids.finalDocumentID, "amended consent approved", regulatorUser, now)},
		{supersededocument.CommandType, supersededocument.BuildCommand(
			ids.firstDocumentID, ids.finalDocumentID, "replaced by amended consent", regulatorUser, now)},
	}

	for _, step := range steps {
		if _, err := dispatcher.Dispatch(ctx, step.commandType, step.command); err != nil {
			return scenarioIDs{}, fmt.Errorf("dispatching %s: %w", step.commandType, err)
		}
	}

	return ids, nil
}
