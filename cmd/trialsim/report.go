package main

import (
	"context"
	"fmt"
	"log"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/saga/designsetup"
	"github.com/clinforge/trialcore/trial/shell"
)

// printReport queries every view once, proving the projected state matches
// the scenario that was dispatched.
func printReport(ctx context.Context, models *readModels, ids scenarioIDs) error {
	study, err := models.studies.FindByID(ctx, ids.studyID.String())
	if err != nil {
		return fmt.Errorf("loading study view: %w", err)
	}
	log.Printf("study %s (%s): sponsor=%s status=%s", study.Name, study.ProtocolNumber, study.Sponsor, study.Status)

	resolvedID, err := models.studies.FindStudyIDByProtocolNumber(ctx, study.ProtocolNumber)
	if err != nil {
		return fmt.Errorf("resolving protocol number: %w", err)
	}
	log.Printf("protocol number %s resolves to study %s", study.ProtocolNumber, resolvedID)

	site, err := models.sites.FindByID(ctx, ids.siteID.String())
	if err != nil {
		return fmt.Errorf("loading site view: %w", err)
	}
	assignments, err := models.sites.AssignmentsOf(ctx, ids.siteID.String())
	if err != nil {
		return fmt.Errorf("loading site assignments: %w", err)
	}
	log.Printf("site %s (%s): status=%s assignments=%d", site.Name, site.SiteNumber, site.Status, len(assignments))

	patient, err := models.patients.FindByID(ctx, ids.patientID.String())
	if err != nil {
		return fmt.Errorf("loading patient view: %w", err)
	}
	enrollments, err := models.patients.EnrollmentsOf(ctx, ids.patientID.String())
	if err != nil {
		return fmt.Errorf("loading enrollments: %w", err)
	}
	log.Printf("patient %s: status=%s enrollments=%d", patient.ScreeningNumber, patient.Status, len(enrollments))

	versions, err := models.versions.VersionsOfStudy(ctx, ids.studyID.String())
	if err != nil {
		return fmt.Errorf("loading protocol versions: %w", err)
	}
	for _, version := range versions {
		log.Printf("protocol version %s: status=%s", version.VersionNumber, version.Status)
	}

	currentDocuments, err := models.documents.CurrentDocumentsOfStudy(ctx, ids.studyID.String())
	if err != nil {
		return fmt.Errorf("loading current documents: %w", err)
	}
	for _, document := range currentDocuments {
		log.Printf("current document %s (%s)", document.DocumentName, document.FileName)
	}

	return nil
}

// printDesignSummary replays the study design through the snapshot-aware
// reader. The second read comes back from the snapshot the first one stored.
func printDesignSummary(ctx context.Context, store shell.SnapshotCapableEventStore, ids scenarioIDs, logger eventstore.Logger) error {
	designReader, err := shell.NewSnapshotStateReader(store, "StudyDesign", core.FoldStudyDesign,
		shell.WithSnapshotReaderLogger[core.StudyDesignState](logger))
	if err != nil {
		return fmt.Errorf("creating design state reader: %w", err)
	}

	designID := designsetup.DesignIDFor(ids.studyID)

	design, version, err := designReader.Read(ctx, designID)
	if err != nil {
		return fmt.Errorf("reading study design state: %w", err)
	}
	log.Printf("study design %s: arms=%d visits=%d (stream version %d)", designID, design.ArmCount, design.VisitCount, version)

	return nil
}
