package main

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/eventstore/memoryengine"
	"github.com/clinforge/trialcore/eventstore/postgresengine"
	"github.com/clinforge/trialcore/eventstore/sqliteengine"
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
	"github.com/clinforge/trialcore/trial/command/initializestudydesign"
	"github.com/clinforge/trialcore/trial/command/registerpatient"
	"github.com/clinforge/trialcore/trial/command/registersite"
	"github.com/clinforge/trialcore/trial/command/submitprotocolversion"
	"github.com/clinforge/trialcore/trial/command/supersededocument"
	"github.com/clinforge/trialcore/trial/command/updatestudydetails"
	"github.com/clinforge/trialcore/trial/command/uploaddocument"
	"github.com/clinforge/trialcore/trial/config"
	"github.com/clinforge/trialcore/trial/projection"
	"github.com/clinforge/trialcore/trial/projection/documentview"
	"github.com/clinforge/trialcore/trial/projection/patientview"
	"github.com/clinforge/trialcore/trial/projection/protocolversionview"
	"github.com/clinforge/trialcore/trial/projection/siteview"
	"github.com/clinforge/trialcore/trial/projection/studyview"
	"github.com/clinforge/trialcore/trial/shell"
)

// eventStore is what the simulation needs from an engine: the command side's
// stream operations, the projection engine's global feed, and the snapshot
// surface for snapshot-accelerated state reads.
type eventStore interface {
	shell.EventStore
	shell.SnapshotCapableEventStore
	projection.BatchReader
}

func buildEventStore(ctx context.Context, cfg config.Config, logger eventstore.Logger) (eventStore, error) {
	switch cfg.Engine {
	case config.EngineMemory:
		return memoryengine.NewEventStore(memoryengine.WithLogger(logger)), nil

	case config.EngineSQLite:
		store, err := sqliteengine.NewEventStoreFromFile(cfg.SQLitePath, sqliteengine.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		if err := store.CreateSchema(ctx); err != nil {
			return nil, err
		}

		return store, nil

	case config.EnginePostgresPGX:
		pool, err := cfg.Postgres.NewPGXPool(ctx)
		if err != nil {
			return nil, err
		}

		store, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		return store, nil

	case config.EnginePostgresSQLX:
		db, err := cfg.Postgres.OpenSQLX(ctx)
		if err != nil {
			return nil, err
		}

		store, err := postgresengine.NewEventStoreFromSQLX(db, postgresengine.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		return store, nil

	default:
		return nil, fmt.Errorf("unknown engine selection %q", cfg.Engine)
	}
}

func registerHandlers(dispatcher *shell.CommandDispatcher, processor *shell.CommandProcessor) error {
	registrations := []func(*shell.CommandDispatcher) error{
		createstudy.NewCommandHandler(processor).RegisterWith,
		updatestudydetails.NewCommandHandler(processor).RegisterWith,
		changestudystatus.NewCommandHandler(processor).RegisterWith,
		registerpatient.NewCommandHandler(processor).RegisterWith,
		enrollpatient.NewCommandHandler(processor).RegisterWith,
		changepatientstatus.NewCommandHandler(processor).RegisterWith,
		registersite.NewCommandHandler(processor).RegisterWith,
		activatesite.NewCommandHandler(processor).RegisterWith,
		assignsiteuser.NewCommandHandler(processor).RegisterWith,
		createprotocolversion.NewCommandHandler(processor).RegisterWith,
		submitprotocolversion.NewCommandHandler(processor).RegisterWith,
		approveprotocolversion.NewCommandHandler(processor).RegisterWith,
		activateprotocolversion.NewCommandHandler(processor).RegisterWith,
		uploaddocument.NewCommandHandler(processor).RegisterWith,
		approvedocument.NewCommandHandler(processor).RegisterWith,
		supersededocument.NewCommandHandler(processor).RegisterWith,
		initializestudydesign.NewCommandHandler(processor).RegisterWith,
		addstudyarm.NewCommandHandler(processor).RegisterWith,
		definevisit.NewCommandHandler(processor).RegisterWith,
	}

	for _, register := range registrations {
		if err := register(dispatcher); err != nil {
			return err
		}
	}

	return nil
}

// readModels bundles the views so the report can query them after the
// projection engine has caught up.
type readModels struct {
	engine    *projection.Engine
	studies   *studyview.Projection
	patients  *patientview.Projection
	sites     *siteview.Projection
	versions  *protocolversionview.Projection
	documents *documentview.Projection
}

func buildReadModels(ctx context.Context, cfg config.Config, store eventStore, logger eventstore.Logger) (*readModels, error) {
	viewDB, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening view database: %w", err)
	}

	dialect := goqu.Dialect("sqlite3")

	checkpoints, err := projection.NewSQLCheckpointStore(viewDB, dialect)
	if err != nil {
		return nil, err
	}

	if err := checkpoints.CreateSchema(ctx); err != nil {
		return nil, err
	}

	engine, err := projection.NewEngine(store, checkpoints,
		projection.WithBatchSize(cfg.Projection.BatchSize),
		projection.WithPollInterval(cfg.Projection.PollInterval),
		projection.WithEngineLogger(logger))
	if err != nil {
		return nil, err
	}

	models := &readModels{engine: engine}

	models.studies, err = studyview.NewProjection(viewDB, dialect, logger)
	if err != nil {
		return nil, err
	}

	models.patients, err = patientview.NewProjection(viewDB, dialect, logger)
	if err != nil {
		return nil, err
	}

	models.sites, err = siteview.NewProjection(viewDB, dialect, logger)
	if err != nil {
		return nil, err
	}

	models.versions, err = protocolversionview.NewProjection(viewDB, dialect, logger)
	if err != nil {
		return nil, err
	}

	models.documents, err = documentview.NewProjection(viewDB, dialect, logger)
	if err != nil {
		return nil, err
	}

	schemaOwners := []interface {
		CreateSchema(ctx context.Context) error
	}{
		models.studies, models.patients, models.sites, models.versions, models.documents,
	}

	for _, owner := range schemaOwners {
		if err := owner.CreateSchema(ctx); err != nil {
			return nil, err
		}
	}

	projections := []projection.Projection{
		models.studies, models.patients, models.sites, models.versions, models.documents,
	}

	for _, registered := range projections {
		if err := engine.Register(registered); err != nil {
			return nil, err
		}
	}

	return models, nil
}
