// Package designsetup reacts to new studies by initializing their design
// companion aggregate.
//
// The coordinator derives the design id deterministically from the study id,
// so a redelivered StudyCreated event targets the same design stream and the
// initialization stays idempotent end to end.
package designsetup

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/command/initializestudydesign"
	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

// SystemIssuer marks commands issued by the coordinator rather than a person.
const SystemIssuer = "system"

const (
	logMsgDesignAlreadyInitialized = "study design already initialized, nothing to do"
	logMsgDesignInitialized        = "study design initialized for new study"
	logMsgLostInitializationRace   = "another writer initialized the design stream first"

	logAttrStudyID  = "study_id"
	logAttrDesignID = "design_id"
)

// designNamespace is the fixed namespace for deriving design ids from study ids.
var designNamespace = uuid.MustParse("9f2c1b44-7a3e-4d5a-9c61-2f8e0d3b6a17")

var ErrNilCommandProcessor = errors.New("design setup coordinator requires a command processor")

// DesignIDFor derives the design aggregate id of a study. The derivation is
// a pure function of the study id, so every delivery of the same StudyCreated
// event resolves to the same design stream.
func DesignIDFor(studyID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(designNamespace, []byte(studyID.String()))
}

// Coordinator subscribes to published events and issues the follow-up
// command for each new study.
type Coordinator struct {
	handler          initializestudydesign.CommandHandler
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger attaches a logger.
func WithCoordinatorLogger(logger shell.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithCoordinatorContextualLogger attaches a context-aware logger.
func WithCoordinatorContextualLogger(logger shell.ContextualLogger) CoordinatorOption {
	return func(c *Coordinator) {
		c.contextualLogger = logger
	}
}

// NewCoordinator creates a coordinator issuing commands through the given processor.
func NewCoordinator(processor *shell.CommandProcessor, options ...CoordinatorOption) (*Coordinator, error) {
	if processor == nil {
		return nil, ErrNilCommandProcessor
	}

	coordinator := &Coordinator{
		handler: initializestudydesign.NewCommandHandler(processor),
	}

	for _, option := range options {
		option(coordinator)
	}

	return coordinator, nil
}

// SubscribeTo registers the coordinator's reaction on the bus.
func (c *Coordinator) SubscribeTo(bus *shell.InProcessEventBus) {
	bus.Subscribe(c.ReactTo)
}

// ReactTo handles one published event. Events other than StudyCreated are
// ignored. Errors are returned to the bus, which logs and swallows them, so
// a failed reaction never affects the command that triggered it.
func (c *Coordinator) ReactTo(ctx context.Context, event core.DomainEvent) error {
	studyCreated, isStudyCreated := event.(core.StudyCreated)
	if !isStudyCreated {
		return nil
	}

	studyID, err := uuid.Parse(studyCreated.StudyID)
	if err != nil {
		return fmt.Errorf("parsing study id %s: %w", studyCreated.StudyID, err)
	}

	designID := DesignIDFor(studyID)

	command := initializestudydesign.BuildCommand(
		designID, studyID, studyCreated.Name, SystemIssuer, studyCreated.OccurredAt)

	result, err := c.handler.Handle(ctx, command)

	if errors.Is(err, eventstore.ErrStreamAlreadyInitialized) {
		c.logInfo(ctx, logMsgLostInitializationRace,
			logAttrStudyID, studyCreated.StudyID, logAttrDesignID, designID.String())

		return nil
	}

	if err != nil {
		return err
	}

	if result.Idempotent {
		c.logInfo(ctx, logMsgDesignAlreadyInitialized,
			logAttrStudyID, studyCreated.StudyID, logAttrDesignID, designID.String())

		return nil
	}

	c.logInfo(ctx, logMsgDesignInitialized,
		logAttrStudyID, studyCreated.StudyID, logAttrDesignID, designID.String())

	return nil
}

func (c *Coordinator) logInfo(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)

		return
	}

	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
