package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinforge/trialcore/trial/config"
	"github.com/clinforge/trialcore/trial/saga/designsetup"
	"github.com/clinforge/trialcore/trial/shell"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("trialsim failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("starting trial simulation with engine %q", cfg.Engine)

	store, err := buildEventStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating event store: %w", err)
	}

	bus := shell.NewInProcessEventBus(shell.WithBusLogger(logger))

	processor, err := shell.NewCommandProcessor(store,
		shell.WithPublisher(bus),
		shell.WithProcessorLogger(logger))
	if err != nil {
		return fmt.Errorf("creating command processor: %w", err)
	}

	coordinator, err := designsetup.NewCoordinator(processor,
		designsetup.WithCoordinatorLogger(logger))
	if err != nil {
		return fmt.Errorf("creating design setup coordinator: %w", err)
	}
	coordinator.SubscribeTo(bus)

	dispatcher := shell.NewCommandDispatcher()
	if err := registerHandlers(dispatcher, processor); err != nil {
		return fmt.Errorf("registering command handlers: %w", err)
	}

	readModels, err := buildReadModels(ctx, cfg, store, logger)
	if err != nil {
		return fmt.Errorf("creating projections: %w", err)
	}

	scenario, err := runScenario(ctx, dispatcher)
	if err != nil {
		return fmt.Errorf("running scenario: %w", err)
	}

	if err := readModels.engine.RunOnce(ctx); err != nil {
		return fmt.Errorf("projecting events: %w", err)
	}

	if err := printReport(ctx, readModels, scenario); err != nil {
		return fmt.Errorf("reading views: %w", err)
	}

	if err := printDesignSummary(ctx, store, scenario, logger); err != nil {
		return fmt.Errorf("reading design state: %w", err)
	}

	log.Printf("simulation finished")

	return nil
}
