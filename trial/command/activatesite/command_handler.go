package activatesite

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

// CommandHandler executes ActivateSite commands through the shared command processor.
type CommandHandler struct {
	processor *shell.CommandProcessor
}

// NewCommandHandler creates a new CommandHandler backed by the given processor.
func NewCommandHandler(processor *shell.CommandProcessor) CommandHandler {
	return CommandHandler{processor: processor}
}

// Handle runs the read-decide-append cycle for one ActivateSite command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	return h.processor.Execute(ctx, command.SiteID, CommandType,
		shell.CommandMetadata(uuid.New(), command.IssuedBy),
		func(history core.DomainEvents) (core.DecisionResult, error) {
			return Decide(history, command)
		})
}

// RegisterWith binds this handler into a command dispatcher.
func (h CommandHandler) RegisterWith(dispatcher *shell.CommandDispatcher) error {
	return dispatcher.Register(CommandType, func(ctx context.Context, raw any) (shell.HandlerResult, error) {
		command, ok := raw.(Command)
		if !ok {
			return shell.HandlerResult{}, shell.ErrInvalidCommandPayload
		}

		return h.Handle(ctx, command)
	})
}
