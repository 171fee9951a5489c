package activateprotocolversion

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/shell"
)

// CommandHandler executes ActivateProtocolVersion commands through the shared command processor.
//
// Activation touches up to two streams: the version being activated and the
// version it supersedes. The streams are separate aggregates, so the two
// appends are not atomic; the supersession runs after the activation
// succeeded and is itself retried and idempotent, which makes the pair safe
// to re-run.
type CommandHandler struct {
	processor *shell.CommandProcessor
}

// NewCommandHandler creates a new CommandHandler backed by the given processor.
func NewCommandHandler(processor *shell.CommandProcessor) CommandHandler {
	return CommandHandler{processor: processor}
}

// Handle activates the version and then supersedes the previously active one, if named.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	metadata := shell.CommandMetadata(uuid.New(), command.IssuedBy)

	result, err := h.processor.Execute(ctx, command.VersionID, CommandType, metadata,
		func(history core.DomainEvents) (core.DecisionResult, error) {
			return Decide(history, command)
		})
	if err != nil {
		return result, err
	}

	if command.PreviousActiveVersionID == uuid.Nil {
		return result, nil
	}

	supersedeResult, err := h.processor.Execute(ctx, command.PreviousActiveVersionID, CommandType,
		metadata.CausedBy(metadata.MessageID),
		func(history core.DomainEvents) (core.DecisionResult, error) {
			return DecideSupersession(history, command)
		})
	if err != nil {
		return supersedeResult, err
	}

	return result, nil
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
