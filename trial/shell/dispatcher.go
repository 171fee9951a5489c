package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownCommandType is returned when dispatching a command type no handler was registered for.
	ErrUnknownCommandType = errors.New("unknown command type")

	// ErrDuplicateCommandType is returned when two handlers register the same command type.
	ErrDuplicateCommandType = errors.New("command type already registered")
)

// DispatchFunc handles one type-erased command. The command packages register
// thin adapters that assert the concrete command type.
type DispatchFunc func(ctx context.Context, command any) (HandlerResult, error)

// CommandDispatcher routes commands to their registered handlers by command
// type. It exists for callers that treat commands uniformly, such as the
// design setup coordinator and the simulation binary; direct use of the typed
// handlers is equally fine.
type CommandDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]DispatchFunc
}

// NewCommandDispatcher creates an empty dispatcher.
func NewCommandDispatcher() *CommandDispatcher {
	return &CommandDispatcher{handlers: make(map[string]DispatchFunc)}
}

// Register binds a command type to its handler.
func (d *CommandDispatcher) Register(commandType string, handle DispatchFunc) error {
	if commandType == "" {
		return ErrEmptyCommandType
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[commandType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommandType, commandType)
	}

	d.handlers[commandType] = handle

	return nil
}

// Dispatch routes a command to its handler.
func (d *CommandDispatcher) Dispatch(ctx context.Context, commandType string, command any) (HandlerResult, error) {
	d.mu.RLock()
	handle, exists := d.handlers[commandType]
	d.mu.RUnlock()

	if !exists {
		return HandlerResult{}, fmt.Errorf("%w: %s", ErrUnknownCommandType, commandType)
	}

	return handle(ctx, command)
}
