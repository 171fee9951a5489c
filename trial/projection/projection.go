package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

// ErrProjectionApplyFailed is the sentinel wrapped by every ProjectionError.
var ErrProjectionApplyFailed = errors.New("applying event to projection failed")

// Projection is a read model fed by the engine.
//
// Apply must be transactional per event: either the whole update for one
// event is visible or none of it. The engine records the checkpoint only
// after Apply returned nil, so a failed event is re-attempted on the next
// poll and the write side stays unaffected.
type Projection interface {
	Name() string
	Handles() []core.EventTypeString
	Apply(ctx context.Context, event core.DomainEvent) error
}

// ProjectionError reports a failed apply, scoped to the exact event so
// operators can pinpoint and replay it.
type ProjectionError struct {
	Projection     string
	EventType      string
	AggregateID    string
	GlobalPosition eventstore.GlobalPositionUint64
	Cause          error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projection %s failed on %s for aggregate %s at position %d: %v",
		e.Projection, e.EventType, e.AggregateID, e.GlobalPosition, e.Cause)
}

func (e *ProjectionError) Unwrap() error {
	return errors.Join(ErrProjectionApplyFailed, e.Cause)
}
