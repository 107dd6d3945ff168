// Package ivr runs one webhook turn of a voice call: it loads the call's
// state, hands the turn to the requested step and returns the markup the
// voice platform should play next.
package ivr

import (
	"PayIVR/entity"
	"context"
	"time"
)

// StepName identifies a step in the callback URL.
type StepName string

// StepResult represents the outcome of one step.
type StepResult struct {
	// UpdateState persists call.State after the step returns.
	UpdateState bool
	// Checked is set by steps that validated caller input; Valid is the verdict.
	Checked bool
	Valid   bool
	Error   error
}

// Step defines the interface for a single call-flow step.
type Step interface {
	// Name returns the identifier carried in the callback URL.
	Name() StepName

	// Stateless steps run without loading the call state.
	Stateless() bool

	// Handle renders the step into call's response.
	Handle(ctx context.Context, call *Call) StepResult
}

// ExistingStateStep is implemented by steps that only act on a call whose
// state is already stored. The engine loads state for them but never
// creates it, so a late repeated delivery cannot resurrect a finished call.
type ExistingStateStep interface {
	ExistingStateOnly() bool
}

// Workflow defines the set of steps a call can be routed to.
type Workflow interface {
	GetStep(name StepName) (Step, bool)
}

// Store is the keyed store holding call state and payment results.
// GetItem and UpdateItem report a missing item with repository.ErrItemNotFound.
type Store interface {
	MapExists(ctx context.Context, name string) (bool, error)
	EnsureMap(ctx context.Context, name string) error
	GetItem(ctx context.Context, mapName, key string) (*entity.SyncItem, error)
	CreateItem(ctx context.Context, mapName, key string, data any, ttl time.Duration) (*entity.SyncItem, error)
	UpdateItem(ctx context.Context, item *entity.SyncItem, data any) (*entity.SyncItem, error)
	DeleteItem(ctx context.Context, item *entity.SyncItem) error
}

// EventSink receives a notification for every handled turn.
type EventSink interface {
	Broadcast(event entity.CallEvent)
}

// Recorder counts handled turns and failures.
type Recorder interface {
	StepHandled(step string)
	ValidationFailed(step string)
	StoreFailed(op string)
}

type nopRecorder struct{}

func (nopRecorder) StepHandled(string)      {}
func (nopRecorder) ValidationFailed(string) {}
func (nopRecorder) StoreFailed(string)      {}
