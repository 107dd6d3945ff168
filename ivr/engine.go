package ivr

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/twiml"
	"context"
	"errors"
	"log/slog"
	"time"
)

// CallEngine dispatches webhook turns to workflow steps.
type CallEngine struct {
	workflow Workflow
	store    Store
	opts     Options
	events   EventSink
	metrics  Recorder
	log      *slog.Logger
}

func NewCallEngine(workflow Workflow, store Store, opts Options, log *slog.Logger) *CallEngine {
	return &CallEngine{
		workflow: workflow,
		store:    store,
		opts:     opts,
		metrics:  nopRecorder{},
		log:      log.With(sl.Module("ivr.engine")),
	}
}

func (e *CallEngine) SetEventSink(events EventSink) {
	e.events = events
}

func (e *CallEngine) SetRecorder(metrics Recorder) {
	if metrics != nil {
		e.metrics = metrics
	}
}

// Handle runs one turn. It always returns a document; an unknown step gets an
// empty one and store failures degrade to an empty call state.
func (e *CallEngine) Handle(ctx context.Context, req *entity.StepRequest) *twiml.Response {
	call := NewCall(req, e.opts, e.log)
	log := call.Log()

	step, ok := e.workflow.GetStep(call.Step)
	if !ok {
		log.Warn("unknown step")
		return twiml.NewResponse()
	}
	e.metrics.StepHandled(string(call.Step))
	log.Debug("handling step", sl.Secret("digits", call.Digits))

	var item *entity.SyncItem
	if !step.Stateless() {
		item = e.loadState(ctx, call, !existingStateOnly(step))
	}

	result := step.Handle(ctx, call)
	if result.Error != nil {
		log.Error("step failed", sl.Err(result.Error))
	}
	if result.Checked && !result.Valid {
		e.metrics.ValidationFailed(string(call.Step))
	}
	if result.UpdateState && call.State != nil {
		e.saveState(ctx, call, item)
	}

	e.publish(call, result)
	return call.Response()
}

func existingStateOnly(step Step) bool {
	s, ok := step.(ExistingStateStep)
	return ok && s.ExistingStateOnly()
}

// loadState fills call.State from the store. A missing record is created
// only when create is set.
func (e *CallEngine) loadState(ctx context.Context, call *Call, create bool) *entity.SyncItem {
	log := call.Log()
	mapName := e.opts.CacheMap
	call.State = &entity.CallState{PaymentAmount: call.PaymentAmount}

	if !call.CacheReady {
		exists, err := e.store.MapExists(ctx, mapName)
		if err != nil {
			log.Warn("check call state map", sl.Err(err))
			e.metrics.StoreFailed("map_exists")
		}
		if !exists {
			if err = e.store.EnsureMap(ctx, mapName); err != nil {
				log.Error("create call state map", sl.Err(err))
				e.metrics.StoreFailed("ensure_map")
				return nil
			}
		}
		call.CacheReady = true
	}

	item, err := e.store.GetItem(ctx, mapName, call.Sid)
	switch {
	case err == nil:
		if err = item.Decode(call.State); err != nil {
			log.Error("decode call state", sl.Err(err))
		}
		return item
	case errors.Is(err, repository.ErrItemNotFound):
		if !create {
			log.Debug("no call state, not creating")
			return nil
		}
		log.Debug("no call state yet")
	default:
		log.Error("fetch call state", sl.Err(err))
		e.metrics.StoreFailed("get")
		return nil
	}

	item, err = e.store.CreateItem(ctx, mapName, call.Sid, call.State, e.opts.StateTTL)
	if err != nil {
		log.Error("create call state", sl.Err(err))
		e.metrics.StoreFailed("create")
		return nil
	}
	log.Debug("call state created")
	return item
}

func (e *CallEngine) saveState(ctx context.Context, call *Call, item *entity.SyncItem) {
	log := call.Log()
	if item == nil {
		log.Warn("call state not persisted: store unavailable")
		return
	}
	if _, err := e.store.UpdateItem(ctx, item, call.State); err != nil {
		log.Error("update call state", sl.Err(err))
		e.metrics.StoreFailed("update")
	}
}

func (e *CallEngine) publish(call *Call, result StepResult) {
	if e.events == nil {
		return
	}
	event := entity.CallEvent{
		Type:     entity.EventStep,
		CallSid:  call.Sid,
		Step:     string(call.Step),
		PrevStep: string(call.PrevStep),
		Time:     time.Now(),
	}
	if result.Checked {
		valid := result.Valid
		event.Valid = &valid
	}
	e.events.Broadcast(event)
}
