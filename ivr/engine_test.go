package ivr

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

// memStore keeps items in memory; down makes every call fail.
type memStore struct {
	mu    sync.Mutex
	maps  map[string]bool
	items map[string]*entity.SyncItem
	down  bool
}

func newMemStore() *memStore {
	return &memStore{maps: map[string]bool{}, items: map[string]*entity.SyncItem{}}
}

func (s *memStore) MapExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return false, errStoreDown
	}
	return s.maps[name], nil
}

func (s *memStore) EnsureMap(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errStoreDown
	}
	s.maps[name] = true
	return nil
}

func (s *memStore) GetItem(_ context.Context, mapName, key string) (*entity.SyncItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errStoreDown
	}
	item, ok := s.items[mapName+"/"+key]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *memStore) CreateItem(_ context.Context, mapName, key string, data any, _ time.Duration) (*entity.SyncItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errStoreDown
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	item := &entity.SyncItem{Map: mapName, Key: key, Data: raw, Revision: 1}
	s.items[mapName+"/"+key] = item
	copied := *item
	return &copied, nil
}

func (s *memStore) UpdateItem(_ context.Context, item *entity.SyncItem, data any) (*entity.SyncItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errStoreDown
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	updated := &entity.SyncItem{Map: item.Map, Key: item.Key, Data: raw, Revision: item.Revision + 1}
	s.items[item.Map+"/"+item.Key] = updated
	return updated, nil
}

func (s *memStore) DeleteItem(_ context.Context, item *entity.SyncItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, item.Map+"/"+item.Key)
	return nil
}

func (s *memStore) state(t *testing.T, key string) *entity.CallState {
	t.Helper()
	item, ok := s.items["FunctionsCache/"+key]
	if !ok {
		return nil
	}
	state := &entity.CallState{}
	require.NoError(t, item.Decode(state))
	return state
}

// zipStep stores the digits as the zip code when they are five long.
type zipStep struct{}

func (zipStep) Name() StepName  { return "collectZip" }
func (zipStep) Stateless() bool { return false }

func (zipStep) Handle(_ context.Context, call *Call) StepResult {
	if len(call.Digits) != 5 {
		call.Say().Text("again")
		call.RedirectTo("collectZip")
		return StepResult{Checked: true}
	}
	call.State.ZipCode = call.Digits
	call.Say().Text("thanks")
	return StepResult{UpdateState: true, Checked: true, Valid: true}
}

// pingStep must run without state.
type pingStep struct {
	sawState bool
}

func (p *pingStep) Name() StepName  { return "ping" }
func (p *pingStep) Stateless() bool { return true }

func (p *pingStep) Handle(_ context.Context, call *Call) StepResult {
	p.sawState = call.State != nil
	call.Hangup()
	return StepResult{Error: errors.New("ping failed")}
}

// chargeStep reads stored state and must not create any.
type chargeStep struct {
	sawCard string
}

func (c *chargeStep) Name() StepName          { return "charge" }
func (c *chargeStep) Stateless() bool         { return false }
func (c *chargeStep) ExistingStateOnly() bool { return true }

func (c *chargeStep) Handle(_ context.Context, call *Call) StepResult {
	c.sawCard = call.State.CardNumber
	return StepResult{}
}

type stepSet map[StepName]Step

func (s stepSet) GetStep(name StepName) (Step, bool) {
	step, ok := s[name]
	return step, ok
}

type events struct {
	mu  sync.Mutex
	got []entity.CallEvent
}

func (e *events) Broadcast(event entity.CallEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, event)
}

type counter struct {
	steps, failures, store map[string]int
}

func newCounter() *counter {
	return &counter{steps: map[string]int{}, failures: map[string]int{}, store: map[string]int{}}
}

func (c *counter) StepHandled(step string)      { c.steps[step]++ }
func (c *counter) ValidationFailed(step string) { c.failures[step]++ }
func (c *counter) StoreFailed(op string)        { c.store[op]++ }

func newEngine(store Store) (*CallEngine, *pingStep) {
	ping := &pingStep{}
	workflow := stepSet{"collectZip": zipStep{}, "ping": ping}
	opts := testOptions()
	opts.StateTTL = time.Hour
	return NewCallEngine(workflow, store, opts, discard()), ping
}

func TestEngineUnknownStep(t *testing.T) {
	store := newMemStore()
	engine, _ := newEngine(store)
	rec := newCounter()
	engine.SetRecorder(rec)

	resp := engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "nope"})
	assert.True(t, resp.IsEmpty())
	assert.Empty(t, rec.steps)
	assert.Empty(t, store.items)
}

func TestEnginePersistsValidEntry(t *testing.T) {
	store := newMemStore()
	engine, _ := newEngine(store)
	feed := &events{}
	engine.SetEventSink(feed)
	rec := newCounter()
	engine.SetRecorder(rec)

	req := &entity.StepRequest{CallSid: "CA1", Step: "collectZip", PaymentAmount: "10.00"}

	req.Digits = "123"
	engine.Handle(context.Background(), req)
	assert.True(t, store.maps["FunctionsCache"], "map is created on first turn")
	state := store.state(t, "CA1")
	require.NotNil(t, state)
	assert.Equal(t, "10.00", state.PaymentAmount)
	assert.Empty(t, state.ZipCode)

	req.Digits = "94105"
	req.IsSyncMapCreated = true
	req.PaymentAmount = ""
	engine.Handle(context.Background(), req)
	state = store.state(t, "CA1")
	assert.Equal(t, "94105", state.ZipCode)
	assert.Equal(t, "10.00", state.PaymentAmount, "stored amount survives later turns")

	assert.Equal(t, 2, rec.steps["collectZip"])
	assert.Equal(t, 1, rec.failures["collectZip"])

	require.Len(t, feed.got, 2)
	assert.Equal(t, entity.EventStep, feed.got[0].Type)
	require.NotNil(t, feed.got[0].Valid)
	assert.False(t, *feed.got[0].Valid)
	require.NotNil(t, feed.got[1].Valid)
	assert.True(t, *feed.got[1].Valid)
}

func TestEngineStatelessStep(t *testing.T) {
	store := newMemStore()
	engine, ping := newEngine(store)
	feed := &events{}
	engine.SetEventSink(feed)

	resp := engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "ping"})
	assert.False(t, ping.sawState)
	assert.Empty(t, store.items)
	assert.Empty(t, store.maps)
	assert.False(t, resp.IsEmpty())

	require.Len(t, feed.got, 1)
	assert.Nil(t, feed.got[0].Valid)
}

func TestEngineDegradesWhenStoreDown(t *testing.T) {
	store := newMemStore()
	store.down = true
	engine, _ := newEngine(store)
	rec := newCounter()
	engine.SetRecorder(rec)

	resp := engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "collectZip", Digits: "94105"})
	require.False(t, resp.IsEmpty())
	data, err := resp.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "thanks")
	assert.Equal(t, 1, rec.store["map_exists"])
	assert.Equal(t, 1, rec.store["ensure_map"])

	rec = newCounter()
	engine.SetRecorder(rec)
	engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "collectZip", Digits: "94105", IsSyncMapCreated: true})
	assert.Equal(t, 1, rec.store["get"])
	assert.Zero(t, rec.store["update"], "nothing to update without a loaded item")
}

func TestEngineExistingStateStepDoesNotCreateState(t *testing.T) {
	store := newMemStore()
	charge := &chargeStep{}
	engine := NewCallEngine(stepSet{"charge": charge}, store, testOptions(), discard())

	engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "charge", IsSyncMapCreated: true})
	assert.Nil(t, store.state(t, "CA1"), "a late delivery leaves no state behind")
	assert.Empty(t, charge.sawCard)

	_, err := store.CreateItem(context.Background(), "FunctionsCache", "CA1", entity.CallState{CardNumber: "4111111111111111"}, time.Hour)
	require.NoError(t, err)
	engine.Handle(context.Background(), &entity.StepRequest{CallSid: "CA1", Step: "charge", IsSyncMapCreated: true})
	assert.Equal(t, "4111111111111111", charge.sawCard)
}
