package core

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"PayIVR/internal/twiml"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items map[string][]byte
	err   error
}

func (s *fakeStore) Ping(context.Context) error { return s.err }

func (s *fakeStore) GetItem(_ context.Context, mapName, key string) (*entity.SyncItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.items[key]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return &entity.SyncItem{Map: mapName, Key: key, Data: data}, nil
}

type fakeRepo struct {
	keys    map[string]string
	records map[string]*entity.PaymentRecord
	lookups int
}

func (r *fakeRepo) CheckApiKey(_ context.Context, key string) (string, error) {
	r.lookups++
	return r.keys[key], nil
}

func (r *fakeRepo) GetPaymentRecord(_ context.Context, callSid string) (*entity.PaymentRecord, error) {
	return r.records[callSid], nil
}

type fakeEngine struct{}

func (fakeEngine) Handle(_ context.Context, req *entity.StepRequest) *twiml.Response {
	r := twiml.NewResponse()
	r.Say("").Text(req.Step)
	return r
}

func newCore() *Core {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleStep(t *testing.T) {
	c := newCore()
	_, err := c.HandleStep(context.Background(), &entity.StepRequest{Step: "start"})
	assert.Error(t, err)

	c.SetCallEngine(fakeEngine{})
	resp, err := c.HandleStep(context.Background(), &entity.StepRequest{Step: "start"})
	require.NoError(t, err)
	assert.False(t, resp.IsEmpty())
}

func TestGetPaymentResult(t *testing.T) {
	live, err := json.Marshal(entity.PaymentResult{Success: true, Status: entity.PaymentCompleted, TransactionID: "tx-1"})
	require.NoError(t, err)

	c := newCore()
	c.SetStore(&fakeStore{items: map[string][]byte{"CA1": live}}, "PaymentResult")

	result, err := c.GetPaymentResult(context.Background(), "CA1")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", result.TransactionID)

	_, err = c.GetPaymentResult(context.Background(), "CA2")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.SetRepository(&fakeRepo{records: map[string]*entity.PaymentRecord{
		"CA2": {CallSid: "CA2", PaymentAmount: "9.00", Success: false, Error: "card declined", CreatedAt: created},
	}})

	result, err = c.GetPaymentResult(context.Background(), "CA2")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, result.Status)
	assert.Equal(t, "card declined", result.Error)
	assert.Equal(t, created, result.UpdatedAt)

	_, err = c.GetPaymentResult(context.Background(), "CA3")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestGetPaymentResultStoreError(t *testing.T) {
	c := newCore()
	c.SetStore(&fakeStore{err: errors.New("down")}, "PaymentResult")

	_, err := c.GetPaymentResult(context.Background(), "CA1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentNotFound)
	assert.Error(t, c.Health(context.Background()))
}

func TestAuthenticateByToken(t *testing.T) {
	c := newCore()
	c.SetAuthKey("root-key")

	user, err := c.AuthenticateByToken("root-key")
	require.NoError(t, err)
	assert.Equal(t, "internal", user.Username)

	_, err = c.AuthenticateByToken("other")
	assert.Error(t, err, "no repository configured")

	repo := &fakeRepo{keys: map[string]string{"k-1": "ops"}}
	c.SetRepository(repo)

	user, err = c.AuthenticateByToken("k-1")
	require.NoError(t, err)
	assert.Equal(t, "ops", user.Username)

	_, err = c.AuthenticateByToken("k-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lookups, "accepted keys are cached")

	_, err = c.AuthenticateByToken("unknown")
	assert.Error(t, err)
	_, err = c.AuthenticateByToken("")
	assert.Error(t, err)
}
