// Package payment settles collected payments on a pool of workers so the
// webhook can answer the caller right away.
package payment

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"PayIVR/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Store interface {
	GetItem(ctx context.Context, mapName, key string) (*entity.SyncItem, error)
	CreateItem(ctx context.Context, mapName, key string, data any, ttl time.Duration) (*entity.SyncItem, error)
	UpdateItem(ctx context.Context, item *entity.SyncItem, data any) (*entity.SyncItem, error)
	DeleteItem(ctx context.Context, item *entity.SyncItem) error
}

type Ledger interface {
	SavePaymentRecord(ctx context.Context, record *entity.PaymentRecord) error
}

type EventSink interface {
	Broadcast(event entity.CallEvent)
}

type Recorder interface {
	PaymentSettled(status string, took time.Duration)
	QueueDepth(n int)
}

type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds the work done for one payment.
	Timeout   time.Duration
	CacheMap  string
	ResultMap string
	ResultTTL time.Duration
}

type Service struct {
	conf    Config
	store   Store
	gateway Gateway
	ledger  Ledger
	events  EventSink
	metrics Recorder
	jobs    chan entity.PaymentJob
	wg      sync.WaitGroup
	log     *slog.Logger

	// base carries the values of the Start context without its cancellation;
	// outcomes are written on it. charging is cancelled when Stop gives up,
	// after which workers fail what is left instead of charging.
	base     context.Context
	charging context.Context
	abandon  context.CancelFunc

	// mu guards the lifecycle; Submit holds it shared while sending.
	mu      sync.RWMutex
	started bool
	stopped bool
}

// abandonGrace is how long Stop waits for workers to mark leftover jobs
// failed once the drain timeout has passed.
const abandonGrace = 5 * time.Second

func NewService(conf Config, store Store, gateway Gateway, log *slog.Logger) *Service {
	if conf.Workers <= 0 {
		conf.Workers = 1
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = 100
	}
	if conf.Timeout <= 0 {
		conf.Timeout = 30 * time.Second
	}
	return &Service{
		conf:    conf,
		store:   store,
		gateway: gateway,
		jobs:    make(chan entity.PaymentJob, conf.QueueSize),
		log:     log.With(sl.Module("payment")),
	}
}

func (s *Service) SetLedger(ledger Ledger) {
	s.ledger = ledger
}

func (s *Service) SetEventSink(events EventSink) {
	s.events = events
}

func (s *Service) SetRecorder(metrics Recorder) {
	s.metrics = metrics
}

// Start launches the workers. They keep draining the queue after ctx is
// done and exit once Stop closes it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.base = context.WithoutCancel(ctx)
	s.charging, s.abandon = context.WithCancel(s.base)
	for i := 0; i < s.conf.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.started = true
	s.log.Info("payment workers started", slog.Int("workers", s.conf.Workers))
	return nil
}

// Stop closes the queue and waits for queued payments to finish. When they
// do not finish within timeout, running charges are cancelled, every payment
// still queued is marked failed and ErrStopTimeout is returned.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.abandon()
		return nil
	case <-timer.C:
	}

	s.log.Warn("payment workers did not drain in time, failing queued payments",
		slog.Int("queued", len(s.jobs)),
	)
	s.abandon()

	grace := time.NewTimer(abandonGrace)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		s.log.Error("payment workers still busy after abandon")
	}
	return ErrStopTimeout
}

// Submit queues job, waiting for room until ctx is done.
func (s *Service) Submit(ctx context.Context, job entity.PaymentJob) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if s.stopped {
		return ErrQueueClosed
	}

	select {
	case s.jobs <- job:
		s.queueDepth()
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue payment: %w", ctx.Err())
	}
}

func (s *Service) queueDepth() {
	if s.metrics != nil {
		s.metrics.QueueDepth(len(s.jobs))
	}
}

func (s *Service) worker() {
	defer s.wg.Done()

	for job := range s.jobs {
		s.queueDepth()
		var err error
		if s.charging.Err() != nil {
			err = s.settle(job, entity.PaymentResult{
				PaymentAmount: job.State.PaymentAmount,
				Status:        entity.PaymentFailed,
				Error:         ErrAbandoned.Error(),
			}, time.Now())
		} else {
			err = s.process(job)
		}
		if err != nil {
			s.log.Error("payment processing", sl.CallSid(job.CallSid), sl.Err(err))
		}
	}
}

// process charges the card and settles the outcome.
func (s *Service) process(job entity.PaymentJob) error {
	started := time.Now()
	ctx, cancel := context.WithTimeout(s.charging, s.conf.Timeout)
	defer cancel()

	state := job.State
	result := entity.PaymentResult{PaymentAmount: state.PaymentAmount}
	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		CallSid:      job.CallSid,
		Amount:       state.PaymentAmount,
		CardNumber:   state.CardNumber,
		CardType:     state.CardType,
		Expiration:   state.Expiration,
		SecurityCode: state.SecurityCode,
		ZipCode:      state.ZipCode,
	})
	if err != nil {
		result.Status = entity.PaymentFailed
		result.Error = err.Error()
		s.log.Warn("charge declined", sl.CallSid(job.CallSid), sl.Err(err))
	} else {
		result.Success = true
		result.Status = entity.PaymentCompleted
		result.TransactionID = charge.TransactionID
	}
	return s.settle(job, result, started)
}

// settle records the outcome for the call flow, drops the call state and
// writes the ledger. It runs on its own deadline so a cancelled charge is
// still recorded.
func (s *Service) settle(job entity.PaymentJob, result entity.PaymentResult, started time.Time) error {
	ctx, cancel := context.WithTimeout(s.base, s.conf.Timeout)
	defer cancel()

	log := s.log.With(sl.CallSid(job.CallSid))
	state := job.State
	result.UpdatedAt = time.Now()

	var errs []error
	if err := s.saveResult(ctx, job.CallSid, &result); err != nil {
		errs = append(errs, err)
	}

	err := s.store.DeleteItem(ctx, &entity.SyncItem{Map: s.conf.CacheMap, Key: job.CallSid})
	if err != nil && !errors.Is(err, repository.ErrItemNotFound) {
		errs = append(errs, fmt.Errorf("delete call state: %w", err))
	}

	if s.ledger != nil {
		record := &entity.PaymentRecord{
			CallSid:       job.CallSid,
			PaymentAmount: state.PaymentAmount,
			CardType:      state.CardType,
			Last4:         state.Last4(),
			Success:       result.Success,
			TransactionID: result.TransactionID,
			Error:         result.Error,
			CreatedAt:     result.UpdatedAt,
		}
		if err = s.ledger.SavePaymentRecord(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("save ledger record: %w", err))
		}
	}

	if s.events != nil {
		s.events.Broadcast(entity.CallEvent{
			Type:    entity.EventPayment,
			CallSid: job.CallSid,
			Status:  string(result.Status),
			Time:    result.UpdatedAt,
		})
	}
	if s.metrics != nil {
		s.metrics.PaymentSettled(string(result.Status), time.Since(started))
	}

	log.Info("payment settled",
		slog.String("status", string(result.Status)),
		slog.String("transaction_id", result.TransactionID),
		slog.Duration("took", time.Since(started)),
	)
	return errors.Join(errs...)
}

// saveResult updates the call's result record, recreating it if it expired.
func (s *Service) saveResult(ctx context.Context, callSid string, result *entity.PaymentResult) error {
	item, err := s.store.GetItem(ctx, s.conf.ResultMap, callSid)
	if errors.Is(err, repository.ErrItemNotFound) {
		_, err = s.store.CreateItem(ctx, s.conf.ResultMap, callSid, result, s.conf.ResultTTL)
		if err != nil {
			return fmt.Errorf("create payment result: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch payment result: %w", err)
	}
	if _, err = s.store.UpdateItem(ctx, item, result); err != nil {
		return fmt.Errorf("update payment result: %w", err)
	}
	return nil
}
