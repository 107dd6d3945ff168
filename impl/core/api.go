package core

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/twiml"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrPaymentNotFound = errors.New("payment not found")

// HandleStep runs one webhook turn of the payment flow.
func (c *Core) HandleStep(ctx context.Context, req *entity.StepRequest) (*twiml.Response, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("call engine is not set")
	}
	return c.engine.Handle(ctx, req), nil
}

// GetPaymentResult reads the live result of a call, falling back to the
// ledger once the short-lived record has expired.
func (c *Core) GetPaymentResult(ctx context.Context, callSid string) (*entity.PaymentResult, error) {
	if c.store == nil {
		return nil, fmt.Errorf("store is not set")
	}

	item, err := c.store.GetItem(ctx, c.resultMap, callSid)
	if err == nil {
		result := &entity.PaymentResult{}
		if err = item.Decode(result); err != nil {
			return nil, err
		}
		return result, nil
	}
	if !errors.Is(err, repository.ErrItemNotFound) {
		return nil, fmt.Errorf("fetch payment result: %w", err)
	}

	if c.repo == nil {
		return nil, ErrPaymentNotFound
	}
	record, err := c.repo.GetPaymentRecord(ctx, callSid)
	if err != nil {
		return nil, fmt.Errorf("fetch payment record: %w", err)
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}

	c.log.With(
		sl.CallSid(callSid),
	).Debug("payment result served from ledger")

	result := &entity.PaymentResult{
		PaymentAmount: record.PaymentAmount,
		Success:       record.Success,
		Status:        entity.PaymentFailed,
		TransactionID: record.TransactionID,
		Error:         record.Error,
		UpdatedAt:     record.CreatedAt,
	}
	if record.Success {
		result.Status = entity.PaymentCompleted
	}
	return result, nil
}

// Health reports whether the call-state store answers.
func (c *Core) Health(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("store is not set")
	}
	if err := c.store.Ping(ctx); err != nil {
		c.log.Warn("store ping", sl.Err(err))
		return err
	}
	return nil
}

func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if c.authKey != "" && token == c.authKey {
		return &entity.UserAuth{Username: "internal", Token: token}, nil
	}

	c.mu.RLock()
	username, ok := c.keys[token]
	c.mu.RUnlock()
	if ok {
		return &entity.UserAuth{Username: username, Token: token}, nil
	}

	if c.repo == nil {
		return nil, fmt.Errorf("invalid token")
	}
	username, err := c.repo.CheckApiKey(context.Background(), token)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("invalid token")
	}

	c.mu.Lock()
	c.keys[token] = username
	c.mu.Unlock()

	c.log.With(
		slog.String("user", username),
	).Debug("api key accepted")
	return &entity.UserAuth{Username: username, Token: token}, nil
}
