package gatherpayment

import (
	"PayIVR/entity"
	repository "PayIVR/internal/database"
	"PayIVR/ivr"
	"context"
	"errors"
	"fmt"
	"time"
)

// resultBook reads and writes the payment result map.
type resultBook struct {
	store   ivr.Store
	mapName string
	ttl     time.Duration
}

// open returns the call's result record, creating a pending one when the
// call has none. created reports whether this turn created it.
func (b *resultBook) open(ctx context.Context, callSid, amount string) (item *entity.SyncItem, result *entity.PaymentResult, created bool, err error) {
	if err = b.store.EnsureMap(ctx, b.mapName); err != nil {
		return nil, nil, false, err
	}

	result = &entity.PaymentResult{}
	item, err = b.store.GetItem(ctx, b.mapName, callSid)
	if err == nil {
		if err = item.Decode(result); err != nil {
			return nil, nil, false, err
		}
		return item, result, false, nil
	}
	if !errors.Is(err, repository.ErrItemNotFound) {
		return nil, nil, false, fmt.Errorf("fetch payment result: %w", err)
	}

	result = &entity.PaymentResult{
		PaymentAmount: amount,
		Status:        entity.PaymentPending,
		UpdatedAt:     time.Now(),
	}
	item, err = b.store.CreateItem(ctx, b.mapName, callSid, result, b.ttl)
	if err != nil {
		return nil, nil, false, fmt.Errorf("create payment result: %w", err)
	}
	return item, result, true, nil
}

// get returns nil without error when the call has no result.
func (b *resultBook) get(ctx context.Context, callSid string) (*entity.SyncItem, *entity.PaymentResult, error) {
	item, err := b.store.GetItem(ctx, b.mapName, callSid)
	if errors.Is(err, repository.ErrItemNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch payment result: %w", err)
	}
	result := &entity.PaymentResult{}
	if err = item.Decode(result); err != nil {
		return nil, nil, err
	}
	return item, result, nil
}

func (b *resultBook) fail(ctx context.Context, item *entity.SyncItem, result *entity.PaymentResult, reason string) error {
	result.Success = false
	result.Status = entity.PaymentFailed
	result.Error = reason
	result.UpdatedAt = time.Now()
	if _, err := b.store.UpdateItem(ctx, item, result); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}
