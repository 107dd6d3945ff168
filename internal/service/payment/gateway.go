package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChargeRequest carries the card data of one call to the gateway.
type ChargeRequest struct {
	CallSid      string
	Amount       string
	CardNumber   string
	CardType     string
	Expiration   string
	SecurityCode string
	ZipCode      string
}

type Charge struct {
	TransactionID string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// MockGateway approves every charge after Delay.
type MockGateway struct {
	Delay time.Duration
}

func (g *MockGateway) Charge(ctx context.Context, _ ChargeRequest) (*Charge, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return &Charge{TransactionID: uuid.NewString()}, nil
}
