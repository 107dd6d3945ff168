package payment

import (
	"PayIVR/entity"
	"context"
)

type Core interface {
	GetPaymentResult(ctx context.Context, callSid string) (*entity.PaymentResult, error)
}
