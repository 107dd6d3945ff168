package entity

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentResult is read by the call orchestrator once the IVR hands the call back.
type PaymentResult struct {
	PaymentAmount string        `json:"paymentAmount,omitempty"`
	Success       bool          `json:"success"`
	Status        PaymentStatus `json:"status,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Error         string        `json:"error,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Settled reports whether the processor has finished with the payment.
func (r PaymentResult) Settled() bool {
	return r.Status == PaymentCompleted || r.Status == PaymentFailed
}

// PaymentJob is queued by the processPayment step.
type PaymentJob struct {
	CallSid string    `json:"call_sid"`
	State   CallState `json:"-"`
}

// PaymentRecord is the ledger entry kept after the call state is gone.
type PaymentRecord struct {
	CallSid       string    `json:"call_sid" bson:"call_sid"`
	PaymentAmount string    `json:"payment_amount" bson:"payment_amount"`
	CardType      string    `json:"card_type" bson:"card_type"`
	Last4         string    `json:"last4" bson:"last4"`
	Success       bool      `json:"success" bson:"success"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	Error         string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
