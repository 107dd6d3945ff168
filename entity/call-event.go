package entity

import "time"

const (
	EventStep    = "step"
	EventPayment = "payment"
)

// CallEvent is pushed to the live call feed. It never carries card data.
type CallEvent struct {
	Type     string    `json:"type"`
	CallSid  string    `json:"call_sid"`
	Step     string    `json:"step,omitempty"`
	PrevStep string    `json:"prev_step,omitempty"`
	Valid    *bool     `json:"valid,omitempty"`
	Status   string    `json:"status,omitempty"`
	Time     time.Time `json:"time"`
}
