package payment

import "errors"

var (
	ErrNotStarted     = errors.New("payment processor not started")
	ErrAlreadyStarted = errors.New("payment processor already started")
	ErrQueueClosed    = errors.New("payment queue closed")
	ErrStopTimeout    = errors.New("timeout waiting for payment workers to stop")
	ErrAbandoned      = errors.New("payment abandoned at shutdown")
)
