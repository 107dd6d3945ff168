// Package gatherpayment is the card payment call flow: card number,
// expiration date, security code and zip code, each read back for
// confirmation, then an asynchronous charge.
package gatherpayment

import (
	"PayIVR/entity"
	"PayIVR/ivr"
	"context"
	"time"
)

// Step names
const (
	StepStart              ivr.StepName = "start"
	StepVerifyCard         ivr.StepName = "verifyCard"
	StepConfirmEntry       ivr.StepName = "confirmEntry"
	StepGatherExpiration   ivr.StepName = "gatherExpiration"
	StepVerifyExpiration   ivr.StepName = "verifyExpiration"
	StepGatherSecurityCode ivr.StepName = "gatherSecurityCode"
	StepVerifySecurityCode ivr.StepName = "verifySecurityCode"
	StepGatherZipCode      ivr.StepName = "gatherZipCode"
	StepVerifyZipCode      ivr.StepName = "verifyZipCode"
	StepProcessPayment     ivr.StepName = "processPayment"
	StepPaymentStatus      ivr.StepName = "paymentStatus"
)

// PaymentQueue accepts payments for settlement off the webhook path.
type PaymentQueue interface {
	Submit(ctx context.Context, job entity.PaymentJob) error
}

type Config struct {
	// StrictSecurityCodeRetry sends a rejected security code back to
	// gatherSecurityCode instead of gatherExpiration.
	StrictSecurityCodeRetry bool
	ResultMap               string
	ResultTTL               time.Duration
	// StatusPause is the wait in seconds between payment status polls.
	StatusPause int
	// PendingTimeout fails a payment still pending after this long; zero
	// polls until the result expires.
	PendingTimeout time.Duration
}

// Workflow implements the payment collection flow.
type Workflow struct {
	steps map[ivr.StepName]ivr.Step
}

func NewWorkflow(conf Config, store ivr.Store, queue PaymentQueue) *Workflow {
	w := &Workflow{
		steps: make(map[ivr.StepName]ivr.Step),
	}

	results := &resultBook{store: store, mapName: conf.ResultMap, ttl: conf.ResultTTL}

	retrySecurityCode := StepGatherExpiration
	if conf.StrictSecurityCodeRetry {
		retrySecurityCode = StepGatherSecurityCode
	}

	w.register(&StartStep{})
	w.register(&VerifyCardStep{})
	w.register(&ConfirmEntryStep{})
	w.register(&GatherExpirationStep{})
	w.register(&VerifyExpirationStep{})
	w.register(&GatherSecurityCodeStep{})
	w.register(&VerifySecurityCodeStep{retryStep: retrySecurityCode})
	w.register(&GatherZipCodeStep{})
	w.register(&VerifyZipCodeStep{})
	w.register(&ProcessPaymentStep{results: results, queue: queue})
	w.register(&PaymentStatusStep{results: results, pause: conf.StatusPause, pendingTimeout: conf.PendingTimeout})

	return w
}

func (w *Workflow) register(step ivr.Step) {
	w.steps[step.Name()] = step
}

func (w *Workflow) GetStep(name ivr.StepName) (ivr.Step, bool) {
	step, ok := w.steps[name]
	return step, ok
}
