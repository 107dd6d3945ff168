package gatherpayment

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"PayIVR/ivr"
	"PayIVR/ivr/card"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type stateful struct{}

func (stateful) Stateless() bool { return false }

type stateless struct{}

func (stateless) Stateless() bool { return true }

// existingState steps read the stored call state but never create it.
type existingState struct{ stateful }

func (existingState) ExistingStateOnly() bool { return true }

func valid() ivr.StepResult {
	return ivr.StepResult{UpdateState: true, Checked: true, Valid: true}
}

func invalid() ivr.StepResult {
	return ivr.StepResult{Checked: true}
}

// entry is the caller's digits, or the value already stored when the turn
// repeats after a confirmation timeout.
func entry(call *ivr.Call, stored string) string {
	if call.Digits != "" {
		return call.Digits
	}
	return stored
}

// StartStep asks for the card number.
type StartStep struct{ stateful }

func (s *StartStep) Name() ivr.StepName { return StepStart }

func (s *StartStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	collect(call, StepVerifyCard, 0, promptCardNumber)
	return ivr.StepResult{}
}

// VerifyCardStep validates the card number and reads it back in the blocks
// printed on the card.
type VerifyCardStep struct{ stateful }

func (s *VerifyCardStep) Name() ivr.StepName { return StepVerifyCard }

func (s *VerifyCardStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	number := card.Normalize(entry(call, call.State.CardNumber))
	check := card.Validate(number)
	call.Log().Debug("card check",
		sl.Secret("card_number", number),
		slog.Bool("valid", check.IsValid),
	)

	if !check.IsValid {
		call.Say().Text(sayInvalidCard)
		call.RedirectTo(StepStart)
		return invalid()
	}

	call.State.CardNumber = number
	call.State.CardType = check.Card.Type
	call.State.SecurityCodeSize = check.Card.Code.Size

	say := call.Say().Text(sayYouEntered)
	speakNumberBlocks(say, card.Split(number, check.Card.Gaps))
	confirm(call)
	return valid()
}

// ConfirmEntryStep forks on the single digit pressed after a read back. The
// targets come from the confirmation table of the step that asked; the next
// and retry steps in the URL are only compared against it.
type ConfirmEntryStep struct{ stateless }

func (s *ConfirmEntryStep) Name() ivr.StepName { return StepConfirmEntry }

func (s *ConfirmEntryStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	t, ok := ConfirmationFor(call.PrevStep)
	if !ok {
		call.Log().Warn("confirmation requested by unknown step")
		call.RedirectTo(StepStart)
		return ivr.StepResult{}
	}

	if (call.NextStep != "" && call.NextStep != t.OnConfirm) ||
		(call.RetryStep != "" && call.RetryStep != t.OnDeny) {
		call.Log().Warn("callback transitions ignored",
			slog.String("next_step", string(call.NextStep)),
			slog.String("retry_step", string(call.RetryStep)),
			slog.String("on_confirm", string(t.OnConfirm)),
			slog.String("on_deny", string(t.OnDeny)),
		)
	}

	target := t.OnDeny
	if call.Digits == "1" {
		target = t.OnConfirm
	}
	call.RedirectTo(target)
	return ivr.StepResult{}
}

// GatherExpirationStep asks for MMYY.
type GatherExpirationStep struct{ stateful }

func (s *GatherExpirationStep) Name() ivr.StepName { return StepGatherExpiration }

func (s *GatherExpirationStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	collect(call, StepVerifyExpiration, 4, promptExpiration)
	return ivr.StepResult{}
}

type VerifyExpirationStep struct{ stateful }

func (s *VerifyExpirationStep) Name() ivr.StepName { return StepVerifyExpiration }

func (s *VerifyExpirationStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	expiration := entry(call, call.State.Expiration)
	check := CheckExpiration(expiration)

	if !check.Valid {
		call.Say().Text(check.Reason + sayTryAgain)
		call.RedirectTo(StepGatherExpiration)
		return invalid()
	}

	call.State.Expiration = expiration
	call.Say().Text(sayYouEntered).SayAs("date", check.FullDate)
	confirm(call)
	return valid()
}

// GatherSecurityCodeStep asks for the code, describing where the brand
// prints it.
type GatherSecurityCodeStep struct{ stateful }

func (s *GatherSecurityCodeStep) Name() ivr.StepName { return StepGatherSecurityCode }

func (s *GatherSecurityCodeStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	size := securityCodeSize(call.State.SecurityCodeSize, call.State.CardType)
	collect(call, StepVerifySecurityCode, size, securityCodePrompt(call.State.CardType))
	return ivr.StepResult{}
}

type VerifySecurityCodeStep struct {
	stateful
	retryStep ivr.StepName
}

func (s *VerifySecurityCodeStep) Name() ivr.StepName { return StepVerifySecurityCode }

func (s *VerifySecurityCodeStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	code := entry(call, call.State.SecurityCode)
	check := CheckSecurityCode(code, securityCodeSize(call.State.SecurityCodeSize, call.State.CardType))

	if !check.Valid {
		call.Say().Text(check.Reason + sayTryAgain)
		call.RedirectTo(s.retryStep)
		return invalid()
	}

	call.State.SecurityCode = code
	call.Say().Text(sayYouEntered).SayAs("digits", code)
	confirm(call)
	return valid()
}

type GatherZipCodeStep struct{ stateful }

func (s *GatherZipCodeStep) Name() ivr.StepName { return StepGatherZipCode }

func (s *GatherZipCodeStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	collect(call, StepVerifyZipCode, zipCodeLength, promptZipCode)
	return ivr.StepResult{}
}

type VerifyZipCodeStep struct{ stateful }

func (s *VerifyZipCodeStep) Name() ivr.StepName { return StepVerifyZipCode }

func (s *VerifyZipCodeStep) Handle(_ context.Context, call *ivr.Call) ivr.StepResult {
	zip := entry(call, call.State.ZipCode)
	check := CheckZipCode(zip)

	if !check.Valid {
		call.Say().Text(check.Reason + sayTryAgain)
		call.RedirectTo(StepGatherZipCode)
		return invalid()
	}

	call.State.ZipCode = zip
	call.Say().Text(sayYouEntered).SayAs("digits", zip)
	confirm(call)
	return valid()
}

// ProcessPaymentStep opens the payment result and queues the charge. The
// call then polls paymentStatus until the charge settles.
type ProcessPaymentStep struct {
	existingState
	results *resultBook
	queue   PaymentQueue
}

func (s *ProcessPaymentStep) Name() ivr.StepName { return StepProcessPayment }

func (s *ProcessPaymentStep) Handle(ctx context.Context, call *ivr.Call) ivr.StepResult {
	call.Say().Text(sayProcessing)
	defer call.RedirectTo(StepPaymentStatus)

	item, result, created, err := s.results.open(ctx, call.Sid, call.State.PaymentAmount)
	if err != nil {
		return ivr.StepResult{Error: err}
	}
	if !created {
		call.Log().Info("payment already submitted", slog.String("status", string(result.Status)))
		return ivr.StepResult{}
	}

	if call.State.CardNumber == "" {
		err = errors.New("card details missing")
		if ferr := s.results.fail(ctx, item, result, err.Error()); ferr != nil {
			err = errors.Join(err, ferr)
		}
		return ivr.StepResult{Error: err}
	}

	job := entity.PaymentJob{CallSid: call.Sid, State: *call.State}
	if err = s.queue.Submit(ctx, job); err != nil {
		err = fmt.Errorf("submit payment: %w", err)
		if ferr := s.results.fail(ctx, item, result, "payment processor unavailable"); ferr != nil {
			err = errors.Join(err, ferr)
		}
		return ivr.StepResult{Error: err}
	}

	call.Log().Info("payment submitted",
		slog.String("card_type", call.State.CardType),
		slog.String("last4", call.State.Last4()),
	)
	return ivr.StepResult{}
}

// PaymentStatusStep holds the caller until the payment settles, then hands
// the call back to the orchestrator.
type PaymentStatusStep struct {
	stateless
	results        *resultBook
	pause          int
	pendingTimeout time.Duration
}

func (s *PaymentStatusStep) Name() ivr.StepName { return StepPaymentStatus }

func (s *PaymentStatusStep) Handle(ctx context.Context, call *ivr.Call) ivr.StepResult {
	item, result, err := s.results.get(ctx, call.Sid)
	if err != nil {
		s.finish(call, nil)
		return ivr.StepResult{Error: err}
	}
	if result != nil && !result.Settled() {
		if !s.stale(result) {
			call.Pause(s.pause)
			call.RedirectTo(StepPaymentStatus)
			return ivr.StepResult{}
		}
		call.Log().Warn("payment pending too long", slog.Time("updated_at", result.UpdatedAt))
		err = s.results.fail(ctx, item, result, "payment timed out")
	}
	s.finish(call, result)
	return ivr.StepResult{Error: err}
}

func (s *PaymentStatusStep) stale(result *entity.PaymentResult) bool {
	return s.pendingTimeout > 0 && time.Since(result.UpdatedAt) > s.pendingTimeout
}

func (s *PaymentStatusStep) finish(call *ivr.Call, result *entity.PaymentResult) {
	if call.StudioWebhook != "" {
		call.Redirect(call.StudioRedirect())
		return
	}
	if result != nil && result.Success {
		call.Say().Text(sayPaymentSuccess)
	} else {
		call.Say().Text(sayPaymentFailed)
	}
	call.Hangup()
}
