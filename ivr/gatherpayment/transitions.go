package gatherpayment

import "PayIVR/ivr"

// Confirmation is where a confirmEntry turn goes after the caller heard an
// entry read back by the step that asked for confirmation.
type Confirmation struct {
	OnConfirm ivr.StepName
	OnDeny    ivr.StepName
	Prompt    string
}

// confirmations is keyed by the verify step that requested the confirmation.
var confirmations = map[ivr.StepName]Confirmation{
	StepVerifyCard: {
		OnConfirm: StepGatherExpiration,
		OnDeny:    StepStart,
		Prompt:    "If this is correct, press 1. Otherwise press 2 to re enter your card number.",
	},
	StepVerifyExpiration: {
		OnConfirm: StepGatherSecurityCode,
		OnDeny:    StepGatherExpiration,
		Prompt:    "If this is correct, press 1. Otherwise press 2 to re enter your expiration date.",
	},
	StepVerifySecurityCode: {
		OnConfirm: StepGatherZipCode,
		OnDeny:    StepGatherSecurityCode,
		Prompt:    "If this is correct, press 1. Otherwise press 2 to re enter your security code.",
	},
	StepVerifyZipCode: {
		OnConfirm: StepProcessPayment,
		OnDeny:    StepGatherZipCode,
		Prompt:    "If this is correct, press 1. Otherwise press 2 to re enter your zip code.",
	},
}

// ConfirmationFor returns the transitions registered for a verify step.
func ConfirmationFor(step ivr.StepName) (Confirmation, bool) {
	c, ok := confirmations[step]
	return c, ok
}
