package gatherpayment

import (
	"PayIVR/internal/twiml"
	"PayIVR/ivr"
	"PayIVR/ivr/card"
)

const (
	promptCardNumber   = "Please enter your credit card number, followed by the pound key."
	promptExpiration   = "Please enter the two digit month and two digit year of your card's expiration date."
	promptSecurityCode = "Please enter the security code. "
	promptAmexCode     = "This is the four digit number located just to the right of your credit card number."
	promptCardCode     = "This is a three digit number located on the back of your card."
	promptZipCode      = "Please enter your zip code."

	sayYouEntered     = "You entered,"
	sayInvalidCard    = "Card number is invalid. Please try again."
	sayTryAgain       = " Please try again."
	sayProcessing     = "Please wait while your payment is processed."
	sayPaymentFailed  = "We were unable to process your payment."
	sayPaymentSuccess = "Your payment was successful. Thank you."
)

// speakNumberBlocks reads each block digit by digit with a pause between
// blocks.
func speakNumberBlocks(say *twiml.Say, blocks []string) {
	for i, digits := range blocks {
		say.SayAs("digits", digits)
		if i < len(blocks)-1 {
			say.Break()
		}
	}
}

func securityCodePrompt(cardType string) string {
	if cardType == card.TypeAmericanExpress {
		return promptSecurityCode + promptAmexCode
	}
	return promptSecurityCode + promptCardCode
}

// confirm asks the caller to accept the entry just read back and falls back
// to repeating the current step when nothing is pressed.
func confirm(call *ivr.Call) {
	t, _ := ConfirmationFor(call.Step)
	action := call.ActionURL(ivr.Target{
		Step:      StepConfirmEntry,
		PrevStep:  call.Step,
		NextStep:  t.OnConfirm,
		RetryStep: t.OnDeny,
	})
	call.Gather(action, 1, t.Prompt)
	call.RedirectTo(call.Step)
}

// collect asks for an entry that will be posted to the verify step.
func collect(call *ivr.Call, verify ivr.StepName, numDigits int, prompt string) {
	call.Gather(call.ActionURL(ivr.Target{Step: verify, PrevStep: call.Step}), numDigits, prompt)
	call.RedirectTo(call.Step)
}
