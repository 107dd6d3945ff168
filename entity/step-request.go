package entity

import (
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

// StepRequest is one webhook turn. Fields arrive in the callback query string
// and the platform's form body.
type StepRequest struct {
	CallSid          string `form:"callSid" validate:"required"`
	PlatformCallSid  string `form:"CallSid"`
	Step             string `form:"step"`
	PrevStep         string `form:"prevStep"`
	NextStep         string `form:"nextStep"`
	RetryStep        string `form:"retryStep"`
	PaymentAmount    string `form:"paymentAmount"`
	Digits           string `form:"Digits"`
	StudioWebhook    string `form:"studioWebhook"`
	IsSyncMapCreated Flag   `form:"isSyncMapCreated"`
}

// Flag is a query boolean that reads anything other than a true value,
// "undefined" included, as false.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	v, err := strconv.ParseBool(string(text))
	*f = Flag(err == nil && v)
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Normalize fills the call id from the platform field when the callback URL
// did not carry one, which is the case for the very first turn. A studio
// webhook that is not a URL is cleared so the call ends with a spoken outcome;
// the dropped value is returned.
func (r *StepRequest) Normalize() string {
	if r.CallSid == "" {
		r.CallSid = r.PlatformCallSid
	}
	if r.StudioWebhook == "" {
		return ""
	}
	if err := validatorInstance().Var(r.StudioWebhook, "url"); err != nil {
		dropped := r.StudioWebhook
		r.StudioWebhook = ""
		return dropped
	}
	return ""
}

func (r *StepRequest) Validate() error {
	return validatorInstance().Struct(r)
}
