package ivr

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/twiml"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Options are the per-deployment settings every call shares.
type Options struct {
	WebhookURL    string
	Voice         string
	FinishOnKey   string
	GatherTimeout int
	CacheMap      string
	StateTTL      time.Duration
}

// Target is the set of step names encoded into a callback URL.
type Target struct {
	Step      StepName
	PrevStep  StepName
	NextStep  StepName
	RetryStep StepName
}

// Call is the context of one webhook turn.
type Call struct {
	Sid           string
	Step          StepName
	PrevStep      StepName
	NextStep      StepName
	RetryStep     StepName
	Digits        string
	PaymentAmount string
	StudioWebhook string
	// CacheReady mirrors isSyncMapCreated: the state map is known to exist.
	CacheReady bool

	// State is nil for stateless steps.
	State *entity.CallState

	opts     Options
	response *twiml.Response
	say      *twiml.Say
	log      *slog.Logger
}

func NewCall(req *entity.StepRequest, opts Options, log *slog.Logger) *Call {
	response := twiml.NewResponse()
	call := &Call{
		Sid:           req.CallSid,
		Step:          StepName(req.Step),
		PrevStep:      StepName(req.PrevStep),
		NextStep:      StepName(req.NextStep),
		RetryStep:     StepName(req.RetryStep),
		Digits:        strings.TrimSpace(req.Digits),
		PaymentAmount: req.PaymentAmount,
		StudioWebhook: req.StudioWebhook,
		CacheReady:    bool(req.IsSyncMapCreated),
		opts:          opts,
		response:      response,
		say:           response.Say(opts.Voice),
	}
	call.log = log.With(
		sl.CallSid(call.Sid),
		sl.Step(call.Step),
		slog.String("prev_step", string(call.PrevStep)),
	)
	return call
}

func (c *Call) Log() *slog.Logger {
	return c.log
}

func (c *Call) Response() *twiml.Response {
	return c.response
}

// Say is the voice instruction that opens the response.
func (c *Call) Say() *twiml.Say {
	return c.say
}

// ActionURL builds the callback URL for t. Empty names are left out.
func (c *Call) ActionURL(t Target) string {
	u, err := url.Parse(c.opts.WebhookURL)
	if err != nil {
		c.log.Error("invalid webhook url", sl.Err(err))
		return c.opts.WebhookURL
	}

	q := u.Query()
	if c.StudioWebhook != "" {
		q.Set("studioWebhook", c.StudioWebhook)
	}
	q.Set("isSyncMapCreated", strconv.FormatBool(c.CacheReady))
	if c.Sid != "" {
		q.Set("callSid", c.Sid)
	}
	set := func(key string, step StepName) {
		if step != "" {
			q.Set(key, string(step))
		}
	}
	set("step", t.Step)
	set("prevStep", t.PrevStep)
	set("nextStep", t.NextStep)
	set("retryStep", t.RetryStep)

	u.RawQuery = q.Encode()
	return u.String()
}

// Gather collects caller digits and posts them to action. numDigits 0 leaves
// the entry open until the finish key.
func (c *Call) Gather(action string, numDigits int, prompt string) {
	c.response.Gather(twiml.Gather{
		Action:      action,
		Method:      "POST",
		Input:       "dtmf",
		FinishOnKey: c.opts.FinishOnKey,
		Timeout:     c.opts.GatherTimeout,
		NumDigits:   numDigits,
		Voice:       c.opts.Voice,
		Prompt:      prompt,
	})
}

func (c *Call) Redirect(url string) {
	c.response.Redirect(url)
}

// RedirectTo sends the call to step, recording the current step as previous.
func (c *Call) RedirectTo(step StepName) {
	c.Redirect(c.ActionURL(Target{Step: step, PrevStep: c.Step}))
}

func (c *Call) Pause(seconds int) {
	c.response.Pause(seconds)
}

func (c *Call) Hangup() {
	c.response.Hangup()
}

// StudioRedirect is the URL that hands the call back to the flow orchestrator.
func (c *Call) StudioRedirect() string {
	sep := "?"
	if strings.Contains(c.StudioWebhook, "?") {
		sep = "&"
	}
	return c.StudioWebhook + sep + "FlowEvent=audioComplete"
}
