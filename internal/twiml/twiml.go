// Package twiml collects the voice verbs of one webhook turn and renders
// them with the twilio-go markup builder.
package twiml

import (
	"strconv"

	twilio "github.com/twilio/twilio-go/twiml"
)

type Response struct {
	verbs []twilio.Element
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) Add(v twilio.Element) *Response {
	r.verbs = append(r.verbs, v)
	return r
}

// Say appends a Say verb and returns it so callers can keep adding text.
func (r *Response) Say(voice string) *Say {
	s := &Say{verb: &twilio.VoiceSay{Voice: voice}}
	r.verbs = append(r.verbs, s.verb)
	return s
}

// Gather describes a digit collection with one spoken prompt. Zero Timeout
// and NumDigits leave the attributes to the platform defaults.
type Gather struct {
	Action      string
	Method      string
	Input       string
	FinishOnKey string
	Timeout     int
	NumDigits   int
	Voice       string
	Prompt      string
}

func (r *Response) Gather(g Gather) *twilio.VoiceGather {
	verb := &twilio.VoiceGather{
		Action:      g.Action,
		Method:      g.Method,
		Input:       g.Input,
		FinishOnKey: g.FinishOnKey,
		Timeout:     positive(g.Timeout),
		NumDigits:   positive(g.NumDigits),
	}
	if g.Prompt != "" {
		verb.InnerElements = []twilio.Element{
			&twilio.VoiceSay{Voice: g.Voice, Message: g.Prompt},
		}
	}
	r.verbs = append(r.verbs, verb)
	return verb
}

func (r *Response) Redirect(url string) *Response {
	return r.Add(&twilio.VoiceRedirect{Method: "POST", Url: url})
}

func (r *Response) Pause(seconds int) *Response {
	return r.Add(&twilio.VoicePause{Length: positive(seconds)})
}

func (r *Response) Hangup() *Response {
	return r.Add(&twilio.VoiceHangup{})
}

// Verbs returns what will be rendered. A Say that never got any text is
// left out.
func (r *Response) Verbs() []twilio.Element {
	verbs := make([]twilio.Element, 0, len(r.verbs))
	for _, v := range r.verbs {
		if s, ok := v.(*twilio.VoiceSay); ok && s.Message == "" && len(s.InnerElements) == 0 {
			continue
		}
		verbs = append(verbs, v)
	}
	return verbs
}

func (r *Response) IsEmpty() bool {
	return len(r.Verbs()) == 0
}

// Marshal renders the full document including the XML declaration.
func (r *Response) Marshal() ([]byte, error) {
	doc, err := twilio.Voice(r.Verbs())
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

type Say struct {
	verb *twilio.VoiceSay
}

// Text appends plain speech. Text following SSML is wrapped in a sentence
// so the spoken order is kept.
func (s *Say) Text(text string) *Say {
	if len(s.verb.InnerElements) == 0 {
		s.verb.Message += text
		return s
	}
	s.verb.InnerElements = append(s.verb.InnerElements, &twilio.VoiceS{Words: text})
	return s
}

// SayAs adds an SSML say-as element, e.g. interpret-as "digits" or "date".
func (s *Say) SayAs(interpretAs, words string) *Say {
	s.verb.InnerElements = append(s.verb.InnerElements, &twilio.VoiceSayAs{
		InterpretAs: interpretAs,
		Words:       words,
	})
	return s
}

func (s *Say) Break() *Say {
	s.verb.InnerElements = append(s.verb.InnerElements, &twilio.VoiceBreak{})
	return s
}

func (s *Say) IsEmpty() bool {
	return s.verb.Message == "" && len(s.verb.InnerElements) == 0
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
