package twiml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilio "github.com/twilio/twilio-go/twiml"
)

type sayDoc struct {
	Voice string `xml:"voice,attr"`
	Text  string `xml:",chardata"`
	SayAs []struct {
		InterpretAs string `xml:"interpret-as,attr"`
		Words       string `xml:",chardata"`
	} `xml:"say-as"`
	Breaks    []struct{} `xml:"break"`
	Sentences []string   `xml:"s"`
}

type responseDoc struct {
	XMLName xml.Name `xml:"Response"`
	Says    []sayDoc `xml:"Say"`
	Gathers []struct {
		Action      string   `xml:"action,attr"`
		Method      string   `xml:"method,attr"`
		Input       string   `xml:"input,attr"`
		FinishOnKey string   `xml:"finishOnKey,attr"`
		Timeout     string   `xml:"timeout,attr"`
		NumDigits   string   `xml:"numDigits,attr"`
		Says        []sayDoc `xml:"Say"`
	} `xml:"Gather"`
	Redirects []struct {
		Method string `xml:"method,attr"`
		URL    string `xml:",chardata"`
	} `xml:"Redirect"`
	Pauses []struct {
		Length string `xml:"length,attr"`
	} `xml:"Pause"`
	Hangups []struct{} `xml:"Hangup"`
}

func render(t *testing.T, resp *Response) (string, responseDoc) {
	t.Helper()
	out, err := resp.Marshal()
	require.NoError(t, err)

	var doc responseDoc
	require.NoError(t, xml.Unmarshal(out, &doc))
	return string(out), doc
}

// verbNames lists the direct children of Response in document order.
func verbNames(t *testing.T, out string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(out))
	var names []string
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return names
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				names = append(names, el.Name.Local)
			}
		case xml.EndElement:
			depth--
		}
	}
}

func TestMarshalFullResponse(t *testing.T) {
	resp := NewResponse()
	resp.Say("Polly.Salli").
		Text("You entered,").
		SayAs("digits", "4111").
		Break().
		SayAs("digits", "1111")
	resp.Gather(Gather{
		Action:      "https://ivr.example.com/gather?a=1&b=2",
		Method:      "POST",
		Input:       "dtmf",
		FinishOnKey: "#",
		Timeout:     5,
		NumDigits:   1,
		Voice:       "Polly.Salli",
		Prompt:      "Press 1.",
	})
	resp.Redirect("https://ivr.example.com/gather?a=1")

	out, doc := render(t, resp)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, []string{"Say", "Gather", "Redirect"}, verbNames(t, out))

	require.Len(t, doc.Says, 1)
	say := doc.Says[0]
	assert.Equal(t, "Polly.Salli", say.Voice)
	assert.Equal(t, "You entered,", say.Text)
	require.Len(t, say.SayAs, 2)
	assert.Equal(t, "digits", say.SayAs[0].InterpretAs)
	assert.Equal(t, "4111", say.SayAs[0].Words)
	assert.Equal(t, "1111", say.SayAs[1].Words)
	assert.Len(t, say.Breaks, 1)

	require.Len(t, doc.Gathers, 1)
	g := doc.Gathers[0]
	assert.Equal(t, "https://ivr.example.com/gather?a=1&b=2", g.Action)
	assert.Equal(t, "POST", g.Method)
	assert.Equal(t, "dtmf", g.Input)
	assert.Equal(t, "#", g.FinishOnKey)
	assert.Equal(t, "5", g.Timeout)
	assert.Equal(t, "1", g.NumDigits)
	require.Len(t, g.Says, 1)
	assert.Equal(t, "Press 1.", g.Says[0].Text)

	require.Len(t, doc.Redirects, 1)
	assert.Equal(t, "POST", doc.Redirects[0].Method)
	assert.Equal(t, "https://ivr.example.com/gather?a=1", doc.Redirects[0].URL)
}

func TestEmptySayIsSkipped(t *testing.T) {
	resp := NewResponse()
	resp.Say("Polly.Salli")
	resp.Pause(2)

	out, doc := render(t, resp)
	assert.Equal(t, []string{"Pause"}, verbNames(t, out))
	require.Len(t, doc.Pauses, 1)
	assert.Equal(t, "2", doc.Pauses[0].Length)
	assert.Len(t, resp.Verbs(), 1)
}

func TestEmptyResponse(t *testing.T) {
	resp := NewResponse()
	assert.True(t, resp.IsEmpty())

	out, _ := render(t, resp)
	assert.Empty(t, verbNames(t, out))
}

func TestGatherOmitsUnsetAttributes(t *testing.T) {
	resp := NewResponse()
	g := resp.Gather(Gather{Action: "https://x"})
	assert.Empty(t, g.InnerElements)

	out, err := resp.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "numDigits")
	assert.NotContains(t, string(out), "timeout")
	assert.Contains(t, string(out), `action="https://x"`)
}

func TestHangup(t *testing.T) {
	resp := NewResponse()
	resp.Say("Polly.Salli").Text("Goodbye.")
	resp.Hangup()

	out, doc := render(t, resp)
	assert.Equal(t, []string{"Say", "Hangup"}, verbNames(t, out))
	assert.Equal(t, "Goodbye.", doc.Says[0].Text)

	last := resp.Verbs()[len(resp.Verbs())-1]
	_, ok := last.(*twilio.VoiceHangup)
	assert.True(t, ok)
}

func TestTextAfterSSMLKeepsOrder(t *testing.T) {
	resp := NewResponse()
	resp.Say("Polly.Salli").Text("You entered,").SayAs("date", "0130").Text("Is that right?")

	out, doc := render(t, resp)
	require.Len(t, doc.Says, 1)
	assert.Equal(t, "You entered,", doc.Says[0].Text)
	assert.Equal(t, []string{"Is that right?"}, doc.Says[0].Sentences)
	assert.Less(t, bytes.Index([]byte(out), []byte("say-as")), bytes.Index([]byte(out), []byte("Is that right?")))
}
