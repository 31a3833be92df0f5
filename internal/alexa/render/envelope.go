// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package render

import (
	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/response"
	"github.com/ManuGH/skillgate/internal/alexa/ssml"
)

// EnvelopeVersion is the response format version.
const EnvelopeVersion = "1.0"

// Envelope is the JSON reply sent back to the platform.
type Envelope struct {
	Version  string `json:"version"`
	Response Body   `json:"response"`
}

// Body is the response object inside an Envelope.
type Body struct {
	OutputSpeech     *OutputSpeech        `json:"outputSpeech,omitempty"`
	Card             *Card                `json:"card,omitempty"`
	Reprompt         *Reprompt            `json:"reprompt,omitempty"`
	Directives       []response.Directive `json:"directives,omitempty"`
	ShouldEndSession *bool                `json:"shouldEndSession,omitempty"`
}

// OutputSpeech is spoken SSML.
type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

// Reprompt is spoken when the user does not answer an open microphone.
type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Card is a simple visual card for the companion app.
type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// EmptyEnvelope is the minimal success reply used when no handler ran.
func EmptyEnvelope() Envelope {
	return Envelope{Version: EnvelopeVersion}
}

// BuildEnvelope assembles the reply for res with the rendered speech. A nil
// response yields EmptyEnvelope. Blank speech omits outputSpeech.
func BuildEnvelope(res dispatch.Result, speech string) Envelope {
	resp := res.Response
	if resp == nil {
		return EmptyEnvelope()
	}

	env := Envelope{Version: EnvelopeVersion}
	if speech != "" {
		env.Response.OutputSpeech = &OutputSpeech{Type: "SSML", SSML: ssml.Speak(speech)}
	}

	directives := resp.Directives()
	if audio, ok := resp.AudioDirective(); ok {
		directives = append(directives, audio)
	}
	if len(directives) > 0 {
		env.Response.Directives = directives
	}

	end := resp.EndSession()
	env.Response.ShouldEndSession = &end
	return env
}
