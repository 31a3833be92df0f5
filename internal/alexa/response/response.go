// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package response accumulates the directives a handler produces for one
// conversational turn and resolves the template used to render it.
package response

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/ManuGH/skillgate/internal/alexa/request"
)

// Intent is the handler identity a response is rendered for.
type Intent interface {
	// LogicalName is the dot separated handler name, e.g.
	// "Alexa.IntentHandlers.Music.PlaySong".
	LogicalName() string
	// Locale is the request locale, e.g. "en-US".
	Locale() string
	// Slots are the intent slots the handler was invoked with.
	Slots() request.SlotMap
}

// Audio describes the stream for an AudioPlayer response.
type Audio struct {
	URL           string
	Token         string
	OffsetMillis  int64
	Title         string
	Subtitle      string
	ImageURL      string
	BackgroundURL string
}

// Response is the result of one handler invocation. Directives are append
// only. Locals are copied at construction and never track the handler.
type Response struct {
	intent     Intent
	device     *request.Device
	locals     map[string]any
	directives []Directive

	skipElicitRender map[string]struct{}
	forcedTemplate   string

	keepListening    bool
	keepScreenActive bool
	audioPlayer      bool
	audio            Audio
}

// New creates a response for intent. locals is the render context the
// handler exposes to templates; it is copied.
func New(intent Intent, device *request.Device, locals map[string]any) *Response {
	l := maps.Clone(locals)
	if l == nil {
		l = map[string]any{}
	}
	return &Response{
		intent:           intent,
		device:           device,
		locals:           l,
		skipElicitRender: map[string]struct{}{},
	}
}

// Intent returns the handler identity.
func (r *Response) Intent() Intent { return r.intent }

// Device returns the requesting device. It may be nil.
func (r *Response) Device() *request.Device { return r.device }

// Locals returns a copy of the render context.
func (r *Response) Locals() map[string]any { return maps.Clone(r.locals) }

// Directives returns a copy of the accumulated directives in order.
func (r *Response) Directives() []Directive { return slices.Clone(r.directives) }

// ElicitSlot appends an elicitation directive for slot. With skipRender the
// default elicitation template is not used for that slot.
func (r *Response) ElicitSlot(slot string, skipRender bool) *Response {
	r.directives = append(r.directives, Directive{Type: DirectiveElicitSlot, SlotToElicit: slot})
	if skipRender {
		if r.skipElicitRender == nil {
			r.skipElicitRender = map[string]struct{}{}
		}
		r.skipElicitRender[slot] = struct{}{}
	}
	return r
}

// ElicitDirectives returns the elicitation directives in order.
func (r *Response) ElicitDirectives() []Directive {
	var out []Directive
	for _, d := range r.directives {
		if d.Type == DirectiveElicitSlot {
			out = append(out, d)
		}
	}
	return out
}

// RenderDocument appends an APL RenderDocument directive. It is a no-op when
// the device is known not to support APL.
func (r *Response) RenderDocument(token string, document, datasources json.RawMessage) *Response {
	if r.device != nil && !r.device.APLSupported() {
		return r
	}
	r.directives = append(r.directives, Directive{
		Type:        DirectiveRenderDocument,
		Token:       token,
		Document:    document,
		Datasources: datasources,
	})
	return r
}

// KeepListening keeps the microphone open after the response is spoken.
func (r *Response) KeepListening() *Response {
	r.keepListening = true
	return r
}

// KeepScreenActive asks screen devices not to dim while the session is open.
func (r *Response) KeepScreenActive() *Response {
	r.keepScreenActive = true
	return r
}

// AudioPlayer marks the response as driving the audio player.
func (r *Response) AudioPlayer() *Response {
	r.audioPlayer = true
	return r
}

// PlayAudio sets the audio stream and marks the response as an audio player
// response.
func (r *Response) PlayAudio(a Audio) *Response {
	r.audio = a
	return r.AudioPlayer()
}

// StopAudio appends an AudioPlayer.Stop directive.
func (r *Response) StopAudio() *Response {
	r.directives = append(r.directives, Directive{Type: DirectiveAudioStop})
	return r
}

// IsKeepListening reports whether KeepListening was called.
func (r *Response) IsKeepListening() bool { return r.keepListening }

// IsKeepScreenActive reports whether KeepScreenActive was called.
func (r *Response) IsKeepScreenActive() bool { return r.keepScreenActive }

// IsAudioPlayer reports whether the response drives the audio player.
func (r *Response) IsAudioPlayer() bool { return r.audioPlayer }

// Audio returns the audio stream settings.
func (r *Response) Audio() Audio { return r.audio }

// AudioDirective returns the AudioPlayer.Play directive for the configured
// stream, or false when the response carries no stream URL.
func (r *Response) AudioDirective() (Directive, bool) {
	if !r.audioPlayer || r.audio.URL == "" {
		return Directive{}, false
	}
	item := &AudioItem{
		Stream: AudioStream{
			URL:                  r.audio.URL,
			Token:                r.audio.Token,
			OffsetInMilliseconds: r.audio.OffsetMillis,
		},
	}
	if r.audio.Title != "" || r.audio.Subtitle != "" || r.audio.ImageURL != "" || r.audio.BackgroundURL != "" {
		item.Metadata = &AudioMetadata{
			Title:           r.audio.Title,
			Subtitle:        r.audio.Subtitle,
			Art:             imageGroup(r.audio.ImageURL),
			BackgroundImage: imageGroup(r.audio.BackgroundURL),
		}
	}
	return Directive{Type: DirectiveAudioPlay, PlayBehavior: PlayBehaviorReplaceAll, AudioItem: item}, true
}

// EndSession reports whether the turn closes the session. It is false when
// KeepListening was called or any slot is being elicited.
func (r *Response) EndSession() bool {
	if r.keepListening {
		return false
	}
	return len(r.ElicitDirectives()) == 0
}

// With returns a copy of the response that renders template instead of the
// elicitation or default template. The receiver is unchanged.
func (r *Response) With(template string) *Response {
	c := *r
	c.locals = maps.Clone(r.locals)
	c.directives = slices.Clone(r.directives)
	c.skipElicitRender = maps.Clone(r.skipElicitRender)
	c.forcedTemplate = template
	return &c
}

// ForcedTemplate returns the template set by With, or "".
func (r *Response) ForcedTemplate() string { return r.forcedTemplate }
