// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/response"
)

const skillID = "amzn1.ask.skill.Y"

var reqConfig = request.Config{SkillIDs: []string{skillID}}

type recorder struct {
	calls []string
}

func (r *recorder) factory(name string) Factory {
	return func(c *Context) Handler {
		return HandlerFunc(func(context.Context) (*response.Response, error) {
			r.calls = append(r.calls, name)
			return NewIntent(c, LogicalName(name)).Respond(nil), nil
		})
	}
}

func (r *recorder) builtins() Builtins {
	return Builtins{
		GoodBye:    r.factory(HandlerGoodBye),
		Help:       r.factory(HandlerHelp),
		Pause:      r.factory(HandlerPause),
		Resume:     r.factory(HandlerResume),
		Fallback:   r.factory(HandlerFallback),
		Launch:     r.factory(HandlerLaunch),
		SessionEnd: r.factory(HandlerSessionEnd),
	}
}

func newTestDispatcher(t *testing.T, reg *Registry) (*Dispatcher, *recorder, *tracetest.SpanRecorder) {
	t.Helper()
	rec := &recorder{}
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	logger := zerolog.Nop()

	d, err := New(rec.builtins(), reg, Options{Logger: &logger, Tracer: tp.Tracer("test")})
	require.NoError(t, err)
	return d, rec, spans
}

func parse(t *testing.T, appID, reqJSON string) *request.Request {
	t.Helper()
	body := `{"session":{"application":{"applicationId":"` + appID + `"}},"request":` + reqJSON + `}`
	r, err := request.Parse([]byte(body), reqConfig)
	require.NoError(t, err)
	return r
}

func intent(name string) string {
	return `{"type":"IntentRequest","locale":"en-US","intent":{"name":"` + name + `"}}`
}

func TestDispatch_Table(t *testing.T) {
	tests := []struct {
		name        string
		req         string
		wantHandler string
		wantCard    bool
	}{
		{"cancel", intent(request.IntentCancel), HandlerGoodBye, false},
		{"stop", intent(request.IntentStop), HandlerGoodBye, false},
		{"help", intent(request.IntentHelp), HandlerHelp, true},
		{"pause intent", intent(request.IntentPause), HandlerPause, false},
		{"resume intent", intent(request.IntentResume), HandlerResume, false},
		{"fallback", intent(request.IntentFallback), HandlerFallback, false},
		{"launch", `{"type":"LaunchRequest"}`, HandlerLaunch, true},
		{"session ended", `{"type":"SessionEndedRequest"}`, HandlerSessionEnd, false},
		{"playback play", `{"type":"PlaybackController.PlayCommandIssued"}`, HandlerResume, false},
		{"playback pause", `{"type":"PlaybackController.PauseCommandIssued"}`, HandlerPause, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, _ := newTestDispatcher(t, nil)

			res, err := d.Dispatch(context.Background(), parse(t, skillID, tt.req))
			require.NoError(t, err)
			require.NotNil(t, res.Response)
			assert.Equal(t, tt.wantHandler, res.Handler)
			assert.Equal(t, tt.wantCard, res.DisplayCard)
			assert.Equal(t, []string{tt.wantHandler}, rec.calls)
		})
	}
}

func TestDispatch_NoHandler(t *testing.T) {
	tests := []struct {
		name  string
		appID string
		req   string
	}{
		{"invalid application id", "amzn1.ask.skill.X", intent(request.IntentHelp)},
		{"invalid launch", "amzn1.ask.skill.X", `{"type":"LaunchRequest"}`},
		{"unrecognized type", skillID, `{"type":"AudioPlayer.PlaybackStarted"}`},
		{"permission accepted", skillID, `{"type":"AlexaSkillEvent.SkillPermissionAccepted"}`},
		{"other playback command", skillID, `{"type":"PlaybackController.NextCommandIssued"}`},
		{"empty type", skillID, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, _ := newTestDispatcher(t, nil)

			res, err := d.Dispatch(context.Background(), parse(t, tt.appID, tt.req))
			require.NoError(t, err)
			assert.Nil(t, res.Response)
			assert.Empty(t, res.Handler)
			assert.Empty(t, rec.calls)
		})
	}
}

func TestDispatch_InvalidRequestSkipsUnregisteredIntent(t *testing.T) {
	d, _, _ := newTestDispatcher(t, nil)
	res, err := d.Dispatch(context.Background(), parse(t, "amzn1.ask.skill.X", intent("Unknown")))
	require.NoError(t, err)
	assert.Nil(t, res.Response)
}

func TestDispatch_EmptyBody(t *testing.T) {
	d, rec, _ := newTestDispatcher(t, nil)
	req, err := request.Parse(nil, reqConfig)
	require.NoError(t, err)

	res, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, res.Response)
	assert.Empty(t, rec.calls)
}

func TestDispatch_RegisteredIntent(t *testing.T) {
	reg := NewRegistry()
	var got *Context
	require.NoError(t, reg.Register("PlaySong", func(c *Context) Handler {
		got = c
		return HandlerFunc(func(context.Context) (*response.Response, error) {
			return NewIntent(c, LogicalName("Music", "PlaySong")).
				Respond(map[string]any{"song": c.Slots().Value("Song")}).
				ElicitSlot("Artist", false), nil
		})
	}))

	d, _, spans := newTestDispatcher(t, reg)
	req := parse(t, skillID, `{"type":"IntentRequest","locale":"en-US","intent":{"name":"PlaySong","slots":{"Song":{"name":"Song","value":"one"}}}}`)

	res, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Response)
	assert.Equal(t, "PlaySong", res.Handler)
	assert.True(t, res.DisplayCard)
	assert.False(t, res.Response.EndSession())
	assert.Equal(t, "one", res.Response.Locals()["song"])
	assert.Equal(t,
		"alexa/en-us/intent_handlers/music/play_song/elicitations/artist.ssml.tmpl",
		res.Response.PartialPath(response.FormatSSML, ""))

	require.NotNil(t, got)
	assert.Same(t, req, got.Request)
	assert.Same(t, req.Device(), got.Device)
	assert.Equal(t, skillID, got.Session.ApplicationID)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "alexa.dispatch", ended[0].Name())
}

func TestDispatch_UnregisteredIntent(t *testing.T) {
	d, rec, spans := newTestDispatcher(t, nil)

	res, err := d.Dispatch(context.Background(), parse(t, skillID, intent("OrderPizza")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnregisteredIntent)
	assert.True(t, IsConfigError(err))

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "OrderPizza", ce.Intent)
	assert.Nil(t, res.Response)
	assert.Empty(t, rec.calls)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "Error", ended[0].Status().Code.String())
}

func TestDispatch_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	reg.MustRegister("Broken", func(*Context) Handler {
		return HandlerFunc(func(context.Context) (*response.Response, error) { return nil, boom })
	})
	reg.MustRegister("Silent", func(*Context) Handler {
		return HandlerFunc(func(context.Context) (*response.Response, error) { return nil, nil })
	})
	d, _, _ := newTestDispatcher(t, reg)

	res, err := d.Dispatch(context.Background(), parse(t, skillID, intent("Broken")))
	require.ErrorIs(t, err, boom)
	assert.False(t, IsConfigError(err))
	assert.Equal(t, "Broken", res.Handler)

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "Broken", he.Handler)

	_, err = d.Dispatch(context.Background(), parse(t, skillID, intent("Silent")))
	require.ErrorIs(t, err, ErrNilResponse)
}

func TestNew_RequiresAllBuiltins(t *testing.T) {
	rec := &recorder{}
	b := rec.builtins()
	b.Pause = nil
	b.Launch = nil

	_, err := New(b, nil, Options{})
	require.ErrorIs(t, err, ErrMissingBuiltin)
	assert.Contains(t, err.Error(), HandlerPause)
	assert.Contains(t, err.Error(), HandlerLaunch)
}

func TestIntent_ImplementsResponseIntent(t *testing.T) {
	req := parse(t, skillID, `{"type":"IntentRequest","locale":"de-DE","intent":{"name":"X","slots":{"A":{"name":"A","value":"1"}}}}`)
	c := newContext(req, zerolog.Nop())

	var i response.Intent = NewIntent(c, LogicalName("X"))
	assert.Equal(t, "Alexa.IntentHandlers.X", i.LogicalName())
	assert.Equal(t, "de-DE", i.Locale())
	assert.Equal(t, "1", i.Slots().Value("A"))
}
