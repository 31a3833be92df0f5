// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/response"
)

// Namespace prefixes the logical name of every handler. It is dropped when
// the template directory is derived.
const Namespace = "Alexa.IntentHandlers"

// Context is the read-only view of a turn handed to a handler factory.
type Context struct {
	Request *request.Request
	Session request.Session
	Device  *request.Device
	Logger  zerolog.Logger
}

func newContext(req *request.Request, logger zerolog.Logger) *Context {
	return &Context{
		Request: req,
		Session: req.Session(),
		Device:  req.Device(),
		Logger:  logger,
	}
}

// Locale returns the request locale.
func (c *Context) Locale() string { return c.Request.Locale() }

// Slots returns the request slots.
func (c *Context) Slots() request.SlotMap { return c.Request.Slots() }

// LogicalName joins segments under Namespace, e.g. LogicalName("Music",
// "PlaySong") is "Alexa.IntentHandlers.Music.PlaySong".
func LogicalName(segments ...string) string {
	return strings.Join(append([]string{Namespace}, segments...), ".")
}

// Intent is embedded by handlers. It carries the logical handler name and
// the turn context and satisfies response.Intent.
type Intent struct {
	ctx  *Context
	name string
}

// NewIntent binds a handler identity to a turn.
func NewIntent(ctx *Context, logicalName string) Intent {
	return Intent{ctx: ctx, name: logicalName}
}

// LogicalName implements response.Intent.
func (i Intent) LogicalName() string { return i.name }

// Locale implements response.Intent.
func (i Intent) Locale() string { return i.ctx.Locale() }

// Slots implements response.Intent.
func (i Intent) Slots() request.SlotMap { return i.ctx.Slots() }

// Context returns the turn context.
func (i Intent) Context() *Context { return i.ctx }

// Respond starts a response for this intent with the given render context.
func (i Intent) Respond(locals map[string]any) *response.Response {
	return response.New(i, i.ctx.Device, locals)
}
