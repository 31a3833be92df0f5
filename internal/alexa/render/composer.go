// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/skillgate/internal/alexa/dispatch"
	"github.com/ManuGH/skillgate/internal/alexa/response"
	xglog "github.com/ManuGH/skillgate/internal/log"
)

// Composer renders the templates of a dispatch result and builds the envelope.
type Composer struct {
	renderer Renderer
	logger   zerolog.Logger
}

// NewComposer creates a composer over renderer.
func NewComposer(renderer Renderer, logger zerolog.Logger) *Composer {
	return &Composer{renderer: renderer, logger: logger}
}

// Compose renders speech, the optional card and the optional APL document
// for res. Missing templates are skipped; any other render failure is
// returned.
func (c *Composer) Compose(ctx context.Context, res dispatch.Result) (Envelope, error) {
	resp := res.Response
	if resp == nil {
		return EmptyEnvelope(), nil
	}

	view := viewFor(resp)
	logger := xglog.WithContext(ctx, c.logger)

	speech, err := c.renderOptional(ctx, logger, resp.PartialPath(response.FormatSSML, ""), view)
	if err != nil {
		return Envelope{}, err
	}

	if dev := resp.Device(); dev != nil && dev.APLSupported() {
		aplPath := resp.PartialPath(response.FormatAPL, "")
		doc, err := c.renderOptional(ctx, logger, aplPath, view)
		if err != nil {
			return Envelope{}, err
		}
		if doc != "" {
			if !json.Valid([]byte(doc)) {
				return Envelope{}, fmt.Errorf("apl template %s: rendered document is not valid JSON", aplPath)
			}
			resp = resp.With(resp.ForcedTemplate()).RenderDocument(aplToken(resp), json.RawMessage(doc), nil)
		}
	}

	env := BuildEnvelope(dispatch.Result{Response: resp, DisplayCard: res.DisplayCard, Handler: res.Handler}, speech)

	if res.DisplayCard {
		card, err := c.renderOptional(ctx, logger, resp.PartialPath(response.FormatCard, ""), view)
		if err != nil {
			return Envelope{}, err
		}
		if card != "" {
			env.Response.Card = simpleCard(card)
		}
	}

	if !env.Response.ShouldEndSessionValue() && resp.IsKeepListening() && env.Response.OutputSpeech != nil {
		env.Response.Reprompt = &Reprompt{OutputSpeech: *env.Response.OutputSpeech}
	}
	return env, nil
}

func (c *Composer) renderOptional(ctx context.Context, logger zerolog.Logger, path string, view View) (string, error) {
	out, err := c.renderer.Render(ctx, path, view)
	if errors.Is(err, ErrTemplateNotFound) {
		logger.Debug().Str(xglog.FieldEvent, "render.template_missing").Str(xglog.FieldTemplate, path).Msg("template not found, skipping")
		return "", nil
	}
	return out, err
}

func viewFor(resp *response.Response) View {
	v := View{Locals: resp.Locals(), Device: resp.Device()}
	if intent := resp.Intent(); intent != nil {
		v.Intent = intent.LogicalName()
		v.Locale = intent.Locale()
		v.Slots = intent.Slots()
	}
	return v
}

func aplToken(resp *response.Response) string {
	if intent := resp.Intent(); intent != nil {
		return intent.LogicalName()
	}
	return "skillgate"
}

// simpleCard uses the first rendered line as the title and the rest as content.
func simpleCard(rendered string) *Card {
	title, content, found := strings.Cut(rendered, "\n")
	if !found {
		return &Card{Type: "Simple", Content: strings.TrimSpace(title)}
	}
	return &Card{Type: "Simple", Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}
}

// ShouldEndSessionValue reports the shouldEndSession flag, treating an
// absent flag as true.
func (b Body) ShouldEndSessionValue() bool {
	return b.ShouldEndSession == nil || *b.ShouldEndSession
}
