// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package render turns a dispatched response into the platform reply: it
// renders the resolved templates and assembles the response envelope.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/ssml"
)

// ErrTemplateNotFound is returned when no layer contains the template.
var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates
var embedded embed.FS

// DefaultTemplates returns the built-in en-US templates for the platform
// intents, rooted so paths start with "alexa/".
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// View is the data a template is executed with.
type View struct {
	Intent string
	Locale string
	Locals map[string]any
	Slots  request.SlotMap
	Device *request.Device
}

// Renderer renders the template at path.
type Renderer interface {
	Render(ctx context.Context, path string, view View) (string, error)
}

// TemplateRenderer renders text/template files from a stack of file
// systems. The first layer that has a path wins, so a deployment directory
// can override the embedded defaults. Parsed templates are cached.
type TemplateRenderer struct {
	layers []fs.FS
	funcs  template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewTemplateRenderer creates a renderer over layers, searched in order.
func NewTemplateRenderer(layers ...fs.FS) *TemplateRenderer {
	return &TemplateRenderer{
		layers: layers,
		funcs: template.FuncMap{
			"escape": ssml.Escape,
			"lower":  strings.ToLower,
			"slot": func(slots request.SlotMap, name string) string {
				return slots.Value(name)
			},
		},
		cache: make(map[string]*template.Template),
	}
}

// Render implements Renderer. Output is trimmed of surrounding whitespace.
func (r *TemplateRenderer) Render(ctx context.Context, path string, view View) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpl, err := r.lookup(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("execute template %s: %w", path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *TemplateRenderer) lookup(path string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[path]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, err := r.read(path)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(path).Funcs(r.funcs).Option("missingkey=zero").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}

	r.mu.Lock()
	r.cache[path] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

func (r *TemplateRenderer) read(path string) ([]byte, error) {
	for _, layer := range r.layers {
		src, err := fs.ReadFile(layer, path)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
}
