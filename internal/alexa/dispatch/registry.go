// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ManuGH/skillgate/internal/alexa/response"
)

// Handler produces the response for one turn.
type Handler interface {
	Handle(ctx context.Context) (*response.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context) (*response.Response, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context) (*response.Response, error) { return f(ctx) }

// Factory builds a handler bound to one turn's context.
type Factory func(*Context) Handler

// Registry maps custom intent names to handler factories. It is populated at
// startup and only read while serving.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds intent to f. Built-in platform intents are resolved by the
// dispatcher's fixed table and are rejected here.
func (r *Registry) Register(intent string, f Factory) error {
	if strings.TrimSpace(intent) == "" {
		return errors.New("intent name is empty")
	}
	if f == nil {
		return fmt.Errorf("intent %q: nil factory", intent)
	}
	if isBuiltin(intent) {
		return &ConfigError{Intent: intent, Err: ErrBuiltinIntent}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[intent]; exists {
		return &ConfigError{Intent: intent, Err: ErrDuplicateHandler}
	}
	r.factories[intent] = f
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(intent string, f Factory) {
	if err := r.Register(intent, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for intent.
func (r *Registry) Lookup(intent string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[intent]
	return f, ok
}

// Names returns the registered intent names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Require checks that every custom intent in names has a handler, so a
// mismatched interaction model fails at startup instead of mid-conversation.
// Built-in intent names are accepted.
func (r *Registry) Require(names ...string) error {
	var errs []error
	for _, name := range names {
		if isBuiltin(name) {
			continue
		}
		if _, ok := r.Lookup(name); !ok {
			errs = append(errs, &ConfigError{Intent: name, Err: ErrUnregisteredIntent})
		}
	}
	return errors.Join(errs...)
}
