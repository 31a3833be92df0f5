// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/skillgate/internal/alexa/request"
	"github.com/ManuGH/skillgate/internal/alexa/response"
)

func noopFactory(*Context) Handler {
	return HandlerFunc(func(context.Context) (*response.Response, error) { return nil, nil })
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("PlaySong", noopFactory))
	require.NoError(t, reg.Register("AddToQueue", noopFactory))

	_, ok := reg.Lookup("PlaySong")
	assert.True(t, ok)
	_, ok = reg.Lookup("playsong")
	assert.False(t, ok, "lookup is case sensitive")

	assert.Equal(t, []string{"AddToQueue", "PlaySong"}, reg.Names())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("PlaySong", noopFactory))

	err := reg.Register("PlaySong", noopFactory)
	require.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestRegistry_RejectsBuiltins(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{request.IntentHelp, request.IntentCancel, request.IntentStop, request.IntentPause, request.IntentResume, request.IntentFallback} {
		err := reg.Register(name, noopFactory)
		require.ErrorIs(t, err, ErrBuiltinIntent, name)
	}
}

func TestRegistry_RejectsInvalidInput(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.Register("", noopFactory))
	require.Error(t, reg.Register("  ", noopFactory))
	require.Error(t, reg.Register("X", nil))
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("X", noopFactory)
	assert.Panics(t, func() { reg.MustRegister("X", noopFactory) })
}

func TestRegistry_Require(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("PlaySong", noopFactory)

	require.NoError(t, reg.Require("PlaySong", request.IntentHelp, request.IntentStop))

	err := reg.Require("PlaySong", "OrderPizza", "BookTable")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnregisteredIntent)
	assert.Contains(t, err.Error(), "OrderPizza")
	assert.Contains(t, err.Error(), "BookTable")
}
