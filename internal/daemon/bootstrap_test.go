// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/skillgate/internal/cache"
	"github.com/ManuGH/skillgate/internal/config"
)

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "v-test"
	cfg.Skill.IDs = []string{"amzn1.ask.skill.Y"}
	cfg.API.RateLimit.Enabled = false
	return cfg
}

func TestBootstrap_ServesWebhook(t *testing.T) {
	logger := zerolog.Nop()
	templates := fstest.MapFS{
		"alexa/en-us/intent_handlers/good_bye/default.ssml.tmpl": {Data: []byte("See you soon.")},
	}
	rt, err := Bootstrap(context.Background(), testConfig(), Options{Templates: templates, Logger: &logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	body := `{"session":{"new":false,"application":{"applicationId":"amzn1.ask.skill.Y"}},
	  "context":{"System":{"device":{"deviceId":"d1","supportedInterfaces":{}}}},
	  "request":{"type":"IntentRequest","locale":"en-US","intent":{"name":"AMAZON.StopIntent"}}}`
	rec := httptest.NewRecorder()
	rt.API.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, config.DefaultWebhookPath, strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<speak>See you soon.</speak>")
	assert.Equal(t, "development", rt.Proactive.Stage())
}

func TestBootstrap_ReadinessTracksRequiredIntents(t *testing.T) {
	logger := zerolog.Nop()
	cfg := testConfig()
	cfg.Skill.Intents = []string{"PlaySong"}

	rt, err := Bootstrap(context.Background(), cfg, Options{Logger: &logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	resp := rt.Health.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Contains(t, resp.Checks["intent_handlers"].Error, "PlaySong")
}

func TestNewTokenCache(t *testing.T) {
	logger := zerolog.Nop()

	store, err := NewTokenCache(config.ProactiveConfig{TokenCache: config.TokenCacheNone}, logger)
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = NewTokenCache(config.ProactiveConfig{TokenCache: config.TokenCacheMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, store)
	require.NoError(t, store.Close())

	mr := miniredis.RunT(t)
	store, err = NewTokenCache(config.ProactiveConfig{
		TokenCache: config.TokenCacheRedis,
		Redis:      config.RedisConfig{Addr: mr.Addr()},
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, store)
	require.NoError(t, store.Close())

	_, err = NewTokenCache(config.ProactiveConfig{TokenCache: "memcached"}, logger)
	assert.Error(t, err)
}

func TestBootstrap_RedisTokenCacheHealth(t *testing.T) {
	logger := zerolog.Nop()
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Proactive.TokenCache = config.TokenCacheRedis
	cfg.Proactive.Redis.Addr = mr.Addr()

	rt, err := Bootstrap(context.Background(), cfg, Options{Logger: &logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	resp := rt.Health.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, "healthy", string(resp.Checks["token_cache"].Status))

	mr.Close()
	resp = rt.Health.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, "degraded", string(resp.Checks["token_cache"].Status))
}

func TestRuntime_RegisterShutdownHooks(t *testing.T) {
	logger := zerolog.Nop()
	cfg := testConfig()
	cfg.Proactive.TokenCache = config.TokenCacheMemory
	rt, err := Bootstrap(context.Background(), cfg, Options{Logger: &logger})
	require.NoError(t, err)

	m, err := NewManager(testServerConfig("127.0.0.1:0"), Deps{Logger: zerolog.New(nil), APIHandler: rt.API.Handler()})
	require.NoError(t, err)
	rt.RegisterShutdownHooks(m)
	assert.Empty(t, rt.closers)
	assert.Len(t, m.(*manager).shutdownHooks, 2)
	assert.NoError(t, rt.Close(context.Background()))

	for _, h := range m.(*manager).shutdownHooks {
		assert.NoError(t, h.hook(context.Background()))
	}
}
