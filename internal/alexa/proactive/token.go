// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proactive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/skillgate/internal/cache"
)

// DefaultTokenMargin is subtracted from expires_in before caching a token.
const DefaultTokenMargin = 60 * time.Second

// Token is the token endpoint reply.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Scope       string `json:"scope,omitempty"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenResult is a token and the reply it came from. Response is nil when
// the token was served from a cache. When Response is not OK the token is zero.
type TokenResult struct {
	Token    Token
	Response *PlatformResponse
}

// TokenSource supplies access tokens.
type TokenSource interface {
	Token(ctx context.Context, creds Credentials) (*TokenResult, error)
}

// FreshTokenSource requests a new token on every call.
type FreshTokenSource struct {
	Client *Client
}

// Token implements TokenSource.
func (s FreshTokenSource) Token(ctx context.Context, creds Credentials) (*TokenResult, error) {
	return s.Client.FetchAccessToken(ctx, creds)
}

// CachedTokenSource keeps tokens in a cache until shortly before they
// expire. Concurrent misses for the same client id share one fetch.
type CachedTokenSource struct {
	next   TokenSource
	store  cache.Cache
	margin time.Duration
	group  singleflight.Group
}

// NewCachedTokenSource caches tokens from next in store. A non-positive
// margin uses DefaultTokenMargin.
func NewCachedTokenSource(next TokenSource, store cache.Cache, margin time.Duration) *CachedTokenSource {
	if margin <= 0 {
		margin = DefaultTokenMargin
	}
	return &CachedTokenSource{next: next, store: store, margin: margin}
}

// Token implements TokenSource. Only successful replies are cached.
func (s *CachedTokenSource) Token(ctx context.Context, creds Credentials) (*TokenResult, error) {
	key := tokenCacheKey(creds)
	if tok, ok := s.store.Get(ctx, key); ok {
		tokenCacheTotal.WithLabelValues("hit").Inc()
		return &TokenResult{Token: Token{AccessToken: tok}}, nil
	}
	tokenCacheTotal.WithLabelValues("miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		tr, err := s.next.Token(ctx, creds)
		if err != nil {
			return nil, err
		}
		if tr.Response == nil || tr.Response.OK() {
			if ttl := time.Duration(tr.Token.ExpiresIn)*time.Second - s.margin; ttl > 0 {
				s.store.Set(ctx, key, tr.Token.AccessToken, ttl)
			}
		}
		return tr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TokenResult), nil
}

// Invalidate drops the cached token for creds.
func (s *CachedTokenSource) Invalidate(ctx context.Context, creds Credentials) {
	s.store.Delete(ctx, tokenCacheKey(creds))
}

// tokenCacheKey covers both client id and secret.
func tokenCacheKey(creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.ClientID + "\x00" + creds.ClientSecret))
	return "proactive:token:" + hex.EncodeToString(sum[:16])
}
