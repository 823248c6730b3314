// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// TokenHeader is checked before the Authorization header.
const TokenHeader = "x-auth-token"

// ErrorWriter renders an authentication failure. The error wraps one of
// apperr.ErrUnauthorized, apperr.ErrInvalidToken or apperr.ErrTokenRevoked.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Verifier is satisfied by *TokenManager.
type Verifier interface {
	Verify(token string) (*models.Identity, error)
}

// Gateway is the single authorization checkpoint for protected routes.
type Gateway struct {
	verifier   Verifier
	revocation RevocationList
	onError    ErrorWriter
}

// NewGateway creates a Gateway. revocation may be nil, in which case tokens
// are never checked against a revocation list.
func NewGateway(verifier Verifier, revocation RevocationList, onError ErrorWriter) *Gateway {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Gateway{verifier: verifier, revocation: revocation, onError: onError}
}

// ExtractToken returns the first non-empty token from x-auth-token or an
// Authorization: Bearer header.
func ExtractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Resolve verifies the request's token and returns its identity.
func (g *Gateway) Resolve(r *http.Request) (*models.Identity, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}

	identity, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	if g.revocation != nil && identity.TokenID != "" {
		revoked, err := g.revocation.IsRevoked(r.Context(), identity.TokenID)
		if err != nil {
			// Fail closed: a token we cannot check is not accepted.
			return nil, fmt.Errorf("%w: revocation check failed: %v", apperr.ErrInvalidToken, err)
		}
		if revoked {
			return nil, apperr.ErrTokenRevoked
		}
	}
	return identity, nil
}

// Authenticate wraps next so it only runs with a verified identity in the
// request context.
func (g *Gateway) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Resolve(r)
		if err != nil {
			metrics.RecordAuth("verify", "failure")
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected by auth gateway")
			g.onError(w, r, err)
			return
		}

		metrics.RecordAuth("verify", "success")
		ctx := ContextWithIdentity(r.Context(), identity)
		ctx = logging.ContextWithAccountID(ctx, identity.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type identityKey struct{}

// ContextWithIdentity attaches identity to ctx.
func ContextWithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity set by Authenticate.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*models.Identity)
	return identity, ok && identity != nil
}
