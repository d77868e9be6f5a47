package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/shortlist"
)

const claimsKey ctxKey = "claims"

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

func withClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ownerKey(c *auth.Claims) string {
	return shortlist.UserOwner(c.UserID)
}

// Authenticate requires a valid bearer token. A missing header or a header
// that is not "Bearer <token>" is 401; a token that fails verification is
// 403.
func Authenticate(tokens *atomic.Pointer[auth.Issuer], next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.BearerToken(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			metrics.RecordAuthFailure("missing_token")
			WriteError(w, r, http.StatusUnauthorized, "missing_token", "access token required")
			return
		case err != nil:
			metrics.RecordAuthFailure("invalid_token_format")
			WriteError(w, r, http.StatusUnauthorized, "invalid_token_format", "invalid token format")
			return
		}

		claims, err := tokens.Load().Verify(raw)
		if err != nil {
			metrics.RecordAuthFailure("invalid_token")
			WriteError(w, r, http.StatusForbidden, "invalid_token", "invalid or expired token")
			return
		}
		next(w, r.WithContext(withClaims(r.Context(), claims)))
	}
}

// RequireAdmin must run inside Authenticate.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFrom(r.Context())
		if !ok || !c.IsAdmin() {
			metrics.RecordAuthFailure("admin_required")
			WriteError(w, r, http.StatusForbidden, "admin_required", "admin access required")
			return
		}
		next(w, r)
	}
}
