package httpapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/domain"
)

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRegister(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Casey", "email": "Casey@Example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[authResp](t, rec)
	assert.Equal(t, "casey@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	require.NotEmpty(t, resp.Token)

	claims, err := env.tokens.Load().Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	rec = env.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Casey again", "email": "casey@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user_exists", errorCode(t, rec))
}

func TestRegister_Validation(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "", "email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decode[APIError](t, rec)
	assert.Equal(t, "validation_failed", e.Error.Code)
	assert.Contains(t, e.Error.Fields, "name")
	assert.Contains(t, e.Error.Fields, "email")
	assert.Equal(t, "password must be at least 6 characters long", e.Error.Fields["password"])

	rec = env.do(http.MethodPost, "/api/auth/register", "", `{"name":"x","email":"x@y.z","password":"123456","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", errorCode(t, rec))
}

func TestLogin(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "JAMIE@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[authResp](t, rec)
	assert.Equal(t, env.user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	for _, body := range []map[string]any{
		{"email": "jamie@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "s3cret-pass"},
	} {
		rec = env.do(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	}
}

func TestLogin_RateLimited(t *testing.T) {
	env := newEnvWith(t, NewIPLimiter(0.001, 2))
	body := map[string]any{"email": "jamie@example.com", "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/auth/login", "", body).Code)

	rec := env.do(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", errorCode(t, rec))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestAuthenticate_Statuses(t *testing.T) {
	env := newEnv(t)

	oldTok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: env.user.ID,
		Email:  env.user.Email,
		Role:   string(env.user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "legalconnect",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing_token"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "invalid_token_format"},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, "invalid_token_format"},
		{"garbage", "Bearer not.a.jwt", http.StatusForbidden, "invalid_token"},
		{"expired", "Bearer " + oldTok, http.StatusForbidden, "invalid_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/api/auth/me", tc.header)
			rec := serve(env.h, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}

	rec := env.do(http.MethodGet, "/api/auth/me", env.userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jamie@example.com", decode[domain.User](t, rec).Email)
}

func TestRequireAdmin(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/config", env.userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin_required", errorCode(t, rec))

	rec = env.do(http.MethodGet, "/config", env.adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
