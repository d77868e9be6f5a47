package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/events"
)

func TestConfig_GetPutValidate(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/config", env.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[config.Config](t, rec)
	assert.Equal(t, 6, cfg.Filters.NearbyLimit)

	cfg.Filters.NearbyLimit = 1
	sub := env.hub.Subscribe(events.Filter{})
	defer env.hub.Unsubscribe(sub)
	rec = env.do(http.MethodPut, "/config", env.adminTok, cfg)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, (<-sub.C).Data, `"config.updated"`)
	assert.Equal(t, 1, env.cfgVal.Load().(config.Config).Filters.NearbyLimit)

	// The reloaded limit applies to the next request.
	rec = env.do(http.MethodGet, "/api/lawyers?location=Parramatta&practiceArea=immigration", "", nil)
	assert.Len(t, decode[listResp](t, rec).Nearby, 1)

	cfg.Browse.SettleMS += 100
	rec = env.do(http.MethodPut, "/config", env.adminTok, cfg)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	put := decode[configPutResp](t, rec)
	assert.Equal(t, cfg.Browse.SettleMS, put.Config.Browse.SettleMS)
	assert.Contains(t, put.RestartRequired, "browse")
	assert.NotContains(t, put.RestartRequired, "app.port")

	cfg.App.Port = -1
	rec = env.do(http.MethodPut, "/config", env.adminTok, cfg)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	vr := decode[config.Validation](t, rec)
	assert.False(t, vr.OK())

	rec = env.do(http.MethodPut, "/config", env.adminTok, `{"nope":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/config/validate", env.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[config.Validation](t, rec).OK())

	// A dry run reports problems without saving.
	rec = env.do(http.MethodPost, "/config/validate", env.adminTok, cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[config.Validation](t, rec).OK())
	assert.Equal(t, cfg.Browse.SettleMS, env.cfgVal.Load().(config.Config).Browse.SettleMS)

	rec = env.do(http.MethodGet, "/config/path", env.adminTok, nil)
	assert.Contains(t, rec.Body.String(), "config.yml")
}

func TestDBCheckpoint(t *testing.T) {
	env := newEnv(t)

	req := newRequest(http.MethodPost, "/db/checkpoint", "Bearer "+env.adminTok)
	req.RemoteAddr = "192.0.2.10:5000"
	rec := serve(env.h, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	req = newRequest(http.MethodPost, "/db/checkpoint", "Bearer "+env.adminTok)
	req.RemoteAddr = "127.0.0.1:5000"
	rec = serve(env.h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = newRequest(http.MethodPost, "/db/checkpoint", "Bearer "+env.userTok)
	req.RemoteAddr = "127.0.0.1:5000"
	assert.Equal(t, http.StatusForbidden, serve(env.h, req).Code)
}

func TestRotateJWT(t *testing.T) {
	keyring.MockInit()
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/api/secrets/jwt/rotate", env.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Tokens signed with the old secret are refused.
	rec = env.do(http.MethodGet, "/api/auth/me", env.userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := keyring.Get("legalconnect", config.Default().Auth.KeyringAccount)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "jamie@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/auth/me", decode[authResp](t, rec).Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t)
	env.do(http.MethodGet, "/api/health", "", nil)

	rec := env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `legalconnect_http_requests_total{method="GET",route="/api/health",status="200"}`)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodPatch, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", errorCode(t, rec))
}

func TestCors_Preflight(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/lawyers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(env.h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCors_ConfiguredOrigins(t *testing.T) {
	env := newEnv(t)
	cfg := env.cfgVal.Load().(config.Config)
	cfg.App.CorsOrigins = []string{"http://app.test"}
	env.cfgVal.Store(cfg)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/lawyers", nil)
		req.Header.Set("Origin", origin)
		return serve(env.h, req)
	}
	assert.Equal(t, "http://app.test", preflight("http://app.test").Header().Get("Access-Control-Allow-Origin"))
	rec := preflight("http://evil.test")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	}), RequestID)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-42.a_b")
	rec := serve(h, req)
	assert.Equal(t, "trace-42.a_b", rec.Body.String())
	assert.Equal(t, "trace-42.a_b", rec.Header().Get("X-Request-ID"))

	for _, bad := range []string{"", "has space", "x=y\"", strings.Repeat("a", 65)} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", bad)
		rec = serve(h, req)
		assert.Len(t, rec.Body.String(), 36, "uuid generated for %q", bad)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover, RequestID)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decode[APIError](t, rec)
	assert.Equal(t, "internal_error", e.Error.Code)
	assert.Empty(t, e.Error.RequestID, "Recover runs outside RequestID here")
}

// openStream connects to /events and returns a reader of data lines.
func openStream(t *testing.T, srv *httptest.Server, query string) func() string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events"+query, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	return func() string {
		for {
			line, err := rd.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
}

func TestEvents_StreamsPingAndEvents(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.h)
	defer srv.Close()

	read := openStream(t, srv, "")
	assert.Contains(t, read(), `"type":"ping"`)

	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	env.hub.Emit("", events.TypeLawyerCreated, map[string]any{"id": 7})
	got := read()
	assert.Contains(t, got, `"type":"lawyer.created"`)
	assert.Contains(t, got, `"seq":1`)
}

func TestEvents_ShortlistEventsAreOwnerScoped(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.h)
	defer srv.Close()

	mine := openStream(t, srv, "?token="+env.userTok+"&types=shortlist,lawyer")
	anon := openStream(t, srv, "")
	mine()
	anon()
	require.Eventually(t, func() bool { return env.hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	rec := env.do(http.MethodPost, "/api/shortlist/1", env.userTok, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	env.hub.Emit("", events.TypeHistoryPruned, nil)
	env.hub.Emit("", events.TypeLawyerDeleted, map[string]any{"id": 9})

	assert.Contains(t, mine(), `"type":"shortlist.changed"`)
	assert.Contains(t, mine(), `"type":"lawyer.deleted"`)
	assert.Contains(t, anon(), `"type":"history.pruned"`)
}

func TestEvents_BadToken(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/events?token=nope", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))
}
