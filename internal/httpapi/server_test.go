package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/browse"
	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/selection"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	t       *testing.T
	db      *store.DB
	h       http.Handler
	hub     *events.Hub
	tokens  *atomic.Pointer[auth.Issuer]
	cfgVal  *atomic.Value
	cfgPath string
	lawyers []domain.Lawyer

	admin    domain.User
	user     domain.User
	adminTok string
	userTok  string
	otherTok string
}

func testRoster() []domain.Lawyer {
	return []domain.Lawyer{
		{
			ExternalID: "t-1", Name: "Sarah Chen", Firm: "Chen Family Law",
			PracticeArea: domain.PracticeFamily, Specialties: []string{"Divorce", "Custody"},
			Location: "Parramatta", State: "NSW", ExperienceYears: 12, HourlyRate: 350,
			Verified: true, MediationCertified: true, Languages: []string{"English", "Mandarin"},
			Phone: "02 9000 0001", Email: "sarah@chenlaw.example", Website: "https://chenlaw.example",
			Coordinates: &domain.Coordinates{Lat: -33.815, Lng: 151.001},
		},
		{
			ExternalID: "t-2", Name: "Raj Patel", Firm: "Patel Conveyancing",
			PracticeArea: domain.PracticeConveyancing, Specialties: []string{"Residential"},
			Location: "Blacktown", State: "NSW", ExperienceYears: 6, HourlyRate: 220,
			Languages: []string{"English", "Hindi"},
			Coordinates: &domain.Coordinates{Lat: -33.771, Lng: 150.906},
		},
		{
			ExternalID: "t-3", Name: "Maria Lopez", Firm: "Lopez Migration",
			PracticeArea: domain.PracticeImmigration, Specialties: []string{"Partner Visas"},
			Location: "Liverpool", State: "NSW", ExperienceYears: 3, HourlyRate: 280,
			Verified: true, Languages: []string{"Spanish", "English"},
			Coordinates: &domain.Coordinates{Lat: -33.920, Lng: 150.923},
		},
		{
			ExternalID: "t-4", Name: "Tom Nguyen", Firm: "Nguyen & Co",
			PracticeArea: domain.PracticeFamily, Specialties: []string{"Property Settlement"},
			Location: "Parramatta", State: "NSW", ExperienceYears: 20, HourlyRate: 450,
			ResponseGuarantee: true, Languages: []string{"Vietnamese", "English"},
		},
	}
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWith(t, nil)
}

func newEnvWith(t *testing.T, limiter *IPLimiter) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{t: t, db: db, hub: events.NewHub()}
	for _, l := range testRoster() {
		created, err := store.CreateLawyer(ctx, db.Pool, l)
		require.NoError(t, err)
		env.lawyers = append(env.lawyers, created)
	}

	env.tokens = &atomic.Pointer[auth.Issuer]{}
	env.tokens.Store(auth.NewIssuer(auth.Config{Secret: []byte(testSecret), Issuer: "legalconnect", TTL: time.Hour}))

	env.cfgPath = filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	require.NoError(t, config.SaveAtomic(env.cfgPath, cfg))
	env.cfgVal = &atomic.Value{}
	env.cfgVal.Store(cfg)

	shelf := shortlist.NewShelf(shortlist.NewMemoryKV())
	reg, err := browse.NewRegistry(shelf, browse.Options{CacheSize: 8, Selection: selection.Options{Settle: 0}})
	require.NoError(t, err)

	env.admin = env.createUser("Admin", "admin@legalconnect.example", domain.RoleAdmin)
	env.user = env.createUser("Jamie", "jamie@example.com", domain.RoleUser)
	other := env.createUser("Alex", "alex@example.com", domain.RoleUser)
	env.adminTok = env.issue(env.admin)
	env.userTok = env.issue(env.user)
	env.otherTok = env.issue(other)

	env.h = NewHandler(Deps{
		DB:          db.Pool,
		Hub:         env.hub,
		CfgVal:      env.cfgVal,
		Tokens:      env.tokens,
		UserCfgPath: env.cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(env.cfgPath) },
		Shelf:       shelf,
		Browse:      reg,
		Limiter:     limiter,
	})
	return env
}

func (e *testEnv) createUser(name, email string, role domain.Role) domain.User {
	e.t.Helper()
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(e.t, err)
	u, err := store.CreateUser(context.Background(), e.db.Pool, domain.User{
		Name: name, Email: email, PasswordHash: hash, Role: role,
	})
	require.NoError(e.t, err)
	return u
}

func (e *testEnv) issue(u domain.User) string {
	e.t.Helper()
	tok, err := e.tokens.Load().Issue(u)
	require.NoError(e.t, err)
	return tok
}

// do sends a request through the full middleware chain. body may be nil, a
// string, or a value to encode as JSON.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[APIError](t, rec).Error.Code
}

func newRequest(method, path, authHeader string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
