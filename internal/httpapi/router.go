package httpapi

import (
	"net/http"

	"legalconnect-engine/internal/metrics"
)

// NewHandler is the mux wrapped in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	return Wrap(NewMux(d), d)
}

// Wrap applies the standard middleware chain to h.
func Wrap(h http.Handler, d Deps) http.Handler {
	return Chain(h, Recover, RequestID, AccessLog, Metrics, CorsFor(d.corsOrigins))
}

// NewMux returns the raw mux so main() can attach extra routes before
// wrapping it.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	if d.Validate == nil {
		d.Validate = NewValidator()
	}
	user := func(h http.HandlerFunc) http.HandlerFunc { return Authenticate(d.Tokens, h) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return Authenticate(d.Tokens, RequireAdmin(h)) }

	mux.HandleFunc("/api/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Auth
	ah := AuthHandler{DB: d.DB, Tokens: d.Tokens, Validate: d.Validate}
	mux.HandleFunc("/api/auth/register", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: d.Limiter.Wrap(ah.Register),
	}))
	mux.HandleFunc("/api/auth/login", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: d.Limiter.Wrap(ah.Login),
	}))
	mux.HandleFunc("/api/auth/me", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: user(ah.Me),
	}))

	// Lawyers
	lh := LawyersHandler{DB: d.DB, Hub: d.Hub, CfgVal: d.CfgVal, Validate: d.Validate}
	mux.HandleFunc("/api/lawyers", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  lh.List,
		http.MethodPost: admin(lh.Create),
	}))
	mux.HandleFunc("/api/lawyers/facets", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Facets,
	}))
	mux.HandleFunc("/api/lawyers/nearest", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Nearest,
	}))
	rh := RosterHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/api/lawyers/import", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(rh.Import),
	}))
	mux.HandleFunc("/api/lawyers/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    lh.GetByPath, // expects /api/lawyers/{id}
		http.MethodPut:    admin(lh.UpdateByPath),
		http.MethodDelete: admin(lh.DeleteByPath),
	}))

	// Shortlist and viewed
	sh := ShortlistHandler{DB: d.DB, Hub: d.Hub, Shelf: d.Shelf}
	mux.HandleFunc("/api/shortlist", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    user(sh.List),
		http.MethodDelete: user(sh.Clear),
	}))
	mux.HandleFunc("/api/shortlist/export", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: user(sh.Export),
	}))
	mux.HandleFunc("/api/shortlist/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   user(sh.AddByPath), // expects /api/shortlist/{id}
		http.MethodDelete: user(sh.RemoveByPath),
	}))
	mux.HandleFunc("/api/viewed", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    user(sh.Viewed),
		http.MethodDelete: user(sh.ClearViewed),
	}))

	// Comparison
	cmp := ComparisonHandler{DB: d.DB}
	mux.HandleFunc("/api/comparison", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    user(cmp.List),
		http.MethodDelete: user(cmp.Clear),
	}))
	mux.HandleFunc("/api/comparison/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   user(cmp.AddByPath),
		http.MethodDelete: user(cmp.RemoveByPath),
	}))

	// History
	hh := HistoryHandler{DB: d.DB, Validate: d.Validate}
	mux.HandleFunc("/api/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  user(hh.List),
		http.MethodPost: user(hh.Save),
	}))

	// Browse
	bh := BrowseHandler{DB: d.DB, Hub: d.Hub, Registry: d.Browse, Shelf: d.Shelf}
	mux.HandleFunc("/api/browse", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: user(bh.Start),
	}))
	mux.HandleFunc("/api/browse/", user(bh.Route))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sec := SecretsHandler{CfgVal: d.CfgVal, Tokens: d.Tokens}
	mux.HandleFunc("/api/secrets/jwt/rotate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(sec.RotateJWT),
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ch.Get),
		http.MethodPut: admin(ch.Put),
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ch.Path),
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(ch.Validate),
		http.MethodPost: admin(ch.Validate),
	}))

	// DB
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(dbh.Checkpoint),
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub, Tokens: d.Tokens}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	mux.Handle("/metrics", metrics.Handler())

	return mux
}
