package httpapi

import (
	"net/http"
	"path/filepath"
	"slices"
	"sync/atomic"

	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/events"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	Hub         *events.Hub
}

type configPutResp struct {
	Config config.Config `json:"config"`
	// RestartRequired names changed keys that are only read at startup.
	RestartRequired []string `json:"restart_required"`
}

func (h ConfigHandler) current() config.Config {
	return h.CfgVal.Load().(config.Config)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.current())
}

// Put replaces the whole config file and reloads it. Per-request settings
// (nearby limit, CORS origins) apply at once.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := decodeJSON(r, w, &incoming); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	prev := h.current()
	h.CfgVal.Store(saved)
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeConfigUpdated, nil)
	writeJSON(w, configPutResp{Config: saved, RestartRequired: restartRequired(prev, saved)})
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

// Validate checks the live config on GET and a candidate body on POST.
// Nothing is saved either way.
func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cfg := h.current()
	if r.Method == http.MethodPost {
		if err := decodeJSON(r, w, &cfg); err != nil {
			writeBadJSON(w, r, err)
			return
		}
	}
	_, vr := config.NormalizeAndValidate(cfg)
	writeJSON(w, vr)
}

func restartRequired(old, cur config.Config) []string {
	out := []string{}
	check := func(key string, changed bool) {
		if changed {
			out = append(out, key)
		}
	}
	check("app.host", old.App.Host != cur.App.Host)
	check("app.port", old.App.Port != cur.App.Port)
	check("app.data_dir", old.App.DataDir != cur.App.DataDir)
	check("auth.issuer", old.Auth.Issuer != cur.Auth.Issuer)
	check("auth.token_ttl_hours", old.Auth.TokenTTLHours != cur.Auth.TokenTTLHours)
	check("auth.keyring_account", old.Auth.KeyringAccount != cur.Auth.KeyringAccount)
	check("auth.login_rps", old.Auth.LoginRPS != cur.Auth.LoginRPS)
	check("auth.login_burst", old.Auth.LoginBurst != cur.Auth.LoginBurst)
	check("browse", old.Browse != cur.Browse)
	check("storage", old.Storage != cur.Storage)
	check("roster.seed_path", old.Roster.SeedPath != cur.Roster.SeedPath)
	check("maintenance", old.Maintenance != cur.Maintenance)
	slices.Sort(out)
	return out
}
