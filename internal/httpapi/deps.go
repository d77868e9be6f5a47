package httpapi

import (
	"database/sql"
	"sync/atomic"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/browse"
	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/shortlist"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value                // stores config.Config
	Tokens *atomic.Pointer[auth.Issuer] // swapped when the signing secret rotates

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Shelf    *shortlist.Shelf
	Browse   *browse.Registry
	Limiter  *IPLimiter // login and register; nil disables limiting
	Validate *Validator
}

func (d Deps) corsOrigins() []string {
	if d.CfgVal == nil {
		return nil
	}
	cfg, ok := d.CfgVal.Load().(config.Config)
	if !ok {
		return nil
	}
	return cfg.App.CorsOrigins
}
