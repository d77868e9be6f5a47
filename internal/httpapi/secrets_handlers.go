package httpapi

import (
	"log"
	"net/http"
	"sync/atomic"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
	Tokens *atomic.Pointer[auth.Issuer]
}

// RotateJWT stores a fresh signing secret in the keyring and swaps the live
// issuer. Every token issued before the call stops verifying, including the
// caller's.
func (h SecretsHandler) RotateJWT(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	secret, err := secrets.RotateJWTSecret(cfg.Auth.KeyringAccount)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "rotate_failed", "failed to store secret: "+err.Error())
		return
	}
	h.Tokens.Store(auth.NewIssuer(auth.Config{
		Secret: []byte(secret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.TokenTTL(),
	}))
	log.Printf("level=info msg=\"jwt secret rotated\" request_id=%s", RequestIDFrom(r.Context()))
	writeJSON(w, map[string]any{"rotated": true})
}
