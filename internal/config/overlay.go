// config/overlay.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix marks environment variables that override config keys.
const EnvPrefix = "LEGALCONNECT_"

// LoadDotEnv loads .env files if present. Variables already set in the
// process environment win.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// OverlayEnv applies LEGALCONNECT_* variables on top of cfg.
func OverlayEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("HOST", &cfg.App.Host)
	num("PORT", &cfg.App.Port)
	str("DATA_DIR", &cfg.App.DataDir)
	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		cfg.App.CorsOrigins = strings.Split(v, ",")
	}
	num("TOKEN_TTL_HOURS", &cfg.Auth.TokenTTLHours)
	str("SHORTLIST_BACKEND", &cfg.Storage.ShortlistBackend)
	str("REDIS_URL", &cfg.Storage.RedisURL)
	str("ROSTER_SEED_PATH", &cfg.Roster.SeedPath)
	num("NEARBY_LIMIT", &cfg.Filters.NearbyLimit)
	str("ADMIN_EMAIL", &cfg.Admin.Email)

	if len(errs) > 0 {
		return fmt.Errorf("env overlay: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AdminPassword is read from the environment only; it is never stored in
// config.yml.
func AdminPassword() string {
	return os.Getenv(EnvPrefix + "ADMIN_PASSWORD")
}
