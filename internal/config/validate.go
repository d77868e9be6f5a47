package config

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NormalizeAndValidate returns a normalized copy plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.App.Host = strings.TrimSpace(out.App.Host)
	out.App.CorsOrigins = cleanOrigins(out.App.CorsOrigins)
	out.Storage.ShortlistBackend = strings.ToLower(strings.TrimSpace(out.Storage.ShortlistBackend))
	out.Storage.RedisURL = strings.TrimSpace(out.Storage.RedisURL)
	out.Admin.Email = strings.ToLower(strings.TrimSpace(out.Admin.Email))
	out.Maintenance.PruneSpec = strings.TrimSpace(out.Maintenance.PruneSpec)
	out.Maintenance.CheckpointSpec = strings.TrimSpace(out.Maintenance.CheckpointSpec)
	if out.Storage.ShortlistBackend == "" {
		out.Storage.ShortlistBackend = BackendSQLite
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.Host != "" && out.App.Host != "127.0.0.1" && out.App.Host != "localhost" && out.App.Host != "::1" {
		res.addWarn("app.host is %q; the API will be reachable from other machines.", out.App.Host)
	}

	// auth
	if out.Auth.TokenTTLHours <= 0 {
		res.addErr("auth.token_ttl_hours must be > 0")
	} else if out.Auth.TokenTTLHours > 24*30 {
		res.addWarn("auth.token_ttl_hours is %d; tokens will live longer than a month.", out.Auth.TokenTTLHours)
	}
	if strings.TrimSpace(out.Auth.KeyringAccount) == "" {
		res.addErr("auth.keyring_account is required")
	}
	if out.Auth.LoginRPS <= 0 {
		res.addErr("auth.login_rps must be > 0")
	}
	if out.Auth.LoginBurst <= 0 {
		res.addErr("auth.login_burst must be > 0")
	}

	// browse
	if out.Browse.SwipeThreshold <= 0 {
		res.addErr("browse.swipe_threshold must be > 0")
	}
	if out.Browse.SettleMS < 0 {
		res.addErr("browse.settle_ms must be >= 0")
	} else if out.Browse.SettleMS > 2000 {
		res.addWarn("browse.settle_ms is %d; input will feel unresponsive.", out.Browse.SettleMS)
	}
	if out.Browse.SessionCacheSize <= 0 {
		res.addErr("browse.session_cache_size must be > 0")
	}

	// filters
	if out.Filters.NearbyLimit < 0 {
		res.addErr("filters.nearby_limit must be >= 0")
	} else if out.Filters.NearbyLimit == 0 {
		res.addWarn("filters.nearby_limit is 0; empty searches will show no nearby suggestions.")
	}

	// storage
	switch out.Storage.ShortlistBackend {
	case BackendSQLite:
	case BackendRedis:
		if out.Storage.RedisURL == "" {
			res.addErr("storage.redis_url is required when storage.shortlist_backend=redis")
		}
	default:
		res.addErr("storage.shortlist_backend must be sqlite or redis, got %q", out.Storage.ShortlistBackend)
	}

	// maintenance
	if out.Maintenance.HistoryRetentionDays <= 0 {
		res.addErr("maintenance.history_retention_days must be > 0")
	}
	for _, job := range []struct{ name, spec string }{
		{"maintenance.prune_spec", out.Maintenance.PruneSpec},
		{"maintenance.checkpoint_spec", out.Maintenance.CheckpointSpec},
	} {
		name, spec := job.name, job.spec
		if spec == "" {
			res.addWarn("%s is empty; that job will not run.", name)
			continue
		}
		if _, err := cronParser.Parse(spec); err != nil {
			res.addErr("%s is not a valid schedule: %v", name, err)
		}
	}

	// admin
	if out.Admin.Email != "" {
		if _, err := mail.ParseAddress(out.Admin.Email); err != nil {
			res.addErr("admin.email is not a valid address")
		}
	}

	return out, res
}

// CronParser parses the schedules accepted in maintenance.*_spec.
func CronParser() cron.Parser { return cronParser }

func cleanOrigins(in []string) []string {
	out := []string{}
	for _, o := range in {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
