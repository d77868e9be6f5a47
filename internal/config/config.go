// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host    string `yaml:"host" json:"host"`
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
		// CorsOrigins lists browser origins allowed to call the API. Empty
		// allows any origin.
		CorsOrigins []string `yaml:"cors_origins" json:"cors_origins"`
	} `yaml:"app" json:"app"`

	Auth struct {
		TokenTTLHours  int     `yaml:"token_ttl_hours" json:"token_ttl_hours"`
		Issuer         string  `yaml:"issuer" json:"issuer"`
		KeyringAccount string  `yaml:"keyring_account" json:"keyring_account"`
		LoginRPS       float64 `yaml:"login_rps" json:"login_rps"`
		LoginBurst     int     `yaml:"login_burst" json:"login_burst"`
	} `yaml:"auth" json:"auth"`

	Browse struct {
		SwipeThreshold   float64 `yaml:"swipe_threshold" json:"swipe_threshold"`
		SettleMS         int     `yaml:"settle_ms" json:"settle_ms"`
		SessionCacheSize int     `yaml:"session_cache_size" json:"session_cache_size"`
	} `yaml:"browse" json:"browse"`

	Filters struct {
		NearbyLimit int `yaml:"nearby_limit" json:"nearby_limit"`
	} `yaml:"filters" json:"filters"`

	Storage struct {
		ShortlistBackend string `yaml:"shortlist_backend" json:"shortlist_backend"` // sqlite | redis
		RedisURL         string `yaml:"redis_url" json:"redis_url"`
		RedisPrefix      string `yaml:"redis_prefix" json:"redis_prefix"`
	} `yaml:"storage" json:"storage"`

	Roster struct {
		SeedPath string `yaml:"seed_path" json:"seed_path"`
	} `yaml:"roster" json:"roster"`

	Maintenance struct {
		HistoryRetentionDays int    `yaml:"history_retention_days" json:"history_retention_days"`
		PruneSpec            string `yaml:"prune_spec" json:"prune_spec"`
		CheckpointSpec       string `yaml:"checkpoint_spec" json:"checkpoint_spec"`
	} `yaml:"maintenance" json:"maintenance"`

	Admin struct {
		Email string `yaml:"email" json:"email"`
		Name  string `yaml:"name" json:"name"`
	} `yaml:"admin" json:"admin"`
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Default is the configuration used when a key is absent from the file.
func Default() Config {
	var c Config
	c.App.Host = "127.0.0.1"
	c.App.Port = 38471
	c.App.DataDir = "."
	c.Auth.TokenTTLHours = 24
	c.Auth.Issuer = "legalconnect"
	c.Auth.KeyringAccount = "legalconnect:jwt"
	c.Auth.LoginRPS = 1
	c.Auth.LoginBurst = 5
	c.Browse.SwipeThreshold = 50
	c.Browse.SettleMS = 300
	c.Browse.SessionCacheSize = 256
	c.Filters.NearbyLimit = 6
	c.Storage.ShortlistBackend = BackendSQLite
	c.Storage.RedisPrefix = "legalconnect:"
	c.Maintenance.HistoryRetentionDays = 90
	c.Maintenance.PruneSpec = "@daily"
	c.Maintenance.CheckpointSpec = "@every 15m"
	c.Admin.Email = "admin@legalconnect.com"
	c.Admin.Name = "Admin User"
	return c
}

// Load reads path over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c Config) Settle() time.Duration {
	return time.Duration(c.Browse.SettleMS) * time.Millisecond
}

func (c Config) HistoryRetention() time.Duration {
	return time.Duration(c.Maintenance.HistoryRetentionDays) * 24 * time.Hour
}
