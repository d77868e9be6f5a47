package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

const dbFile = "legalconnect.db"

// app is the state shared by every subcommand: the reloadable config and,
// once opened, the database.
type app struct {
	dataDir     string
	userCfgPath string
	cfgVal      atomic.Value // stores config.Config
	db          *store.DB
	closers     []func() error
}

func loadApp() (*app, error) {
	_ = config.LoadDotEnv(filepath.Join(dataDirFlag, ".env"), ".env")

	if err := os.MkdirAll(dataDirFlag, 0o755); err != nil {
		return nil, err
	}
	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDirFlag, defaultCfgPath)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}

	a := &app{dataDir: dataDirFlag, userCfgPath: userCfgPath}
	cfg, err := a.loadCfg()
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	a.cfgVal.Store(cfg)
	return a, nil
}

// loadCfg reads config.yml, applies LEGALCONNECT_* overrides and validates
// the result. Warnings are logged, errors returned.
func (a *app) loadCfg() (config.Config, error) {
	cfg, err := config.Load(a.userCfgPath)
	if err != nil {
		return cfg, err
	}
	if err := config.OverlayEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("level=warn msg=\"config\" warning=%q", w)
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *app) cfg() config.Config { return a.cfgVal.Load().(config.Config) }

// dbDir is app.data_dir, resolved against the directory holding config.yml.
func (a *app) dbDir() string {
	dir := a.cfg().App.DataDir
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.dataDir, dir)
	}
	return dir
}

func (a *app) openStore() error {
	dir := a.dbDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	db, err := store.Open(filepath.Join(dir, dbFile))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.onClose(db.Close)
	return nil
}

func (a *app) onClose(fn func() error) { a.closers = append(a.closers, fn) }

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("level=warn msg=\"close\" err=%v", err)
		}
	}
}

// shortlistKV picks the configured shortlist backend.
func (a *app) shortlistKV(ctx context.Context) (shortlist.KV, error) {
	cfg := a.cfg()
	if cfg.Storage.ShortlistBackend != config.BackendRedis {
		return store.NewKV(a.db.Pool), nil
	}

	kv, err := shortlist.NewRedisKVFromURL(cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := kv.Ping(pctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.onClose(kv.Close)
	return kv, nil
}

// ensureAdmin creates the configured admin account on first start. The
// password comes from LEGALCONNECT_ADMIN_PASSWORD; without it a random one is
// generated and logged once.
func (a *app) ensureAdmin(ctx context.Context) error {
	cfg := a.cfg()
	if cfg.Admin.Email == "" {
		return nil
	}
	_, err := store.GetUserByEmail(ctx, a.db.Pool, cfg.Admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	password := config.AdminPassword()
	generated := password == ""
	if generated {
		if password, err = randomToken(12); err != nil {
			return err
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := store.CreateUser(ctx, a.db.Pool, domain.User{
		Name:         cfg.Admin.Name,
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if generated {
		log.Printf("level=warn msg=\"admin created with generated password\" email=%s password=%s", u.Email, password)
	} else {
		log.Printf("level=info msg=\"admin created\" email=%s", u.Email)
	}
	return nil
}
