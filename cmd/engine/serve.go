package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/browse"
	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/httpapi"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/roster"
	"legalconnect-engine/internal/scheduler"
	"legalconnect-engine/internal/secrets"
	"legalconnect-engine/internal/selection"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

const gaugeInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API together with the maintenance scheduler.

On first start the roster is seeded from roster.seed_path and the admin
account from admin.email is created. Only one engine may use a data
directory at a time.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg()

	if err := os.MkdirAll(a.dbDir(), 0o755); err != nil {
		return err
	}
	lock := flock.New(filepath.Join(a.dbDir(), "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already using %s", a.dbDir())
	}
	a.onClose(lock.Unlock)

	if err := a.openStore(); err != nil {
		return err
	}
	db := a.db.Pool

	if err := a.ensureAdmin(ctx); err != nil {
		return err
	}
	res, err := roster.Seed(ctx, db, cfg.Roster.SeedPath)
	if err != nil {
		return fmt.Errorf("seed roster: %w", err)
	}
	if res.Added > 0 {
		log.Printf("[roster] seeded added=%d skipped=%d from=%s", res.Added, res.Skipped, cfg.Roster.SeedPath)
	}

	secret, src, err := secrets.LoadJWTSecret(cfg.Auth.KeyringAccount)
	if err != nil {
		return fmt.Errorf("jwt secret: %w", err)
	}
	log.Printf("level=info msg=\"jwt secret loaded\" source=%s", src)
	var tokens atomic.Pointer[auth.Issuer]
	tokens.Store(auth.NewIssuer(auth.Config{Secret: secret, Issuer: cfg.Auth.Issuer, TTL: cfg.TokenTTL()}))

	kv, err := a.shortlistKV(ctx)
	if err != nil {
		return err
	}
	shelf := shortlist.NewShelf(kv)
	reg, err := browse.NewRegistry(shelf, browse.Options{
		CacheSize: cfg.Browse.SessionCacheSize,
		Selection: selection.Options{Threshold: cfg.Browse.SwipeThreshold, Settle: cfg.Settle()},
	})
	if err != nil {
		return err
	}

	hub := events.NewHub()
	hub.OnDrop = metrics.SSEDropped.Inc
	deps := httpapi.Deps{
		DB:          db,
		Hub:         hub,
		CfgVal:      &a.cfgVal,
		Tokens:      &tokens,
		UserCfgPath: a.userCfgPath,
		LoadCfg:     a.loadCfg,
		Shelf:       shelf,
		Browse:      reg,
		Limiter:     httpapi.NewIPLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst),
		Validate:    httpapi.NewValidator(),
	}
	mux := httpapi.NewMux(deps)

	shutdownToken := os.Getenv("LEGALCONNECT_SHUTDOWN_TOKEN")
	if shutdownToken == "" {
		if shutdownToken, err = randomToken(16); err != nil {
			return err
		}
		log.Printf("level=info msg=\"shutdown token\" token=%s", shutdownToken)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(shutdownToken, stop))

	cr := scheduler.NewCron(config.CronParser())
	onPruned := func(n int64) {
		hub.Emit("", events.TypeHistoryPruned, map[string]any{"rows": n})
	}
	if err := cr.Add("history-prune", cfg.Maintenance.PruneSpec,
		scheduler.PruneHistory(db, cfg.HistoryRetention(), onPruned)); err != nil {
		return err
	}
	if err := cr.Add("wal-checkpoint", cfg.Maintenance.CheckpointSpec, scheduler.Checkpoint(db)); err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := newHTTPServer(httpapi.Wrap(mux, deps), hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("engine listening on http://%s (db=%s shortlist=%s)", addr, a.dbDir(), cfg.Storage.ShortlistBackend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		return cr.Run(gctx)
	})
	g.Go(func() error {
		scheduler.Every(gctx, gaugeInterval, "gauges", func(ctx context.Context) error {
			n, err := store.CountLawyers(ctx, db)
			if err != nil {
				return err
			}
			metrics.RosterSize.Set(float64(n))
			metrics.BrowseSessions.Set(float64(reg.Len()))
			return nil
		})
		return nil
	})

	err = g.Wait()
	log.Println("engine stopped")
	return err
}

// newHTTPServer closes the event hub when Shutdown starts. Shutdown never
// cancels request contexts, so open /events streams would otherwise hold it
// until its deadline.
func newHTTPServer(h http.Handler, hub *events.Hub) *http.Server {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(hub.Close)
	return srv
}
