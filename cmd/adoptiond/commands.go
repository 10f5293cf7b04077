package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/config"
	httpapi "github.com/tbourn/go-adoption-backend/internal/http"
	"github.com/tbourn/go-adoption-backend/internal/lock"
	"github.com/tbourn/go-adoption-backend/internal/observability"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/sysutil"
)

// purgeEvery is how often expired idempotency records are deleted.
const purgeEvery = time.Hour

// app carries what every command needs after bootstrap.
type app struct {
	cfg     config.Config
	version string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "adoptiond",
		Short:         "Animal adoption API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is normal outside local development.
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a.cfg = cfg
			a.version = sysutil.Version()
			sysutil.InstallLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, a.version)
			return nil
		},
	}
	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.seedCmd())
	return root
}

// openDB opens the configured store. migrate overrides DB_AUTO_MIGRATE.
func (a *app) openDB(migrate bool) (*gorm.DB, error) {
	return repo.Open(repo.Options{
		Driver:      a.cfg.DBDriver,
		Path:        a.cfg.DBPath,
		DSN:         a.cfg.DatabaseURL,
		AutoMigrate: migrate,
		Tracing:     a.cfg.OTEL.Enabled,
		SlowQuery:   a.cfg.DBSlowQuery,
	})
}

// newLocker returns the Redis lock when REDIS_URL is set and the in-process
// lock otherwise. The closer is never nil.
func (a *app) newLocker(ctx context.Context) (lock.Locker, func() error, error) {
	if a.cfg.RedisURL == "" {
		return lock.NewKeyedMutex(), func() error { return nil }, nil
	}
	rl, err := lock.NewRedisLocker(a.cfg.RedisURL, a.cfg.LockTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis url: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rl.Ping(pingCtx); err != nil {
		_ = rl.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return rl, rl.Close, nil
}

func (a *app) serveCmd() *cobra.Command {
	var migrate, seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("migrate") {
				migrate = a.cfg.DBAutoMigrate
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate, seed)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving (default DB_AUTO_MIGRATE)")
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo data when the store is empty")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate, seed bool) error {
	cfg := a.cfg

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, a.version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := a.openDB(migrate)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if seed {
		if err := a.runSeed(ctx, db); err != nil {
			return err
		}
	}

	locks, closeLocks, err := a.newLocker(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeLocks() }()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, locks, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go purgeIdempotency(ctx, db, purgeEvery)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db_driver", cfg.DBDriver).
			Bool("redis_lock", cfg.RedisURL != "").
			Str("api_base", cfg.APIBasePath).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// purgeIdempotency deletes expired idempotency records until ctx ends.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired idempotency records purged")
			}
		}
	}
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down N|version]",
		Short:     "Manage the database schema",
		Long:      "Applies or rolls back the embedded PostgreSQL migrations. With the sqlite driver the schema is created from the models and only \"up\" is supported.",
		ValidArgs: []string{"up", "down", "version"},
		Args:      cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			return a.migrate(cmd, action, args)
		},
	}
	return cmd
}

func (a *app) migrate(cmd *cobra.Command, action string, args []string) error {
	if a.cfg.DBDriver != repo.DriverPostgres {
		if action != "up" {
			return fmt.Errorf("migrate %s requires DB_DRIVER=postgres", action)
		}
		db, err := a.openDB(true)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		log.Info().Str("db_path", a.cfg.DBPath).Msg("sqlite schema up to date")
		return nil
	}

	dsn := a.cfg.DatabaseURL
	switch action {
	case "up":
		if err := repo.RunMigrations(dsn); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: steps must be a positive integer, got %q", args[1])
			}
			steps = n
		}
		if err := repo.MigrateDown(dsn, steps); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or version)", action)
	}

	version, dirty, err := repo.MigrationVersion(dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
	return nil
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, categories, breeds and animals into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB(a.cfg.DBAutoMigrate)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return a.runSeed(cmd.Context(), db)
		},
	}
}

func (a *app) runSeed(ctx context.Context, db *gorm.DB) error {
	sum, err := repo.Seed(ctx, db, time.Now())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if sum == (repo.SeedSummary{}) {
		log.Info().Msg("store already has users; seed skipped")
		return nil
	}
	log.Info().
		Int("users", sum.Users).
		Int("categories", sum.Categories).
		Int("breeds", sum.Breeds).
		Int("animals", sum.Animals).
		Msg("demo data loaded")
	return nil
}
