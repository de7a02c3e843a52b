// Command api runs the news content HTTP API.
//
// Startup order: environment + config, logging, tracing, the two
// database handles (replica for reads, primary for writes and failover),
// schema migration and sample seeding on the primary, the generation
// store (Redis, degrading to an in-process store when unreachable), the
// Kafka emitter (no-op when unconfigured), and finally the Gin server
// with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/events"
	httpapi "github.com/tbourn/go-news-backend/internal/http"
	"github.com/tbourn/go-news-backend/internal/observability"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/store"
	"github.com/tbourn/go-news-backend/internal/sysutil"
	"gorm.io/gorm"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	primary, replica := openDatabases(cfg)

	if err := repo.AutoMigrate(primary); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := repo.EnsureSampleData(ctx, primary); err != nil {
		log.Warn().Err(err).Msg("sample seed failed")
	}

	st := openStore(ctx, cfg)
	if closer, ok := st.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var emitter events.Emitter = events.Nop{}
	if cfg.KafkaBroker != "" {
		k := events.NewKafka(cfg.KafkaBroker)
		defer k.Close()
		emitter = k
		log.Info().Str("broker", cfg.KafkaBroker).Msg("kafka emitter enabled")
	} else {
		log.Info().Msg("no kafka broker configured, events disabled")
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, replica, primary, st, emitter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

// openDatabases opens the primary handle and, when a distinct replica
// DSN is configured, the read handle. The replica is optional: if it
// cannot be opened the primary serves reads too.
func openDatabases(cfg config.Config) (primary, replica *gorm.DB) {
	primary, err := repo.OpenPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("primary database unavailable")
	}

	replica = primary
	if cfg.ReadPostgresDSN != cfg.PostgresDSN {
		replica, err = repo.OpenPostgres(cfg.ReadPostgresDSN)
		if err != nil {
			log.Warn().Err(err).Msg("read replica unavailable, reads go to primary")
			replica = primary
		}
	}
	return primary, replica
}

// openStore connects the Redis generation store, degrading to an
// in-process store when Redis is unreachable or unconfigured. In the
// degraded mode cache entries and the generation token live only as long
// as the process, which is acceptable: every entry carries a TTL anyway.
func openStore(ctx context.Context, cfg config.Config) store.Store {
	if cfg.RedisAddr == "" {
		log.Info().Msg("no redis configured, using in-process store")
		return store.NewMemory()
	}

	r := store.NewRedis(cfg.RedisAddr, cfg.Cache.Timeout)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-process store")
		_ = r.Close()
		return store.NewMemory()
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	return r
}
