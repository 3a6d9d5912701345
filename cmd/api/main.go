package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_rates/internal/adapters/http_server"
	"hotel_rates/internal/adapters/observability"
	redisad "hotel_rates/internal/adapters/redis"
	"hotel_rates/internal/app"
	"hotel_rates/internal/domain"
	"hotel_rates/internal/pkg/clock"
	"hotel_rates/internal/shared"
	"hotel_rates/internal/storage/memory"
	mysqlrepo "hotel_rates/internal/storage/mysql"
)

type store interface {
	domain.ReferenceRepository
	domain.RateRepository
	domain.AllotmentStore
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.SetLevel(cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	st, closeStore := openStore(cfg)
	defer closeStore()

	// redis is optional: quotes are computed uncached when it is down
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, quote cache disabled")
		_ = rc.Close()
	} else {
		cache = rc
		defer rc.Close()
	}
	cancel()

	quotes := app.NewQuoteService(st, st, cache, cfg.QuoteCacheTTL, clock.System{}, cfg.QuoteWorkers)
	allotments := app.NewAllotmentService(st)

	// http
	srv := server.New(server.WithRequestTimeout(cfg.RequestTimeout))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Quotes:     quotes,
		Allotments: allotments,
		QuoteRPS:   cfg.RateLimitRPS,
		QuoteBurst: cfg.RateLimitBurst,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(cfg shared.Config) (store, func()) {
	if cfg.Storage == shared.StorageMemory {
		mem := memory.New()
		if cfg.SeedFile != "" {
			f, err := os.Open(cfg.SeedFile)
			if err != nil {
				log.Fatal().Err(err).Msg("open seed file failed")
			}
			defer f.Close()
			if err := mem.Load(f); err != nil {
				log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seed load failed")
			}
			log.Info().Str("file", cfg.SeedFile).Msg("memory store seeded")
		}
		return mem, func() {}
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
