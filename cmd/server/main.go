package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"studentregistry/internal/platform/config"
	"studentregistry/internal/platform/database"
	"studentregistry/internal/platform/httpserver"
	"studentregistry/internal/platform/logger"
	"studentregistry/internal/platform/metrics"
	platformredis "studentregistry/internal/platform/redis"
	"studentregistry/internal/student/cache"
	studenthandler "studentregistry/internal/student/handler"
	"studentregistry/internal/student/service"
	"studentregistry/internal/student/store"
	httptransport "studentregistry/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	opts := []service.Option{}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithCache(cache.New(redisClient, cfg.CacheTTL, log)))
		log.Info("lookup cache enabled", "ttl", cfg.CacheTTL)
	}

	pg := store.NewPostgres(db)
	svc := service.NewService(pg, store.NewTxRunner(db), opts...)

	m := metrics.New()
	handler := studenthandler.New(svc, log, m)
	router := httptransport.NewRouter(handler, db, log)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting student registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpserver.Shutdown(srv, cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
