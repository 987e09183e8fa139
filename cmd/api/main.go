package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rcsapi/internal/auth"
	"rcsapi/internal/config"
	"rcsapi/internal/httpapi"
	"rcsapi/internal/logging"
	"rcsapi/internal/observability"
	"rcsapi/internal/service"
	"rcsapi/internal/store/pg"
	"rcsapi/internal/util"
)

func main() {
	cfg := config.LoadAPI()
	logging.Init("api", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{
		MaxConns:          cfg.DBPoolMaxConns,
		MinConns:          cfg.DBPoolMinConns,
		MaxConnLifetime:   cfg.DBPoolMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBPoolMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBPoolHealthCheckPeriod,
	})
	if err != nil {
		slog.Error("api db connect failed", "err", err)
		os.Exit(1)
	}

	observability.Register(prometheus.DefaultRegisterer)

	dbStore := pg.New(db)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:   cfg.TokenSecret,
		Lifetime: cfg.TokenLifetime,
		Issuer:   cfg.TokenIssuer,
	})

	api := &httpapi.API{
		Dispatch: &service.DispatchService{Store: dbStore, TrackingID: util.NewTrackingID},
		Events:   &service.EventService{Store: dbStore},
		Users:    &service.UserService{Store: dbStore, Tokens: tokens},
		Resolver: &auth.Resolver{Store: dbStore, Tokens: tokens},
	}

	s := httpapi.New()
	api.Register(s.Router)

	s.Router.HandleFunc("/healthz", httpapi.Healthz()).Methods(http.MethodGet)
	s.Router.HandleFunc("/readyz", httpapi.Readyz(2*time.Second, func(ctx context.Context) error {
		return db.Ping(ctx)
	})).Methods(http.MethodGet)

	handler := httpapi.Logging(httpapi.Metrics(s.Router))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("api shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("api server failed", "err", err)
		os.Exit(1)
	}

	db.Close()
}
