package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/composer"
	"github.com/carehub/consult-api/internal/config"
	"github.com/carehub/consult-api/internal/flags"
	v1 "github.com/carehub/consult-api/internal/handler/v1"
	"github.com/carehub/consult-api/internal/upstream"
	"github.com/carehub/consult-api/pkg/auth"
	"github.com/carehub/consult-api/pkg/logger"
	"github.com/carehub/consult-api/pkg/metrics"
	"github.com/carehub/consult-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Fatal("initializing tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	collector := metrics.NewCollector("consult_api")
	client := upstream.NewClient(cfg.Upstream, log, collector)
	composerSvc := composer.NewService(client, log, collector, cfg.Search.DefaultLimit)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	vitals := flags.NewStore(true)

	router := v1.NewRouter(v1.RouterDeps{
		Config:     cfg,
		Log:        log,
		Metrics:    collector,
		JWTManager: jwtManager,
		Composer:   composerSvc,
		Vitals:     vitals,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("upstream", cfg.Upstream.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
