package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"github.com/threedv/saiban/internal/bootstrap"
	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/modules/handler"
	"github.com/threedv/saiban/internal/router"
	"github.com/threedv/saiban/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync()

	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Fatal("setup tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Warn("tracing shutdown", zap.Error(err))
			}
		}()
	}

	r := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		Log:             log,
		AccountHandler:  do.MustInvoke[*handler.AccountHandler](inj),
		EmployeeHandler: do.MustInvoke[*handler.EmployeeHandler](inj),
		ProjectHandler:  do.MustInvoke[*handler.ProjectHandler](inj),
		BoardHandler:    do.MustInvoke[*handler.BoardHandler](inj),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	if err := inj.Shutdown(); err != nil {
		log.Error("container shutdown", zap.Error(err))
	}
}
