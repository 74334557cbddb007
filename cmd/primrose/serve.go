package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/primrose/internal/handlers"
	"github.com/Ramsey-B/primrose/pkg/middleware"
	"github.com/Ramsey-B/primrose/pkg/startup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a := newApp(cfg, logger)
			e := a.newEcho()
			serverErr := make(chan error, 1)

			s, err := a.start(ctx, startup.Func{
				Name:     "http",
				Requires: []string{"reconciler"},
				OnStart: func(context.Context) error {
					handlers.NewHandler(a.reconciler, a.notices, a.logger).Register(e.Group("/api/v1"))
					go func() {
						serverErr <- e.Start(fmt.Sprintf(":%d", cfg.Port))
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return e.Shutdown(ctx)
				},
			})
			shutdown := func() {
				a.health.SetReady(false)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				a.shutdown(shutdownCtx, s)
			}
			if err != nil {
				shutdown()
				return err
			}

			a.health.SetReady(true)
			logger.Infof("%s listening on :%d", cfg.AppName, cfg.Port)

			select {
			case <-ctx.Done():
				logger.Info("Shutting down")
				shutdown()
				return nil
			case err := <-serverErr:
				shutdown()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
}

func (a *app) newEcho() *echo.Echo {
	cfg := a.cfg
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID, middleware.HeaderOperator},
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	a.health.RegisterRoutes(e.Group("/api/v1"))
	return e
}
