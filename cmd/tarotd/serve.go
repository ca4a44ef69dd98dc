package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/plootony/MISTY/internal/adapters/http"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			ai, err := env.newReadingService()
			if err != nil {
				return err
			}
			svc, store, err := env.newTarotService(ai)
			if err != nil {
				return err
			}
			defer store.Close()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true

			e.Use(httpadapter.RequestIDMiddleware())
			e.Use(httpadapter.LoggingMiddleware(env.logger))

			httpadapter.NewHandler(svc, env.cfg.LLMModel, env.logger).Register(e)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				env.logger.Info("starting server", "addr", env.cfg.HTTPAddr, "model", env.cfg.LLMModel)
				if err := e.Start(env.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				env.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return e.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				env.logger.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
}
