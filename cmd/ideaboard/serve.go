package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/di"
	"ideaboard/interfaces/http/rest"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// requestTimeout leaves room for a full expansion call plus the store work
func requestTimeout(cfg *config.Config) time.Duration {
	return cfg.ExpansionTimeout + 5*time.Second
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Starts the HTTP API under /api/v1 together with the built-in expansion endpoint at /api/expand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, false)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Override(func(c *config.Config) { c.ServerAddress = addr })
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			logger := container.Logger
			defer func() { _ = logger.Sync() }()

			router := rest.NewRouter(
				container.Controller,
				container.Notices,
				container.LocalExpander,
				container.Metrics,
				logger,
				rest.Options{
					EnableCORS:     cfg.EnableCORS,
					Debug:          cfg.IsDevelopment(),
					RequestTimeout: requestTimeout(cfg),
				},
			)

			srv := &http.Server{
				Addr:         cfg.ServerAddress,
				Handler:      router.Setup(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: requestTimeout(cfg) + 10*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("Starting server",
					zap.String("address", cfg.ServerAddress),
					zap.String("environment", cfg.Environment),
					zap.String("storage", cfg.StorageBackend),
				)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err

			case sig := <-shutdown:
				logger.Info("Shutting down server...", zap.String("signal", sig.String()))

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown error", zap.Error(err))
					return srv.Close()
				}
				logger.Info("Server stopped")
				return nil
			}
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides SERVER_ADDRESS; an unset EXPANSION_URL follows it)")
	return cmd
}
