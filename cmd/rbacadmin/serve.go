package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-rbacadmin/internal/boot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(cfgFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "run the admin http api",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := resolveConfigPath(*cfgFlag)
			if err != nil {
				return err
			}
			app, err := boot.InitApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := &http.Server{Addr: app.Config.HTTP.Addr, Handler: app.HTTP, ReadHeaderTimeout: 10 * time.Second}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("http_server_start", zap.String("addr", app.Config.HTTP.Addr), zap.String("config", cfgPath))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					app.Logger.Error("http_server_error", zap.Error(err))
					return err
				}
			case <-ctx.Done():
			}
			app.Logger.Info("shutting_down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("http_shutdown_error", zap.Error(err))
			}
			app.Logger.Info("cleanup_done")
			return nil
		},
	}
}
