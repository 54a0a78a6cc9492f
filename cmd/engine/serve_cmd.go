package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/prezboard/engine/internal/server"
	"github.com/prezboard/engine/pkg/configuration"
	"github.com/prezboard/engine/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ops endpoint (health, metrics, cache controls)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			log := conf.Logger()

			svc, err := buildService(conf)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go svc.RunCacheMaintenance(ctx)

			router := mux.NewRouter()
			ops := server.NewOpsController(svc, log)
			ops.Register(router)
			if conf.Prometheus.Enabled {
				metrics.NewPrometheusController(conf.Prometheus.Path).Register(router)
			}

			srv := &http.Server{
				Addr:         conf.SocketAddress,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 2 * time.Minute,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.WithError(err).Warn("shutdown incomplete")
				}
			}()

			log.WithField("addr", conf.SocketAddress).Info("ops endpoint listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}
