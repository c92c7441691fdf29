package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"medals/config"
	"medals/handler"
	"medals/infrastructure"
	"medals/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context())
	},
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting medals service...")

	cfg := config.Get()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	log.Info("Initializing metrics...")
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()
	metrics.Attach(a.eventBus)
	log.Info("Metrics initialized successfully")

	var natsClient *infrastructure.NATSClient
	if cfg.NATSURL != "" {
		log.WithField("url", cfg.NATSURL).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSURL, "medals")
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureStream(cfg.NATSStream, infrastructure.AllSubjects()); err != nil {
			natsClient.Close()
			return fmt.Errorf("failed to ensure NATS stream: %w", err)
		}
		infrastructure.NewEventForwarder(natsClient, clockwork.NewRealClock()).Attach(a.eventBus)
		log.Info("NATS event forwarding enabled")
	} else {
		log.Info("NATS_URL not set, event forwarding disabled")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Initializing HTTP server...")
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler.NewRouter(a.services, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("address", cfg.ListenAddress).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	log.WithField("environment", cfg.Environment).Info("Service is running")
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server failed")
		}
	}

	log.Info("Shutting down service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	// Handlers still forwarding events need NATS until the bus drains
	a.eventBus.Wait()
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
