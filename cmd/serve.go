package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/api"
	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/gtm"
	"github.com/kayaan/driver-gtm/internal/logger"
	"github.com/kayaan/driver-gtm/internal/usdot"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranking pipeline over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "listen address for the HTTP server")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	params, err := getScoringParams()
	if err != nil {
		logger.Fatal("getting scoring parameters", zap.Error(err))
	}

	db, err := cities.Load()
	if err != nil {
		logger.Fatal("loading the city database", zap.Error(err))
	}

	// Staging credentials may legitimately be absent when the server only
	// takes production requests with per-request credentials.
	stagingCreds, err := resolveCredentials(config.DAT)
	if err != nil {
		logger.Warn("staging credentials not configured; staging requests will fail",
			zap.Error(err),
		)
	}

	registry := usdot.New(logger, resolveAppToken(config.USDOT))
	resolver := fleet.NewResolver(registry, logger)
	provider := gtm.NewProvider(logger, db, params, resolver, stagingCreds)

	handler := api.NewHandler(logger, provider, db)
	server := api.NewServer(logger, handler)

	listen := defaultListen
	if config.Server != nil && config.Server.Listen != "" {
		listen = config.Server.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting the http server", zap.String("listen", listen))
		if err := server.Start(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down", zap.Error(err))
	}
	logger.Info("server stopped")
}
