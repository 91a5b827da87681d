// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gathering/internal/adapter/events"
	"gathering/internal/adapter/forecast"
	"gathering/internal/adapter/googlemaps"
	"gathering/internal/adapter/openai"
	"gathering/internal/config"
	"gathering/internal/domain/plan"
	"gathering/internal/observability"
	"gathering/internal/server"
	"gathering/internal/server/handlers"
	"gathering/internal/service/game"
	"gathering/internal/service/geo"
	"gathering/internal/service/venue"
	"gathering/internal/service/weather"
	"gathering/internal/service/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid time zone", zap.Error(err))
	}

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	metrics := observability.NewCollector("gathering")

	// Initialize event bus
	var (
		publishConn events.Conn
		subscriber  handlers.SessionSubscriber
	)
	if cfg.NATS.URL != "" {
		natsConn, err := initNATS(cfg.NATS, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Close()

		publishConn = natsConn
		subscriber = events.NewSubscriber(natsConn, cfg.NATS.EventsPrefix)
	} else {
		logger.Warn("NATS_URL is empty, session events are disabled")
	}
	publisher := events.NewPublisher(publishConn, cfg.NATS.EventsPrefix, logger)

	// Initialize adapters
	mapsClient, err := googlemaps.NewClient(googlemaps.Config{
		APIKey:   cfg.Maps.APIKey,
		Language: cfg.Maps.Language,
		Timeout:  cfg.HTTPClient.Timeout,
		BaseURL:  cfg.Maps.BaseURL,
	}, metrics)
	if err != nil {
		logger.Fatal("Failed to create Google Maps client", zap.Error(err))
	}

	var completer plan.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.HTTPClient.Timeout,
			BaseURL: cfg.OpenAI.BaseURL,
		}, metrics)
	} else {
		logger.Warn("OPENAI_API_KEY is empty, game suggestions are disabled")
	}

	forecastClient := forecast.NewClient(cfg.Forecast.BaseURL, cfg.HTTPClient.Timeout, metrics)

	// Initialize services
	finderConfig := venue.DefaultFinderConfig()
	finderConfig.RadiusM = cfg.Event.SearchRadius
	finderConfig.Limit = cfg.Event.VenueLimit
	finderConfig.DetailConcurrency = cfg.Event.DetailWorkers

	planner := workflow.NewService(
		geo.NewLocator(mapsClient, logger),
		venue.NewFinder(mapsClient, mapsClient, finderConfig, logger),
		game.NewSuggester(completer, logger),
		weather.NewService(forecastClient, weather.Config{
			Location:        location,
			DefaultCityCode: cfg.Forecast.DefaultCityCode,
		}),
		publisher,
		metrics,
		workflow.Config{
			SessionTTL:      cfg.Session.TTL,
			JanitorInterval: cfg.Session.JanitorInterval,
			Location:        location,
			StartTime:       cfg.Event.StartTime,
			DefaultLocation: cfg.Event.DefaultLocation,
		},
		logger,
	)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, planner, subscriber, metrics, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop session janitor
	if err := planner.Stop(shutdownCtx); err != nil {
		logger.Error("Workflow shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// newLogger builds a production logger in production and a development
// logger elsewhere
func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = level

	return zapConfig.Build()
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("gathering"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
