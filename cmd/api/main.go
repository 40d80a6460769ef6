package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hotseat/internal/api"
	"hotseat/internal/config"
	"hotseat/internal/database"
	"hotseat/internal/domain"
	"hotseat/internal/events"
	"hotseat/internal/logging"
	"hotseat/internal/metrics"
	"hotseat/internal/repository"
	"hotseat/internal/scheduling"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := initAvailabilityCache(ctx, cfg, logger)

	eventBus := events.NewEventBus()
	subscribeAppointmentEvents(eventBus, logger)

	calendar := cfg.BusinessCalendar()
	scheduler := scheduling.NewScheduler(db, db, cache, nil, eventBus, calendar, logger)
	availability := scheduling.NewAvailabilityCalculator(db, db, cache, calendar, logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, scheduler, availability, db, db, db, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, closer, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

// initAvailabilityCache подключает Redis; при недоступности работаем
// через in-memory кэш с автоматическим возвратом на Redis.
func initAvailabilityCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.AvailabilityCache {
	ttl := time.Duration(cfg.Redis.CacheTTL) * time.Second
	memory := repository.NewMemoryAvailabilityCache(ttl)

	if cfg.Redis.Address == "" {
		logger.Warn().Msg("Redis is not configured, using in-memory availability cache")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis is unreachable at startup, failover cache will keep retrying")
	}

	primary := repository.NewRedisAvailabilityCache(client, ttl)
	return repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func subscribeAppointmentEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.EventAppointmentCreated, func(event *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			logger.Warn().Err(err).Msg("Failed to decode appointment event")
			return err
		}
		logger.Info().
			Str("appointment_id", payload.AppointmentID).
			Str("provider_id", payload.ProviderID).
			Time("date", payload.Date).
			Msg("appointment event")
		return nil
	})
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("Prometheus metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server error")
	}
}
