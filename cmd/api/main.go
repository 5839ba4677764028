package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicware/agendabot/internal/api/router"
	"github.com/clinicware/agendabot/internal/booking"
	"github.com/clinicware/agendabot/internal/calendar"
	appconfig "github.com/clinicware/agendabot/internal/config"
	"github.com/clinicware/agendabot/internal/dialogue"
	"github.com/clinicware/agendabot/internal/messaging"
	"github.com/clinicware/agendabot/internal/observability/metrics"
	"github.com/clinicware/agendabot/internal/presenter"
	"github.com/clinicware/agendabot/internal/schedule"
	"github.com/clinicware/agendabot/internal/session"
	"github.com/clinicware/agendabot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agendabot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.ClinicTimezone,
	)

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "timezone", cfg.ClinicTimezone)
		os.Exit(1)
	}

	if cfg.CalendarID == "" {
		logger.Error("GOOGLE_CALENDAR_ID is required")
		os.Exit(1)
	}
	calClient, err := calendar.NewGoogleClient(context.Background(), []byte(cfg.GoogleCredentialsJSON), cfg.ClinicTimezone)
	if err != nil {
		logger.Error("failed to initialize calendar client", "error", err)
		os.Exit(1)
	}
	calAPI := calendar.WithTimeout(calClient, cfg.CalendarTimeout)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := newSessionStore(rootCtx, cfg, logger)

	machine := dialogue.NewMachine(
		dialogue.Config{
			Clinic: dialogue.ClinicInfo{
				Name:    cfg.ClinicName,
				Address: cfg.ClinicAddress,
				Phone:   cfg.ClinicPhone,
			},
			CalendarID:         cfg.CalendarID,
			AcceptHealthPlans:  cfg.AcceptHealthPlans,
			CollectPatientName: cfg.CollectPatientName,
			SlotDuration:       time.Duration(cfg.SlotDurationMinutes) * time.Minute,
			SlotCount:          cfg.SlotSuggestionCount,
			WindowDays:         cfg.SlotWindowDays,
		},
		schedule.NewGenerator(loc),
		schedule.NewAvailabilityFilter(calAPI),
		booking.NewService(calAPI, cfg.CalendarID, cfg.ClinicName, cfg.ClinicAddress, logger),
		logger,
		nil,
	)

	pres := presenter.NewLLM(presenter.Config{
		APIKey:  cfg.PresenterAPIKey,
		BaseURL: cfg.PresenterBaseURL,
		Model:   cfg.PresenterModel,
		Timeout: cfg.PresenterTimeout,
	}, logger)

	webhookMetrics := metrics.NewWebhookMetrics(nil)
	handler := messaging.NewHandler(machine, store, pres, webhookMetrics, logger,
		cfg.TwilioAuthToken, "agendabot", cfg.ClinicTimezone)

	r := router.New(&router.Config{
		Logger:               logger,
		Messaging:            handler,
		MetricsHandler:       promhttp.Handler(),
		WebhookRatePerMinute: cfg.WebhookRatePerMinute,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newSessionStore picks the backend: redis for multi-instance deployments,
// in-memory with a TTL sweeper otherwise.
func newSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.SessionBackend == "redis" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
		return session.NewRedisStore(client, cfg.SessionTTL)
	}

	store := session.NewMemoryStore(logger)
	store.StartSweeper(ctx, cfg.SessionSweepInterval, cfg.SessionTTL)
	logger.Info("using in-memory session store", "ttl", cfg.SessionTTL, "sweep", cfg.SessionSweepInterval)
	return store
}
