package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mydienst/internal/api"
	"mydienst/internal/auth"
	"mydienst/internal/booking"
	"mydienst/internal/config"
	"mydienst/internal/database"
	"mydienst/internal/domain"
	"mydienst/internal/events"
	"mydienst/internal/logging"
	"mydienst/internal/mail"
	"mydienst/internal/metrics"
	"mydienst/internal/models"
	"mydienst/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
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
		defer func() { _ = closer.Close() }()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureAdmin(ctx, db, cfg.Auth, &logger); err != nil {
		return err
	}

	bus := events.NewBus()
	bookings := booking.NewService(db, bus, &logger)

	dispatcher := worker.NewDispatcher(cfg.SMTP, cfg.Notify, newMailer(cfg, &logger), &logger)
	dispatcher.AttachTo(bus)
	go dispatcher.Start(ctx)

	backup := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	server := api.NewServer(cfg, db, bookings, tokens, &logger)
	return serve(ctx, server, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

// ensureAdmin seeds the configured admin account so a fresh database
// is usable. An existing account is never touched.
func ensureAdmin(ctx context.Context, db *database.DB, cfg config.AuthConfig, logger *zerolog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		logger.Warn().Msg("no admin credentials configured, skipping seed")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := &models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info().Str("username", cfg.AdminUsername).Msg("admin account created")
	return nil
}

func newMailer(cfg *config.Config, logger *zerolog.Logger) domain.Mailer {
	if !cfg.SMTP.Enabled {
		logger.Warn().Msg("smtp disabled, emails will be skipped")
		return mail.NewNopMailer(logger)
	}
	return mail.NewSMTPMailer(cfg.SMTP, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, server *api.Server, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}
