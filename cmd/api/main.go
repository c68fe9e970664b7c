package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"studiodesk/internal/api"
	"studiodesk/internal/bot"
	"studiodesk/internal/config"
	"studiodesk/internal/database"
	"studiodesk/internal/domain"
	"studiodesk/internal/events"
	"studiodesk/internal/google"
	"studiodesk/internal/logging"
	"studiodesk/internal/metrics"
	"studiodesk/internal/notify"
	"studiodesk/internal/repository"
	"studiodesk/internal/service"
	"studiodesk/internal/storage"
	"studiodesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sweepInterval = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := logging.Component(baseLogger, "main")

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := database.NewDB(cfg.Database.Path, logging.Component(baseLogger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	locker := initLocker(redisClient, logger)

	loc := cfg.Location()
	eventBus := events.NewEventBus(logging.Component(baseLogger, "events"))

	tgBot := initTelegram(cfg, logger)
	targets := initCollaborators(ctx, cfg, tgBot, logger)

	events.SubscribeMetrics(eventBus)
	if targets.Staff != nil {
		events.SubscribeStaffAlerts(eventBus, targets.Staff)
	}

	outboxWorker := worker.NewOutboxWorker(
		db,
		targets,
		redisClient,
		worker.RetryPolicy{
			MaxRetries:    cfg.Worker.MaxRetries,
			InitialDelay:  cfg.Worker.BaseDelay,
			MaxDelay:      cfg.Worker.MaxDelay,
			BackoffFactor: 2,
		},
		worker.Options{
			PollInterval:  cfg.Worker.PollInterval,
			BatchSize:     cfg.Worker.BatchSize,
			RedisQueueKey: cfg.Worker.RedisQueue,
		},
		loc,
		logging.Component(baseLogger, "outbox"),
	)

	svcLogger := logging.Component(baseLogger, "service")
	opts := service.Options{
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
		LockTTL:        cfg.Booking.LockTTL,
		LockWait:       cfg.Booking.LockWait,
		Location:       loc,
	}
	holidays := service.NewHolidayService(db, locker, eventBus, opts, svcLogger)
	bookings := service.NewBookingService(db, locker, eventBus, outboxWorker, opts, svcLogger)

	services := api.Services{
		Bookings:  bookings,
		Holidays:  holidays,
		Customers: service.NewCustomerService(db),
		Galleries: service.NewGalleryService(db, initImageStore(cfg, logger), svcLogger),
		Dashboard: service.NewDashboardService(db, loc),
		Ready:     db.PingContext,
	}

	startMetrics(ctx, cfg, logger)

	go outboxWorker.Start(ctx)
	go sweepHolidays(ctx, holidays, logger)
	if tgBot != nil {
		staffBot := bot.NewBot(bot.NewBotWrapper(tgBot), bookings, cfg.Telegram.StaffChatID, loc, logging.Component(baseLogger, "bot"))
		go staffBot.Start(ctx)
	}
	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, logging.Component(baseLogger, "backup"))
		go backupService.Start(ctx)
	}

	httpServer := api.NewHTTPServer(cfg.API, services, logging.Component(baseLogger, "http"))
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("studiodesk stopped")
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		// The failover locker keeps probing, so the client is kept.
		logger.Warn().Err(err).Msg("redis unavailable, using in-process locks until it recovers")
		return client
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initLocker(client *redis.Client, logger *zerolog.Logger) domain.DateLocker {
	memory := repository.NewMemoryLocker()
	if client == nil {
		return memory
	}
	return repository.NewFailoverLocker(repository.NewRedisLocker(client), memory, logger)
}

func initTelegram(cfg *config.Config, logger *zerolog.Logger) *tgbotapi.BotAPI {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.StaffChatID == 0 {
		return nil
	}
	tgBot, err := notify.NewTelegramBot(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without staff bot")
		return nil
	}
	logger.Info().Str("username", tgBot.Self.UserName).Msg("telegram connected")
	return tgBot
}

// initCollaborators builds whichever delivery targets are configured.
func initCollaborators(ctx context.Context, cfg *config.Config, tgBot *tgbotapi.BotAPI, logger *zerolog.Logger) worker.Collaborators {
	var targets worker.Collaborators

	if cfg.Google.CredentialsFile != "" && cfg.Google.CalendarID != "" {
		cal, err := google.NewCalendarService(ctx, cfg.Google.CredentialsFile, cfg.Google.CalendarID, cfg.Google.TimeZone)
		if err != nil {
			logger.Warn().Err(err).Msg("google calendar init failed, continuing without calendar sync")
		} else {
			targets.Calendar = cal
			logger.Info().Str("calendar_id", cfg.Google.CalendarID).Msg("google calendar connected")
		}
	}

	if cfg.Email.Host != "" {
		targets.Mailer = notify.NewSMTPMailer(cfg.Email)
	}

	if tgBot != nil {
		targets.Staff = notify.NewTelegramNotifier(tgBot, cfg.Telegram.StaffChatID)
	}

	return targets
}

func initImageStore(cfg *config.Config, logger *zerolog.Logger) domain.ImageStore {
	store, err := storage.NewS3Store(cfg.Storage)
	if err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			logger.Warn().Err(err).Msg("object storage init failed, uploads disabled")
		}
		return nil
	}
	return store
}

// sweepHolidays removes past holidays once a day. Listing also sweeps, so
// this only keeps an idle database tidy.
func sweepHolidays(ctx context.Context, holidays *service.HolidayService, logger *zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		if n, err := holidays.SweepPastHolidays(ctx); err != nil {
			logger.Error().Err(err).Msg("holiday sweep failed")
		} else if n > 0 {
			logger.Info().Int64("removed", n).Msg("past holidays swept")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
