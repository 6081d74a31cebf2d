package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockwatch/internal/api"
	"stockwatch/internal/config"
	"stockwatch/internal/database"
	"stockwatch/internal/kafka"
	"stockwatch/internal/monitor"
	"stockwatch/internal/notify"
	"stockwatch/internal/quote"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "db/migrations"
	}
	if err := db.Migrate(migrationsPath); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var cache quote.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := quote.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, quote.DefaultCacheTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		cache = quote.NewMemoryCache(quote.DefaultCacheTTL)
	}

	provider := quote.NewProvider(cfg.Provider.APIKey, cfg.Provider.BaseURL, cfg.Provider.Timeout)
	quotes := quote.NewService(provider, cache, db, logger)

	sender := notify.NewSMTPSender(
		cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password,
		cfg.SMTP.From, cfg.SMTP.Timeout, logger,
	)

	var events monitor.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		events = producer
	}

	cycle := monitor.NewCycle(
		db, quotes, db, sender, events,
		monitor.NewFixedPacer(cfg.Monitor.SymbolDelay),
		cfg.Monitor.ChartBaseURL, cfg.SMTP.Timeout, logger,
	)

	scheduler := monitor.NewScheduler(cycle, cfg.Monitor.Interval, logger)
	if cfg.Monitor.MarketHours {
		loc, err := time.LoadLocation(cfg.Monitor.Timezone)
		if err != nil {
			logger.Error("invalid monitor timezone", "timezone", cfg.Monitor.Timezone, "error", err)
			os.Exit(1)
		}
		scheduler.RestrictToMarketHours(loc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Start(ctx)

	handler := api.NewHandler(db, quotes, scheduler, logger)
	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: api.SetupRoutes(handler),
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
}
