package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"QuantAI/internal/api"
	"QuantAI/internal/app"
	"QuantAI/internal/config"
	"QuantAI/internal/notifier"
	"QuantAI/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLogger := app.NewLogger(os.Stderr, "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := app.NewLogger(os.Stderr, cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}
	logger.Info().Msg("QuantAI starting...")

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init analysis stack")
	}
	defer a.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Provider.Proxy, logger)
		go tn.StartPolling(ctx, notifier.NewCommandHandler(a.Service))
		logger.Info().Msg("telegram polling started")
	}

	if len(cfg.Watchlist) > 0 {
		var sender scheduler.Sender
		if tn != nil {
			sender = tn
		}
		sched := scheduler.NewScheduler(ctx, a.Service, a.Recorder, sender, cfg.Watchlist, scheduler.Options{}, logger)
		if err := sched.Register(cfg.Schedule.WatchlistCron); err != nil {
			logger.Fatal().Err(err).Msg("register cron tasks")
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			logger.Info().Msg("RUN_ON_START enabled, running watchlist now")
			go sched.RunWatchlist(ctx)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(a.Service, api.Options{
			RateLimitPerSec: cfg.Server.RateLimitPerSec,
			RateLimitBurst:  cfg.Server.RateLimitBurst,
			Gatherer:        a.Registry,
			Logger:          logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("QuantAI stopped")
}
