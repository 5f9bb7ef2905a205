package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SecuroHub/internal/assistant"
	"SecuroHub/internal/dashboard"
	handlers "SecuroHub/internal/handler"
	"SecuroHub/internal/listeners"
	"SecuroHub/internal/models"
	"SecuroHub/pkg/backup"
	"SecuroHub/pkg/cache"
	"SecuroHub/pkg/config"
	"SecuroHub/pkg/i18n"
	"SecuroHub/pkg/llm"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/metrics"
	"SecuroHub/pkg/middleware"
	"SecuroHub/pkg/notification"
	"SecuroHub/pkg/scheduler"
	"SecuroHub/pkg/search"
	"SecuroHub/pkg/sse"
	"SecuroHub/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// 1. config and logging
	if err := config.Load(); err != nil {
		return err
	}
	cfg := config.GlobalConfig
	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("starting securo", zap.String("version", version), zap.String("config", cfg.String()))

	// 2. storage
	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN, cfg.Mode == "debug")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store, err := cache.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer store.Close()
	index, err := search.New(search.Config{
		DefaultSearchFields: search.AlertSearchFields,
		QueryTimeout:        2 * time.Second,
	}, search.BuildIndexMapping("standard"))
	if err != nil {
		return fmt.Errorf("init search index: %w", err)
	}
	defer index.Close()

	// 3. services
	m := metrics.NewMetrics()
	hub := sse.NewHub(30 * time.Second)

	llmLogger := logrus.New()
	llmLogger.SetLevel(logrus.InfoLevel)
	analyst := llm.NewOpenAIHandler(cfg.OpenAIApiKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, llmLogger)
	expert, err := llm.NewGeminiHandler(ctx, cfg.GeminiApiKey, cfg.GeminiBaseURL, cfg.GeminiModel, llmLogger)
	if err != nil {
		return err
	}
	bot := assistant.New(db, analyst, expert,
		assistant.WithTimeout(cfg.LLMTimeout),
		assistant.WithHistoryLimit(cfg.ChatHistoryLimit),
		assistant.WithMetrics(m),
	)
	dash := dashboard.New(db, store, cfg.StatsTTL, m)

	notifier := notification.NewNotifier(notification.SenderFunc(func(ctx context.Context, ev notification.EmergencyEvent) error {
		return hub.SendGroupEvent(listeners.UserGroup(ev.Username), "emergency", ev)
	}))

	support, err := i18n.NewI18nSupport("en")
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	auditor, err := middleware.NewAuditor(cfg.GeoIPDBPath)
	if err != nil {
		return fmt.Errorf("open geoip database: %w", err)
	}
	defer auditor.Close()
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:       cfg.RateLimit,
		AddHeaders: true,
		SkipPaths:  []string{cfg.APIPrefix + "/system/health", cfg.APIPrefix + "/alerts/stream"},
	}, nil).WithObserver(middleware.NewPrometheusObserver(m.Registry()))

	indexed, err := listeners.Backfill(ctx, db, index)
	if err != nil {
		return fmt.Errorf("backfill search index: %w", err)
	}
	logger.Info("search index ready", zap.Int("alerts", indexed))

	listeners.InitAlertListeners(listeners.Deps{Hub: hub, Index: index, Dashboard: dash, Metrics: m})
	listeners.InitUserListeners(listeners.Deps{Dashboard: dash, Metrics: m})

	// 4. background jobs
	cron := scheduler.NewCron(time.Local)
	if _, err := cron.AddWithCtx(cfg.StatsSchedule, dash.RefreshGauges); err != nil {
		return fmt.Errorf("schedule stats refresh: %w", err)
	}
	if cfg.BackupSchedule != "" {
		if err := backup.Schedule(cron, cfg.BackupSchedule, db, cfg.BackupPath); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
	}
	cron.Start()
	defer cron.Stop()
	dash.RefreshGauges(ctx)

	// 5. HTTP
	gin.SetMode(ginMode(cfg.Mode))
	engine := gin.New()
	engine.Use(gin.Recovery())
	handlers.NewHandlers(db, handlers.Deps{
		Config:      cfg,
		Assistant:   bot,
		Dashboard:   dash,
		Index:       index,
		Hub:         hub,
		Cache:       store,
		Notifier:    notifier,
		I18n:        support,
		Metrics:     m,
		Auditor:     auditor,
		RateLimiter: limiter,
	}).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
