package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/covid-charts/internal/api/http"
	"github.com/i474232898/covid-charts/internal/cache"
	"github.com/i474232898/covid-charts/internal/config"
	"github.com/i474232898/covid-charts/internal/covid/sources"
	"github.com/i474232898/covid-charts/internal/logger"
	"github.com/i474232898/covid-charts/internal/scheduler"
	"github.com/i474232898/covid-charts/internal/session"
	"github.com/i474232898/covid-charts/internal/view"
	"github.com/i474232898/covid-charts/web"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.Log.Fatalf("failed to open log file: %v", err)
	}
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Optional shared response cache.
	srcCfg := sources.HTTPClientConfig{CacheTTL: cfg.CacheTTL}
	if cfg.CacheTTL > 0 {
		if cfg.RedisAddr != "" {
			rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, "covid:")
			if err != nil {
				log.WithError(err).Warn("redis not reachable yet; cache reads will miss until it is")
			}
			defer rc.Close()
			srcCfg.Cache = rc
		} else {
			srcCfg.Cache = cache.NewMemoryCache(64)
		}
	}

	global := sources.NewGlobalSource(httpClient, cfg.GlobalURL, srcCfg)
	canada := sources.NewCanadaSource(httpClient, cfg.CanadaURL, srcCfg)

	// Each visitor session owns its own page state.
	defaults := view.Defaults{Country: cfg.DefaultCountry, Province: cfg.DefaultProvince}
	sessions := session.NewStore(func() *view.Page {
		return view.NewPage(ctx, global, canada, defaults)
	}, cfg.SessionMaxCount, cfg.SessionMaxAge)

	// The refresh job only pays off when fetches go through the shared cache.
	var warm scheduler.Refresher
	if srcCfg.Cache != nil {
		warm = global
	}
	sched := scheduler.New(warm, cfg.RefreshInterval, sessions, time.Minute)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "covid-charts",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RenderWait + 10*time.Second,
		Views:                 web.NewEngine(),
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "covid-charts",
			"sessions": sessions.Len(),
		})
	})

	httpapi.RegisterRoutes(app, sessions, cfg.RenderWait)

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithFields(logrus.Fields{"error": err}).Error("error during shutdown")
	}
}
