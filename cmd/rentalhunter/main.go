package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentalhunter/config"
	"rentalhunter/internal/api"
	"rentalhunter/internal/database"
	"rentalhunter/internal/processor"
	"rentalhunter/internal/scheduler"
	"rentalhunter/internal/scraping"
	"rentalhunter/internal/telegram"
)

func main() {
	loop := flag.Bool("loop", false, "scan repeatedly until interrupted")
	serve := flag.Bool("serve", false, "scan repeatedly and serve the status API")
	testNotify := flag.Bool("test", false, "send a test notification and exit")
	showStats := flag.Bool("stats", false, "print seen-listing statistics and exit")
	clearSeen := flag.Bool("clear", false, "delete all seen listings and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	profile, err := config.LoadSearchProfile(cfg.Scan.SearchProfile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load search profile")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := telegram.NewService(cfg.TelegramConfig(), logger).WithProfile(profile)

	if *testNotify {
		if err := notifier.SendTest(ctx); err != nil {
			logger.WithError(err).Error("Test notification failed")
			os.Exit(1)
		}
		logger.Info("Test notification sent")
		return
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open seen store")
	}
	defer store.Close()

	switch {
	case *showStats:
		stats, err := database.GetStats(ctx, store, 5)
		if err != nil {
			logger.WithError(err).Fatal("Failed to read statistics")
		}
		printStats(os.Stdout, stats)
		return

	case *clearSeen:
		deleted, err := store.Clear(ctx)
		if err != nil {
			logger.WithError(err).Fatal("Failed to clear seen listings")
		}
		fmt.Printf("Deleted %d seen listings\n", deleted)
		return
	}

	if !cfg.TelegramConfig().IsConfigured() {
		logger.Warn("Telegram is not configured; new listings will be recorded without notifications")
	}

	sources := scraping.NewSourceManager(cfg, profile, logger)
	scanner := processor.NewScanProcessor(sources.Adapters(), store, notifier, cfg, logger)

	logger.WithFields(logrus.Fields{
		"metro":    profile.Metro.Name,
		"sources":  sources.Sources(),
		"min_sqft": profile.Criteria.MinSqft,
		"max_rent": profile.Criteria.MaxRent,
	}).Info("Rental hunter starting")

	switch {
	case *serve:
		runServer(ctx, cfg, profile, store, scanner, notifier, logger)
	case *loop:
		scheduler.NewScheduler(scanner, cfg.Scan.PollInterval, logger).Run(ctx)
	default:
		newCount, err := scanner.RunOnce(ctx)
		if err != nil {
			logger.WithError(err).Error("Scan interrupted")
			os.Exit(1)
		}
		logger.WithField("new", newCount).Info("Scan finished")
	}
}

func runServer(ctx context.Context, cfg *config.Config, profile config.SearchProfile, store database.Store,
	scanner *processor.ScanProcessor, notifier *telegram.Service, logger *logrus.Logger) {
	sched := scheduler.NewScheduler(scanner, cfg.Scan.PollInterval, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router,
		api.NewHandler(store, sched, notifier, cfg.TelegramConfig(), logger),
		api.NewMetroHandler(profile),
	)

	srv := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: router,
	}

	sched.Start(ctx)
	go func() {
		logger.Infof("Starting server on %s", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	sched.Stop()
}
