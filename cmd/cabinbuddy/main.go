package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/api"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/config"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/handlers"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/metrics"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository/postgres"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/telegram"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting CabinBuddy...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, cfg.StoreTimeout, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	orgRepo := postgres.NewOrganizationRepository(db.DB)
	repos := service.Repositories{
		Organizations: orgRepo,
		FamilyGroups:  postgres.NewFamilyGroupRepository(db.DB),
		Reservations:  postgres.NewReservationRepository(db.DB),
		Payments:      postgres.NewPaymentRepository(db.DB),
		Checkins:      postgres.NewCheckinSessionRepository(db.DB),
	}

	// Telegram bot is optional; notifications fall back to the log.
	var bot *telegram.Bot
	var notifier service.Notifier = service.LogNotifier{Logger: l}
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		notifier = telegram.NewNotifier(bot, orgRepo, l)
	} else {
		l.Warn("TELEGRAM_TOKEN not set, notifications will only be logged")
	}

	dispatcher := service.NewDispatcher(notifier, l, cfg.NotifyTimeout)
	svc := service.New(l, repos, dispatcher, service.Options{
		StoreTimeout:          cfg.StoreTimeout,
		AlternativeSearchDays: cfg.AlternativeSearchDays,
	})

	if bot != nil {
		bot.RegisterCommand("start", "Show the organization linked to this chat", handlers.NewStartHandler(svc, l))
		bot.RegisterCommand("help", "List available commands", handlers.NewHelpHandler(l))
		bot.RegisterCommand("availability", "Check if dates are free", handlers.NewAvailabilityHandler(svc, l))
		bot.RegisterCommand("alternatives", "Suggest nearby free dates", handlers.NewAlternativesHandler(svc, l))
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	go svc.StartStayReminderScheduler(ctx, cfg.ReminderInterval)

	apiServer := api.NewServer(svc, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("Metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	if bot != nil {
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	l.Info("CabinBuddy started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown error: %v", err)
	}

	dispatcher.Wait()

	l.Info("CabinBuddy stopped")
}
