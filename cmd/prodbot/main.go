package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kerhoff/prodbot/internal/api"
	"github.com/Kerhoff/prodbot/internal/config"
	"github.com/Kerhoff/prodbot/internal/handlers"
	"github.com/Kerhoff/prodbot/internal/repository/postgres"
	"github.com/Kerhoff/prodbot/internal/service"
	"github.com/Kerhoff/prodbot/internal/telegram"
	"github.com/Kerhoff/prodbot/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; deployments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting ProdBot...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Service layer over the transactional store
	store := postgres.NewStore(db.DB)
	svc := service.New(store, l)
	l.Infof("Maintenance secret for /sweep and /purge: %s", svc.MaintenanceSecret())

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Product handlers
	bot.RegisterCommand("new", handlers.NewNewHandler(svc, l))
	bot.RegisterCommand("list", handlers.NewListHandler(svc, l))
	bot.RegisterCommand("listexpired", handlers.NewListExpiredHandler(svc, l))
	bot.RegisterCommand("inventory", handlers.NewInventoryHandler(svc, l))

	// Family handlers
	bot.RegisterCommand("invite", handlers.NewInviteHandler(svc, l))
	bot.RegisterCommand("acceptinvite", handlers.NewAcceptInviteHandler(svc, l))
	bot.RegisterCommand("cancel", handlers.NewCancelHandler(svc, l))

	// Privileged maintenance triggers
	bot.RegisterCommand("sweep", handlers.NewSweepHandler(svc, l))
	bot.RegisterCommand("purge", handlers.NewPurgeHandler(svc, l))

	// Conversational flows and inline buttons
	bot.RegisterText(handlers.NewTextHandler(svc, l))
	bot.RegisterCallback("withdraw_", handlers.NewWithdrawHandler(svc, l))

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

	// Daily expiry sweep and retention purge
	go svc.StartMaintenanceScheduler(ctx, cfg.SweepAt, cfg.PurgeAt, func(userID int64, text string) error {
		return bot.SendMessage(userID, text)
	})

	// Operational HTTP server (health, metrics, read-only inspection)
	apiServer := api.NewServer(svc, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Info("ProdBot started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("ProdBot stopped")
}
