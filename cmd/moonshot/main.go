package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"moonshot/internal/ai"
	"moonshot/internal/analysis"
	"moonshot/internal/charting"
	"moonshot/internal/config"
	"moonshot/internal/ledger"
	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
	"moonshot/internal/scheduler"
	"moonshot/internal/telegram"
	"moonshot/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/moonshot.db", "path to SQLite database")
	flag.Parse()

	// Secrets may live in .env rather than the config file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting moonshot", "scan_interval", cfg.Trading.ScanInterval)

	if dir := filepath.Dir(*dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("create data dir failed", "error", err)
			os.Exit(1)
		}
	}

	db, err := ledger.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	store, err := ledger.NewStore(db, cfg.Trading.InitialCash)
	if err != nil {
		log.Error("ledger init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Market data and collaborators.
	yahoo := marketdata.NewYahooClient(log)
	crypto := marketdata.NewBinanceClient(log)
	pricer := marketdata.NewPricer(yahoo, crypto)
	aiClient := ai.NewClient(cfg, log)
	analyzer := analysis.NewAnalyzer(yahoo, crypto, aiClient, log)

	charts, err := charting.NewGenerator(cfg.Trading.ChartDir, log)
	if err != nil {
		log.Error("chart dir init failed", "error", err)
		os.Exit(1)
	}

	// Telegram is optional; without it the bot still scans and trades.
	var botAPI *tgbotapi.BotAPI
	if cfg.Telegram.Enabled {
		botAPI, err = tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			log.Error("telegram init failed", "error", err)
			os.Exit(1)
		}
		log.Info("telegram connected", "username", botAPI.Self.UserName)
	}
	notifier := telegram.NewNotifier(botAPI, cfg.Telegram.ChatID, log)

	sched := scheduler.NewScheduler(aiClient, analyzer, store, charts, notifier, pricer, cfg, log)
	webServer := web.NewServer(store, cfg, log)

	go sched.Run(ctx)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	if botAPI != nil {
		bot := telegram.NewBot(botAPI, notifier, store, pricer, sched.Scan, cfg, log)
		go bot.Run(ctx)
	}

	notifier.Notify("🤖 Moonshot Bot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	cancel() // stop scheduler and bot

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.Notify("🛑 Moonshot Bot stopped")
	log.Info("moonshot stopped")
}
