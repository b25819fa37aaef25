// Package telegram is the operator surface: a long-polling command bot
// and the notifier the scan cycle reports through.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"moonshot/internal/config"
	"moonshot/internal/ledger"
	"moonshot/internal/logger"
	"moonshot/internal/marketdata"
)

// ScanFunc triggers one market scan cycle.
type ScanFunc func(ctx context.Context)

type command struct {
	name        string
	description string
	handler     func(ctx context.Context, msg *tgbotapi.Message)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	notifier *Notifier
	store    *ledger.Store
	pricer   *marketdata.Pricer
	scan     ScanFunc
	cfg      *config.Config
	logger   *logger.Logger
	commands []command
}

func NewBot(
	api *tgbotapi.BotAPI,
	notifier *Notifier,
	store *ledger.Store,
	pricer *marketdata.Pricer,
	scan ScanFunc,
	cfg *config.Config,
	log *logger.Logger,
) *Bot {
	b := &Bot{
		api:      api,
		notifier: notifier,
		store:    store,
		pricer:   pricer,
		scan:     scan,
		cfg:      cfg,
		logger:   log,
	}

	b.commands = []command{
		{"start", "Bind this chat for notifications.", b.handleStart},
		{"scan", "Force a market scan now.", b.handleScan},
		{"portfolio", "Show cash and holdings.", b.handlePortfolio},
		{"reset", "Wipe the portfolio and restore initial cash.", b.handleReset},
		{"sell_all", "Liquidate all holdings at live prices.", b.handleSellAll},
		{"help", "List available commands.", b.handleHelp},
	}

	return b
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("telegram bot polling", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	name := msg.Command()
	for _, cmd := range b.commands {
		if cmd.name == name {
			b.logger.Info("command received", "command", name, "chat_id", msg.Chat.ID)
			cmd.handler(ctx, msg)
			return
		}
	}
	b.reply(msg.Chat.ID, "Unknown command. Try /help.")
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send reply", "error", err)
	}
}

func (b *Bot) handleStart(_ context.Context, msg *tgbotapi.Message) {
	b.notifier.Bind(msg.Chat.ID)
	b.reply(msg.Chat.ID, fmt.Sprintf("🚀 Moonshot Bot Online!\nNotifications bound to chat %d.\nUse /scan to force a hunt.", msg.Chat.ID))
}

func (b *Bot) handleScan(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, "🔎 Force Scan Initiated... This may take a minute.")
	go b.scan(ctx)
}

func (b *Bot) handlePortfolio(_ context.Context, msg *tgbotapi.Message) {
	cash, err := b.store.Balance()
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Could not read wallet: %v", err))
		return
	}
	holdings, err := b.store.Holdings()
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Could not read holdings: %v", err))
		return
	}

	var sb strings.Builder
	sb.WriteString("💼 PORTFOLIO UPDATE\n")
	sb.WriteString(fmt.Sprintf("💵 Cash: $%.2f\n", cash))
	for _, h := range holdings {
		sb.WriteString(fmt.Sprintf("🔹 %s: $%.2f (Avg: %.2f)\n", h.Ticker, h.Quantity*h.AvgCost, h.AvgCost))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleReset(_ context.Context, msg *tgbotapi.Message) {
	result, err := b.store.ResetPortfolio(b.cfg.Trading.InitialCash)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Reset failed: %v", err))
		return
	}
	b.reply(msg.Chat.ID, result)
}

// handleSellAll liquidates every holding at its live price, credits the
// proceeds, then clears positions and orders.
func (b *Bot) handleSellAll(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, "🚨 PANIC SELL INITIATED...")

	holdings, err := b.store.Holdings()
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Could not read holdings: %v", err))
		return
	}
	if len(holdings) == 0 {
		b.reply(msg.Chat.ID, "💼 Portfolio is already empty.")
		return
	}

	var total float64
	var log strings.Builder
	for _, h := range holdings {
		price, err := b.pricer.LatestPrice(ctx, h.Ticker)
		if err != nil {
			log.WriteString(fmt.Sprintf("⚠️ Error selling %s: %v\n", h.Ticker, err))
			continue
		}
		value := h.Quantity * price
		total += value
		log.WriteString(fmt.Sprintf("📉 Sold %s: $%.2f (@ $%.2f)\n", h.Ticker, value, price))
	}

	if err := b.store.DepositCash(total); err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Deposit failed: %v", err))
		return
	}
	if err := b.store.ClearPositions(); err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Clearing positions failed: %v", err))
		return
	}

	balance, err := b.store.Balance()
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Could not read wallet: %v", err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"💥 LIQUIDATION COMPLETE\n──────────────────────\n%s💰 Cash Gained: $%.2f\n🏦 New Balance: $%.2f",
		log.String(), total, balance))
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString("🤖 MOONSHOT BOT COMMANDS\n──────────────────────\n")
	for _, cmd := range b.commands {
		sb.WriteString(fmt.Sprintf("/%s - %s\n", cmd.name, cmd.description))
	}
	b.reply(msg.Chat.ID, sb.String())
}
