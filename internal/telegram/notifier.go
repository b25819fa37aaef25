package telegram

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"moonshot/internal/logger"
)

// Notifier delivers scan results to one chat. The recipient is session
// state bound by /start rather than a process-wide global; a configured
// chat id acts as the default until someone binds.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	logger *logger.Logger

	mu     sync.Mutex
	chatID int64
}

func NewNotifier(bot *tgbotapi.BotAPI, defaultChatID int64, log *logger.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: defaultChatID, logger: log}
}

// Bind points all future notifications at the given chat.
func (n *Notifier) Bind(chatID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chatID = chatID
}

func (n *Notifier) target() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chatID
}

func (n *Notifier) Notify(text string) {
	chatID := n.target()
	if n.bot == nil || chatID == 0 {
		return
	}

	// No parse mode: AI-written captions regularly contain characters
	// that break Markdown parsing.
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}

// NotifyWithChart sends the caption with the chart attached, falling back
// to plain text when there is no chart.
func (n *Notifier) NotifyWithChart(caption, chartPath string) {
	chatID := n.target()
	if n.bot == nil || chatID == 0 {
		return
	}
	if chartPath == "" {
		n.Notify(caption)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(chartPath))
	doc.Caption = caption
	if _, err := n.bot.Send(doc); err != nil {
		n.logger.Error("send telegram chart", "error", err)
		n.Notify(caption)
	}
}

func (n *Notifier) NotifyError(context string, err error) {
	n.Notify(fmt.Sprintf("⚠️ Error [%s]\n%v", context, err))
}
