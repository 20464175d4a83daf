package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/footodds/internal/pkg/config"
	"github.com/Vodeneev/footodds/internal/pkg/models"
)

const queueSize = 100

var (
	ErrNotConfigured = errors.New("telegram notifier not configured")
	ErrQueueFull     = errors.New("message queue is full")
	ErrStopped       = errors.New("notifier stopped")
)

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts arbitrage alerts to one chat. Messages are queued
// and sent by a background worker at most once per interval, which keeps
// the bot under Telegram's per-chat rate limit.
type TelegramNotifier struct {
	sender    Sender
	chatID    int64
	minProfit float64
	interval  time.Duration

	mu       sync.RWMutex
	closed   bool
	lastSend time.Time

	queue chan string
	done  chan struct{}
}

// NewTelegramNotifier connects the bot described by cfg.
func NewTelegramNotifier(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg == nil || cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, ErrNotConfigured
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID, "bot", bot.Self.UserName)
	return NewWithSender(bot, cfg.ChatID, cfg.MinProfitPercent, cfg.SendInterval), nil
}

// NewWithSender starts a notifier on top of any Sender.
func NewWithSender(sender Sender, chatID int64, minProfitPercent float64, interval time.Duration) *TelegramNotifier {
	if interval <= 0 {
		interval = config.DefaultSendInterval
	}
	n := &TelegramNotifier{
		sender:    sender,
		chatID:    chatID,
		minProfit: minProfitPercent,
		interval:  interval,
		queue:     make(chan string, queueSize),
		done:      make(chan struct{}),
	}
	go n.run()
	return n
}

// NotifyArbitrage queues one message per opportunity at or above the
// configured minimum profit. It never blocks on the network.
func (n *TelegramNotifier) NotifyArbitrage(ctx context.Context, opps []models.ArbitrageOpportunity) error {
	if n == nil {
		return ErrNotConfigured
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrStopped
	}

	queued := 0
	for i := range opps {
		if opps[i].ProfitMargin < n.minProfit {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n.queue <- FormatArbitrage(opps[i]):
			queued++
		default:
			slog.Warn("Telegram alert dropped, queue full", "match", opps[i].MatchName)
			return ErrQueueFull
		}
	}
	if queued > 0 {
		slog.Info("Telegram alerts queued", "count", queued, "queue_len", len(n.queue))
	}
	return nil
}

// Stop sends what is still queued and waits for the worker to exit.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *TelegramNotifier) run() {
	defer close(n.done)
	for text := range n.queue {
		n.send(text)
	}
}

func (n *TelegramNotifier) send(text string) {
	if elapsed := time.Since(n.lastSend); !n.lastSend.IsZero() && elapsed < n.interval {
		time.Sleep(n.interval - elapsed)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	start := time.Now()
	_, err := n.sender.Send(msg)
	n.lastSend = time.Now()
	if err != nil {
		slog.Error("Telegram send failed", "error", err, "message_preview", truncate(text, 50))
		return
	}
	slog.Info("Telegram send succeeded", "send_duration", time.Since(start), "queue_len", len(n.queue))
}

// FormatArbitrage renders one opportunity as a Markdown message.
func FormatArbitrage(opp models.ArbitrageOpportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 *Arbitrage %.2f%%*\n", opp.ProfitMargin)
	fmt.Fprintf(&b, "%s\n", escape(opp.MatchName))
	if league := opp.BestHome.League; league != "" && league != models.UnknownLeague {
		fmt.Fprintf(&b, "_%s_\n", escape(league))
	}
	b.WriteString("\n")
	for _, bet := range opp.Bets {
		fmt.Fprintf(&b, "%s: %.2f @ %s (stake %.1f%%)\n", sideLabel(bet.Side), bet.Odd, escape(bet.Bookmaker), bet.Stake)
	}
	fmt.Fprintf(&b, "\nImplied sum: %.4f", opp.ImpliedSum)
	return b.String()
}

func sideLabel(s models.Side) string {
	switch s {
	case models.SideHome:
		return "Home"
	case models.SideDraw:
		return "Draw"
	case models.SideAway:
		return "Away"
	}
	return string(s)
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
