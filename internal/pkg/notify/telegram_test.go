package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/footodds/internal/pkg/models"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func opportunity(profit float64) models.ArbitrageOpportunity {
	d := 4.00
	return models.ArbitrageOpportunity{
		MatchName:    "Team A vs Team B",
		ProfitMargin: profit,
		ImpliedSum:   1 - profit/100,
		BestHome:     models.OddsRecord{Bookmaker: "A", League: "Premier League", HomeOdds: 2.50},
		BestDraw:     &models.OddsRecord{Bookmaker: "B", DrawOdds: &d},
		BestAway:     models.OddsRecord{Bookmaker: "C", AwayOdds: 4.50},
		Bets: []models.Bet{
			{Bookmaker: "A", Side: models.SideHome, Odd: 2.50, Stake: 45.87},
			{Bookmaker: "B", Side: models.SideDraw, Odd: 4.00, Stake: 28.67},
			{Bookmaker: "C", Side: models.SideAway, Odd: 4.50, Stake: 25.48},
		},
	}
}

func TestFormatArbitrage(t *testing.T) {
	msg := FormatArbitrage(opportunity(12.78))
	for _, want := range []string{
		"*Arbitrage 12.78%*",
		"Team A vs Team B",
		"_Premier League_",
		"Home: 2.50 @ A (stake 45.9%)",
		"Draw: 4.00 @ B",
		"Away: 4.50 @ C",
		"Implied sum: 0.8722",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatArbitrage_EscapesMarkdown(t *testing.T) {
	opp := opportunity(5)
	opp.MatchName = "Team_A vs Team*B"
	msg := FormatArbitrage(opp)
	if !strings.Contains(msg, `Team\_A vs Team\*B`) {
		t.Errorf("match name not escaped:\n%s", msg)
	}
}

func TestNotifyArbitrage_FiltersAndSends(t *testing.T) {
	sender := &fakeSender{}
	n := NewWithSender(sender, 42, 2.0, time.Millisecond)

	err := n.NotifyArbitrage(context.Background(), []models.ArbitrageOpportunity{
		opportunity(1.5),
		opportunity(3.0),
		opportunity(12.78),
	})
	if err != nil {
		t.Fatalf("NotifyArbitrage: %v", err)
	}
	n.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
	for _, m := range sender.sent {
		if m.ChatID != 42 || m.ParseMode != tgbotapi.ModeMarkdown {
			t.Errorf("message chat=%d mode=%q", m.ChatID, m.ParseMode)
		}
	}
	if !strings.Contains(sender.sent[0].Text, "3.00%") {
		t.Errorf("first message = %q, want the 3%% opportunity", sender.sent[0].Text)
	}
}

func TestNotifyArbitrage_AfterStop(t *testing.T) {
	n := NewWithSender(&fakeSender{}, 1, 0, time.Millisecond)
	n.Stop()
	n.Stop()
	if err := n.NotifyArbitrage(context.Background(), []models.ArbitrageOpportunity{opportunity(5)}); !errors.Is(err, ErrStopped) {
		t.Errorf("err = %v, want ErrStopped", err)
	}
}

func TestNotifyArbitrage_NilNotifier(t *testing.T) {
	var n *TelegramNotifier
	if err := n.NotifyArbitrage(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
	n.Stop()
}

func TestSendFailureIsLogged(t *testing.T) {
	sender := &fakeSender{err: errors.New("429 Too Many Requests")}
	n := NewWithSender(sender, 1, 0, time.Millisecond)
	if err := n.NotifyArbitrage(context.Background(), []models.ArbitrageOpportunity{opportunity(5)}); err != nil {
		t.Fatal(err)
	}
	n.Stop()
	if len(sender.sent) != 1 {
		t.Errorf("sent = %d, want 1 attempt", len(sender.sent))
	}
}
