package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"breakoutbot/internal/core"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	bot.Debug = false
	log.Info().Str("@", bot.Self.UserName).Msg("telegram connected")
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(evt core.Event) error {
	text := FormatMessage(evt)
	if text == "" {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.bot.Send(msg)
	return err
}

// FormatMessage renders an event as a push text. Skip events produce no
// message; they only matter to logs and metrics.
func FormatMessage(evt core.Event) string {
	switch evt.Kind {
	case core.EventStarted:
		return fmt.Sprintf("📢 %s ✅", evt.Detail)
	case core.EventEntry:
		p := evt.Position
		if p == nil {
			return ""
		}
		icon := "🟢"
		if p.Side == core.Short {
			icon = "🔴"
		}
		return fmt.Sprintf("%s %s ENTRY @ %.2f | qty: %.5f",
			icon, strings.ToUpper(string(p.Side)), p.EntryPrice, p.Quantity)
	case core.EventExit:
		ct := evt.Trade
		if ct == nil {
			return ""
		}
		return fmt.Sprintf("🎯 %s triggered: %s @ %.2f | PnL: %.2f USDT",
			ct.Reason, strings.ToUpper(string(ct.Side)), ct.ExitPrice, ct.RealizedPnLUSDT)
	case core.EventStatus:
		return fmt.Sprintf("📊 STATUS: %.2f USDT | open trades: %d | capital: %.2f",
			evt.Price, evt.OpenCount, evt.Capital)
	}
	return ""
}
