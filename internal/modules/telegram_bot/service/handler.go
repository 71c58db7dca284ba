package service

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forex_bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	if chatID != t.cfg.Telegram.ChatID {
		t.Send(chatID, "Unauthorized.")
		return
	}
	if !msg.IsCommand() {
		return
	}
	if !t.limiter.Allow() {
		logger.Info("telegram: команда /%s отброшена рейт-лимитом", msg.Command())
		return
	}

	switch msg.Command() {
	case "status":
		t.Send(chatID, t.statusMessage())
	case "report":
		go func() { t.Send(chatID, t.reportMessage(ctx)) }()
	case "daily":
		go func() { t.Send(chatID, t.dailyMessage(ctx)) }()
	case "weekly":
		go func() { t.Send(chatID, t.weeklyMessage(ctx)) }()
	// Торговые команды ходят в сеть — уводим с цикла обработки апдейтов.
	case "maketrade":
		go func() { t.Send(chatID, "📈 Manual Trade: `"+t.trader.ManualTrade(ctx)+"`") }()
	case "closetrades":
		go func() { t.Send(chatID, "❌ Closed Trades: `"+t.closer.CloseAllTrades(ctx)+"`") }()
	case "diagnostics":
		t.Send(chatID, t.diagnosticsMessage())
	case "whatyoudoin":
		t.Send(chatID, "🤖 *Decision Breakdown*\n```\n"+t.trader.LastSignalBreakdown()+"\n```")
	default:
	}
}
