package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forex_bot/pkg/logger"
)

func (t *Telegram) statusMessage() string {
	uptime := time.Since(t.startedAt)
	next := t.trader.NextTradeTime()
	nextText := "n/a"
	if !next.IsZero() {
		nextText = next.Format("15:04:05 MST")
	}
	st := t.store.Snapshot()
	return fmt.Sprintf(
		"🖥️ *System Status*\n"+
			"• Uptime: %dh %dm\n"+
			"• Open trades: %d\n"+
			"• Trades today: %d\n"+
			"• Next trade: `%s`",
		int(uptime.Hours()), int(uptime.Minutes())%60,
		len(st.OpenTrades), st.TradesToday, nextText,
	)
}

// diagnosticsMessage показывает хвост журнала ошибок процесса.
func (t *Telegram) diagnosticsMessage() string {
	errs := logger.LastErrors()
	if len(errs) == 0 {
		return "🩺 *Diagnostics*\nNo recent errors."
	}
	return "🩺 *Diagnostics*\n```\n" + strings.Join(errs, "\n") + "\n```"
}

func (t *Telegram) reportMessage(ctx context.Context) string {
	st := t.store.Snapshot()
	winRate := 0.0
	if st.WinCount+st.LossCount > 0 {
		winRate = float64(st.WinCount) / float64(st.WinCount+st.LossCount) * 100
	}

	openPositions := len(st.OpenTrades)
	if positions, err := t.broker.OpenPositions(ctx); err == nil {
		openPositions = len(positions)
	}

	return fmt.Sprintf(
		"📊 *Trade Report*\n"+
			"• Balance P&L: £%.2f\n"+
			"• Win Rate: %.2f%%\n"+
			"• Trades Today: %d\n"+
			"• Open Positions: %d",
		st.TotalProfitLoss, winRate, st.TradesToday, openPositions,
	)
}

func (t *Telegram) dailyMessage(ctx context.Context) string {
	if t.history == nil {
		return "Trade history is not configured."
	}
	sum, err := t.history.Daily(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Sprintf("Daily summary failed: %v", err)
	}
	return fmt.Sprintf(
		"📅 *Daily Summary*\n"+
			"• P/L: %.2f\n"+
			"• Closed: %d\n"+
			"• Still open: %d",
		sum.ProfitLoss, sum.Closed, sum.Open,
	)
}

func (t *Telegram) weeklyMessage(ctx context.Context) string {
	if t.history == nil {
		return "Trade history is not configured."
	}
	sum, err := t.history.Weekly(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Sprintf("Weekly summary failed: %v", err)
	}
	return fmt.Sprintf(
		"🗓 *Weekly Summary*\n"+
			"• P/L: %.2f\n"+
			"• Trades: %d",
		sum.ProfitLoss, sum.Trades,
	)
}
