package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	history "forex_bot/internal/modules/history/service"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

const closePacing = 500 * time.Millisecond

// Closer принудительно закрывает все открытые позиции (команда
// /closetrades). Между закрытиями выдерживается пауза, чтобы не
// упереться в лимиты брокера.
type Closer struct {
	broker  Broker
	store   *state.Store
	history *history.Trades
}

func NewCloser(broker Broker, store *state.Store, trades *history.Trades) *Closer {
	return &Closer{broker: broker, store: store, history: trades}
}

// CloseAllTrades возвращает построчный отчёт для оператора.
func (c *Closer) CloseAllTrades(ctx context.Context) string {
	positions, err := c.broker.OpenPositions(ctx)
	if err != nil {
		return fmt.Sprintf("Failed to fetch open positions: %v", err)
	}
	if len(positions) == 0 {
		return "No open positions to close."
	}

	var lines []string
	for _, pos := range positions {
		if pos.LongUnits != 0 {
			lines = append(lines, c.closeSide(ctx, pos.Instrument, "LONG", pos.LongUnits, pos.LongTrades)...)
		}
		if pos.ShortUnits != 0 {
			lines = append(lines, c.closeSide(ctx, pos.Instrument, "SHORT", pos.ShortUnits, pos.ShortTrades)...)
		}
	}
	if len(lines) == 0 {
		return "No open positions to close."
	}
	return strings.Join(lines, "\n")
}

func (c *Closer) closeSide(ctx context.Context, instrument, side string, units int, tradeIDs []string) []string {
	var lines []string
	for _, tradeID := range tradeIDs {
		if ctx.Err() != nil {
			return lines
		}
		line := c.closeOne(ctx, instrument, side, units, tradeID)
		lines = append(lines, line)

		select {
		case <-ctx.Done():
			return lines
		case <-time.After(closePacing):
		}
	}
	return lines
}

func (c *Closer) closeOne(ctx context.Context, instrument, side string, units int, tradeID string) string {
	res, err := c.broker.CloseTrade(ctx, tradeID)
	if err != nil {
		logger.Error("closer: закрытие %s (%s %s) не удалось: %v", tradeID, instrument, side, err)
		return fmt.Sprintf("Closed %s %s - %d units: error: %v", side, instrument, units, err)
	}

	closedAt := time.Now().UTC()
	c.store.CloseTrade(tradeID, res.ExitPrice, res.RealizedPL, closedAt)
	if c.history != nil {
		if err := c.history.MarkClosed(ctx, tradeID, res.ExitPrice, res.RealizedPL, closedAt); err != nil {
			logger.Error("closer: отметка закрытия %s в БД не удалась: %v", tradeID, err)
		}
	}

	logger.Info("closer: закрыта %s на %s (%s), P/L %.2f", tradeID, instrument, side, res.RealizedPL)
	return fmt.Sprintf("Closed %s %s - %d units: P/L %.2f", side, instrument, units, res.RealizedPL)
}
