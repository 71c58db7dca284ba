package service

import (
	"context"
	"time"

	history "forex_bot/internal/modules/history/service"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

// Monitor периодически сверяет открытые сделки с брокером и закрывает
// те, что пересидели лимит удержания или вышли в плюс.
type Monitor struct {
	broker   Broker
	store    *state.Store
	history  *history.Trades
	interval time.Duration
	maxHold  time.Duration
}

func NewMonitor(broker Broker, store *state.Store, trades *history.Trades, interval, maxHold time.Duration) *Monitor {
	return &Monitor{
		broker:   broker,
		store:    store,
		history:  trades,
		interval: interval,
		maxHold:  maxHold,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger.Info("monitor: запущен, интервал %s, лимит удержания %s", m.interval, m.maxHold)
	for {
		select {
		case <-ctx.Done():
			logger.Info("monitor: остановлен")
			return
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

func (m *Monitor) scan(ctx context.Context) {
	open, err := m.broker.OpenTrades(ctx)
	if err != nil {
		logger.Error("monitor: открытые сделки недоступны: %v", err)
		return
	}

	now := time.Now().UTC()
	for _, trade := range open {
		held := now.Sub(trade.OpenedAt)
		shouldClose := held > m.maxHold || trade.UnrealizedPL > 0
		if !shouldClose {
			continue
		}
		// Ошибка по одной сделке не прерывает обход остальных.
		m.closeTrade(ctx, trade.TradeID, held, trade.UnrealizedPL)
	}
}

func (m *Monitor) closeTrade(ctx context.Context, tradeID string, held time.Duration, unrealized float64) {
	res, err := m.broker.CloseTrade(ctx, tradeID)
	if err != nil {
		logger.Error("monitor: закрытие %s не удалось: %v", tradeID, err)
		return
	}

	closedAt := time.Now().UTC()
	if _, ok := m.store.CloseTrade(tradeID, res.ExitPrice, res.RealizedPL, closedAt); !ok {
		logger.Error("monitor: сделка %s закрыта у брокера, но не найдена в состоянии", tradeID)
	}
	if m.history != nil {
		if err := m.history.MarkClosed(ctx, tradeID, res.ExitPrice, res.RealizedPL, closedAt); err != nil {
			logger.Error("monitor: отметка закрытия %s в БД не удалась: %v", tradeID, err)
		}
	}
	logger.Info("monitor: закрыта %s, удержание %s, P/L %.2f (нереализ. %.2f)", tradeID, held.Round(time.Second), res.RealizedPL, unrealized)
}
