package service

import (
	"context"

	"forex_bot/internal/models"
)

// Broker — шлюз к счёту брокера. Идемпотентности нет: повторная отправка
// того же ордера откроет вторую позицию, единственная защита — дедуп и
// инструментные локи координатора.
type Broker interface {
	PlaceOrder(ctx context.Context, instrument string, units int, stopLoss, takeProfit float64) (*models.OrderResult, error)
	CloseTrade(ctx context.Context, tradeID string) (*models.CloseResult, error)
	OpenTrades(ctx context.Context) ([]models.BrokerTrade, error)
	OpenPositions(ctx context.Context) ([]models.BrokerPosition, error)
	AccountSummary(ctx context.Context) (*models.AccountSummary, error)
}

// Prices — источник рыночных данных по запросу.
type Prices interface {
	CurrentSpread(ctx context.Context, instrument string) (float64, error)
	CurrentPrice(ctx context.Context, instrument string) (bid, ask float64, err error)
	Candles(ctx context.Context, instrument string, count int, granularity string) ([]models.Candle, error)
}

// Notifier — канал алертов оператору (Telegram).
type Notifier interface {
	Alert(ctx context.Context, format string, args ...any)
}
