package service

import (
	"context"

	"forex_bot/internal/helper"
	strategy "forex_bot/internal/modules/strategy/service"
)

const (
	atrPeriod      = 14
	atrGranularity = "M15"
	atrCandles     = 50
)

// MarketData — спред и волатильность поверх ценового источника.
type MarketData struct {
	prices Prices
}

func NewMarketData(prices Prices) *MarketData {
	return &MarketData{prices: prices}
}

func (m *MarketData) Spread(ctx context.Context, instrument string) (float64, error) {
	return m.prices.CurrentSpread(ctx, instrument)
}

// ATRPips — ATR(14) по 15-минутным свечам, в пипсах. Ноль означает
// "волатильность неизвестна": сайзер подставит запасной стоп.
func (m *MarketData) ATRPips(ctx context.Context, instrument string) (float64, error) {
	candles, err := m.prices.Candles(ctx, instrument, atrCandles, atrGranularity)
	if err != nil {
		return 0, err
	}
	atr := strategy.ATR(candles, atrPeriod)
	return helper.PriceToPips(instrument, atr), nil
}
