package service

import (
	"fmt"

	"forex_bot/internal/models"
)

const (
	emaFast    = 12
	emaSlow    = 26
	macdSignal = 9
	rsiPeriod  = 14

	// минимум свечей для осмысленных индикаторов
	minCandles = 30
)

// Engine — генератор сигналов: EMA-тренд + MACD-кросс + RSI-фильтр.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// TradeSignal считает индикаторы по свечам и отдаёт сигнал, если он есть.
func (e *Engine) TradeSignal(pair string, candles []models.Candle) (models.Signal, bool) {
	if len(candles) < minCandles {
		return models.Signal{}, false
	}

	closes := closesOf(candles)
	emaF := EMASeries(closes, emaFast)
	emaS := EMASeries(closes, emaSlow)
	macd, sigLine := MACD(closes, emaFast, emaSlow, macdSignal)
	rsi := RSI(closes, rsiPeriod)
	price := closes[len(closes)-1]

	trendUp := emaF[len(emaF)-1] > emaS[len(emaS)-1]
	trendDown := emaF[len(emaF)-1] < emaS[len(emaS)-1]

	var dir models.Direction
	confidence := 0.0

	switch {
	case trendUp && macd > sigLine && rsi < 70:
		dir = models.DirectionBuy
		confidence = 1
	case trendDown && macd < sigLine && rsi > 30:
		dir = models.DirectionSell
		confidence = 1
	}

	// перегретый RSI режет уверенность
	if rsi > 80 || rsi < 20 {
		confidence -= 0.5
	}

	if dir == models.DirectionNone || confidence < 0.5 {
		return models.Signal{}, false
	}

	return models.Signal{
		Instrument: pair,
		Direction:  dir,
		Confidence: confidence,
		Price:      price,
		Reason:     fmt.Sprintf("macd=%.5f signal=%.5f rsi=%.1f", macd, sigLine, rsi),
	}, true
}

// TopSignal выбирает сигнал с максимальной уверенностью по вотчлисту.
func (e *Engine) TopSignal(pairs map[string][]models.Candle) (models.Signal, bool) {
	var (
		best  models.Signal
		score float64
		found bool
	)
	for pair, candles := range pairs {
		sig, ok := e.TradeSignal(pair, candles)
		if ok && sig.Confidence > score {
			best = sig
			score = sig.Confidence
			found = true
		}
	}
	return best, found
}
