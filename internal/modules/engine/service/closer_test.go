package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_bot/internal/models"
)

func TestCloseAllTradesNoPositions(t *testing.T) {
	broker := &fakeBroker{}
	closer := NewCloser(broker, newTestStore(t), nil)

	result := closer.CloseAllTrades(context.Background())
	assert.Equal(t, "No open positions to close.", result)
}

func TestCloseAllTradesBothSides(t *testing.T) {
	broker := &fakeBroker{
		positions: []models.BrokerPosition{
			{
				Instrument: "EUR_USD",
				LongUnits:  100000,
				LongTrades: []string{"11", "12"},
			},
			{
				Instrument:  "USD_JPY",
				ShortUnits:  -500,
				ShortTrades: []string{"21"},
			},
		},
		closeResults: map[string]*models.CloseResult{
			"11": {TradeID: "11", ExitPrice: 1.1010, RealizedPL: 1.0},
			"12": {TradeID: "12", ExitPrice: 1.1011, RealizedPL: 2.0},
			"21": {TradeID: "21", ExitPrice: 150.10, RealizedPL: -0.5},
		},
	}
	store := newTestStore(t)
	now := time.Now().UTC()
	store.RecordOpenTrade(openTradeRecord("11", "EUR_USD", now), "h1")
	store.RecordOpenTrade(openTradeRecord("12", "EUR_USD", now), "h2")

	closer := NewCloser(broker, store, nil)
	result := closer.CloseAllTrades(context.Background())

	// закрывается каждый трейд на каждой стороне, не только первый
	assert.ElementsMatch(t, []string{"11", "12", "21"}, broker.closed)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Closed LONG EUR_USD - 100000 units")
	assert.Contains(t, lines[1], "Closed LONG EUR_USD - 100000 units")
	assert.Contains(t, lines[2], "Closed SHORT USD_JPY - -500 units")

	st := store.Snapshot()
	assert.Empty(t, st.OpenTrades)
	assert.InDelta(t, 3.0, st.TotalProfitLoss, 1e-9)
}

func TestCloseAllTradesReportsFailures(t *testing.T) {
	broker := &fakeBroker{
		positions: []models.BrokerPosition{
			{Instrument: "EUR_USD", LongUnits: 1000, LongTrades: []string{"31", "32"}},
		},
		closeErr: map[string]error{"31": errors.New("timeout")},
	}
	closer := NewCloser(broker, newTestStore(t), nil)

	result := closer.CloseAllTrades(context.Background())
	lines := strings.Split(result, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "error: timeout")
	// отказ по одному трейду не останавливает остальные
	assert.Equal(t, []string{"32"}, broker.closed)
}
