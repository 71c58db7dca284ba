package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_bot/internal/models"
	strategy "forex_bot/internal/modules/strategy/service"
)

func modelAccount(balance float64) models.AccountSummary {
	return models.AccountSummary{Balance: balance, Currency: "GBP"}
}

func brokerTrade(tradeID string) models.BrokerTrade {
	return models.BrokerTrade{
		TradeID:    tradeID,
		Instrument: "EUR_USD",
		Units:      1000,
		EntryPrice: 1.1000,
		OpenedAt:   time.Now().UTC(),
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) Alert(_ context.Context, format string, args ...any) {
	n.mu.Lock()
	n.alerts = append(n.alerts, fmt.Sprintf(format, args...))
	n.mu.Unlock()
}

func newTestTrader(t *testing.T, broker *fakeBroker, prices *fakePrices) (*Trader, *fakeNotifier) {
	t.Helper()
	store := newTestStore(t)
	exec := NewExecutor(broker, NewMarketData(prices), store, nil, NewInstrumentLocks(), testLimits())
	trader := NewTrader(exec, broker, prices, strategy.NewEngine(), store, TraderConfig{
		Pairs:         []string{"EUR_USD"},
		Interval:      time.Minute,
		MaxOpenTrades: 7,
		ConfidenceMin: 0.5,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Limits:        testLimits(),
	})
	notifier := &fakeNotifier{}
	trader.SetNotifier(notifier)
	return trader, notifier
}

func TestExecuteWithRetryAlertsAfterFinalFailure(t *testing.T) {
	broker := &fakeBroker{orderNil: true}
	trader, notifier := newTestTrader(t, broker, &fakePrices{spread: 1.0})

	result := trader.executeWithRetry(context.Background(), buySignal("EUR_USD", 1.1000), 10000)

	assert.Equal(t, "Order failed: No response from broker.", result)
	assert.Equal(t, 3, broker.placedCount())
	require.Len(t, notifier.alerts, 1)
	assert.Contains(t, notifier.alerts[0], "EUR_USD")
	assert.Contains(t, notifier.alerts[0], "after 3 attempts")
}

func TestExecuteWithRetryStopsOnSuccess(t *testing.T) {
	broker := &fakeBroker{}
	trader, notifier := newTestTrader(t, broker, &fakePrices{spread: 1.0})

	result := trader.executeWithRetry(context.Background(), buySignal("EUR_USD", 1.1000), 10000)

	assert.True(t, IsExecuted(result))
	assert.Equal(t, 1, broker.placedCount())
	assert.Empty(t, notifier.alerts)
}

func TestManualTradeWithoutSignal(t *testing.T) {
	broker := &fakeBroker{summary: modelAccount(10000)}
	trader, _ := newTestTrader(t, broker, &fakePrices{spread: 1.0})

	// без свечей стратегия молчит
	result := trader.ManualTrade(context.Background())
	assert.Equal(t, "No trade signal right now.", result)
	assert.Zero(t, broker.placedCount())
}

func TestCycleSkippedAtMaxOpenTrades(t *testing.T) {
	broker := &fakeBroker{summary: modelAccount(10000)}
	for i := 0; i < 7; i++ {
		broker.openTrades = append(broker.openTrades, brokerTrade(fmt.Sprintf("T-%d", i)))
	}
	trader, _ := newTestTrader(t, broker, &fakePrices{spread: 1.0})

	trader.cycle(context.Background())
	assert.Zero(t, broker.placedCount())
}

func TestIsExecuted(t *testing.T) {
	assert.True(t, IsExecuted("Trade executed: EUR_USD buy x100"))
	assert.False(t, IsExecuted("Order failed: No trade ID returned."))
	assert.False(t, IsExecuted("Spread too high on EUR_USD (3.50 pips)"))
	assert.False(t, IsExecuted(""))
}
