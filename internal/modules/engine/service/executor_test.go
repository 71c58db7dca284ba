package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_bot/internal/models"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeBroker struct {
	mu          sync.Mutex
	placed      []string
	orderResult *models.OrderResult
	orderErr    error
	orderNil    bool
	blockOn     chan struct{} // если не nil, PlaceOrder ждёт сигнала

	openTrades   []models.BrokerTrade
	positions    []models.BrokerPosition
	closeResults map[string]*models.CloseResult
	closeErr     map[string]error
	closed       []string
	summary      models.AccountSummary
}

func (b *fakeBroker) PlaceOrder(_ context.Context, instrument string, units int, _, _ float64) (*models.OrderResult, error) {
	if b.blockOn != nil {
		<-b.blockOn
	}
	b.mu.Lock()
	b.placed = append(b.placed, fmt.Sprintf("%s:%d", instrument, units))
	n := len(b.placed)
	b.mu.Unlock()

	if b.orderErr != nil {
		return nil, b.orderErr
	}
	if b.orderNil {
		return nil, nil
	}
	if b.orderResult != nil {
		return b.orderResult, nil
	}
	return &models.OrderResult{TradeID: fmt.Sprintf("T-%d", n), FillPrice: 1.1000}, nil
}

func (b *fakeBroker) CloseTrade(_ context.Context, tradeID string) (*models.CloseResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.closeErr[tradeID]; err != nil {
		return nil, err
	}
	b.closed = append(b.closed, tradeID)
	if res := b.closeResults[tradeID]; res != nil {
		return res, nil
	}
	return &models.CloseResult{TradeID: tradeID, ExitPrice: 1.1010, RealizedPL: 1.0}, nil
}

func (b *fakeBroker) OpenTrades(context.Context) ([]models.BrokerTrade, error) {
	return b.openTrades, nil
}

func (b *fakeBroker) OpenPositions(context.Context) ([]models.BrokerPosition, error) {
	return b.positions, nil
}

func (b *fakeBroker) AccountSummary(context.Context) (*models.AccountSummary, error) {
	s := b.summary
	return &s, nil
}

func (b *fakeBroker) placedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.placed)
}

type fakePrices struct {
	spread  float64
	candles []models.Candle
}

func (p *fakePrices) CurrentSpread(context.Context, string) (float64, error) {
	return p.spread, nil
}

func (p *fakePrices) CurrentPrice(context.Context, string) (float64, float64, error) {
	return 1.0999, 1.1001, nil
}

func (p *fakePrices) Candles(context.Context, string, int, string) ([]models.Candle, error) {
	return p.candles, nil
}

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := state.NewStore(state.Config{
		File:           filepath.Join(dir, "trade_state.json"),
		BackupDir:      filepath.Join(dir, "backups"),
		BackupInterval: time.Hour,
		MaxBackups:     3,
	})
	require.NoError(t, err)
	return s
}

func testLimits() Limits {
	return Limits{
		MaxSpreadPips:        2.0,
		MaxTradesPerDay:      10,
		MaxGlobalTrades:      50,
		MinTimeBetweenTrades: 6 * time.Second,
		RiskFraction:         0.02,
		DefaultStopPips:      20,
		MinUnits:             1,
	}
}

func newTestExecutor(t *testing.T, broker *fakeBroker, prices *fakePrices) (*Executor, *state.Store) {
	t.Helper()
	store := newTestStore(t)
	market := NewMarketData(prices)
	exec := NewExecutor(broker, market, store, nil, NewInstrumentLocks(), testLimits())
	return exec, store
}

func buySignal(instrument string, price float64) models.Signal {
	return models.Signal{
		Instrument: instrument,
		Direction:  models.DirectionBuy,
		Confidence: 1.0,
		Price:      price,
		Reason:     "trend up",
	}
}

func TestExecuteTradeSuccess(t *testing.T) {
	broker := &fakeBroker{}
	exec, store := newTestExecutor(t, broker, &fakePrices{spread: 1.0})

	result := exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1000), 10000)
	// риск 2% от 10000 при запасном стопе 20 пипсов
	assert.Equal(t, "Trade executed: EUR_USD buy x100000", result)

	st := store.Snapshot()
	require.Len(t, st.OpenTrades, 1)
	trade := st.OpenTrades[0]
	assert.Equal(t, "T-1", trade.TradeID)
	assert.Equal(t, models.TradeOpen, trade.Status)
	assert.Equal(t, 100000, trade.Size)
	assert.InDelta(t, 1.1000, trade.EntryPrice, 1e-9)
	assert.Less(t, trade.StopLoss, trade.EntryPrice)
	assert.Greater(t, trade.TakeProfit, trade.EntryPrice)

	assert.Equal(t, 1, st.DailyTradeCount["EUR_USD"])
	assert.Equal(t, 1, st.TradesToday)
	assert.Len(t, st.RecentSignals, 1)
}

func TestExecuteTradeSpreadTooHigh(t *testing.T) {
	broker := &fakeBroker{}
	exec, _ := newTestExecutor(t, broker, &fakePrices{spread: 3.5})

	result := exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1000), 10000)
	assert.Equal(t, "Spread too high on EUR_USD (3.50 pips)", result)
	assert.Zero(t, broker.placedCount())
}

func TestExecuteTradeLimits(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(st *models.BotState)
		want    string
	}{
		{
			name: "global limit",
			prepare: func(st *models.BotState) {
				for i := 0; i < 50; i++ {
					st.OpenTrades = append(st.OpenTrades, openTradeRecord(fmt.Sprintf("T-%d", i), "GBP_USD", time.Now()))
				}
			},
			want: "Max global trades reached.",
		},
		{
			name:    "daily per instrument",
			prepare: func(st *models.BotState) { st.DailyTradeCount["EUR_USD"] = 10 },
			want:    "Max trades for EUR_USD today.",
		},
		{
			name:    "cooldown",
			prepare: func(st *models.BotState) { st.LastTradeTime["EUR_USD"] = time.Now() },
			want:    "Cooldown not passed for EUR_USD.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			broker := &fakeBroker{}
			exec, store := newTestExecutor(t, broker, &fakePrices{spread: 1.0})
			store.Update(tc.prepare)

			result := exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1000), 10000)
			assert.Equal(t, tc.want, result)
			assert.Zero(t, broker.placedCount())
		})
	}
}

func TestExecuteTradeDuplicateSignal(t *testing.T) {
	broker := &fakeBroker{}
	exec, store := newTestExecutor(t, broker, &fakePrices{spread: 1.0})

	signal := buySignal("EUR_USD", 1.1000)
	store.Update(func(st *models.BotState) {
		st.RecentSignals = append(st.RecentSignals, signal.Fingerprint())
	})

	result := exec.ExecuteTrade(context.Background(), signal, 10000)
	assert.Equal(t, "Duplicate signal skipped for EUR_USD.", result)
	assert.Zero(t, broker.placedCount())
}

func TestExecuteTradeOrderFailures(t *testing.T) {
	tests := []struct {
		name   string
		broker *fakeBroker
		want   string
	}{
		{
			name:   "no response",
			broker: &fakeBroker{orderNil: true},
			want:   "Order failed: No response from broker.",
		},
		{
			name:   "broker error message",
			broker: &fakeBroker{orderResult: &models.OrderResult{ErrorMessage: "INSUFFICIENT_MARGIN"}},
			want:   "Order failed: INSUFFICIENT_MARGIN",
		},
		{
			name:   "no trade id",
			broker: &fakeBroker{orderResult: &models.OrderResult{FillPrice: 1.1}},
			want:   "Order failed: No trade ID returned.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exec, store := newTestExecutor(t, tc.broker, &fakePrices{spread: 1.0})

			result := exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1000), 10000)
			assert.Equal(t, tc.want, result)

			// неудачная отправка не должна ничего записать
			st := store.Snapshot()
			assert.Empty(t, st.OpenTrades)
			assert.Empty(t, st.RecentSignals)
			assert.Zero(t, st.TradesToday)
		})
	}
}

// Два конкурирующих сигнала по одному инструменту: ордер уходит ровно один.
func TestExecuteTradeConcurrentSameInstrument(t *testing.T) {
	release := make(chan struct{})
	broker := &fakeBroker{blockOn: release}
	exec, _ := newTestExecutor(t, broker, &fakePrices{spread: 1.0})

	results := make(chan string, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		price := 1.1000 + float64(i)*0.0010
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			results <- exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", p), 10000)
		}(price)
	}

	// даём обоим дойти до блокировки, потом отпускаем брокера
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	var executed, rejected int
	for r := range results {
		if IsExecuted(r) {
			executed++
		}
		if r == "Trade already in progress for EUR_USD." {
			rejected++
		}
	}
	assert.Equal(t, 1, executed)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, broker.placedCount())
}

func TestExecuteTradeLockReleasedAfterFailure(t *testing.T) {
	broker := &fakeBroker{orderNil: true}
	exec, _ := newTestExecutor(t, broker, &fakePrices{spread: 1.0})

	_ = exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1000), 10000)
	assert.False(t, exec.locks.Held("EUR_USD"))

	// после провала можно пробовать снова
	broker.orderNil = false
	result := exec.ExecuteTrade(context.Background(), buySignal("EUR_USD", 1.1001), 10000)
	assert.True(t, IsExecuted(result))
}
