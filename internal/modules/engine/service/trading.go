package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"forex_bot/internal/models"
	state "forex_bot/internal/modules/state/service"
	strategy "forex_bot/internal/modules/strategy/service"
	"forex_bot/pkg/logger"
)

const signalCandles = 60
const signalGranularity = "M15"

// Trader — главный торговый цикл: раз в интервал собирает сигналы по
// вотчлисту и проводит их через исполнителя.
type Trader struct {
	executor *Executor
	broker   Broker
	prices   Prices
	engine   *strategy.Engine
	store    *state.Store

	pairs         []string
	interval      time.Duration
	maxOpenTrades int
	confidenceMin float64
	retryAttempts int
	retryDelay    time.Duration
	limits        Limits

	mu        sync.Mutex
	lastCycle time.Time
	nextCycle time.Time
	breakdown string
	notifier  Notifier
}

// SetNotifier подключает канал алертов. Телеграм-бот сам зависит от
// трейдера, поэтому нотифаер внедряется после сборки графа.
func (t *Trader) SetNotifier(n Notifier) {
	t.mu.Lock()
	t.notifier = n
	t.mu.Unlock()
}

type TraderConfig struct {
	Pairs         []string
	Interval      time.Duration
	MaxOpenTrades int
	ConfidenceMin float64
	RetryAttempts int
	RetryDelay    time.Duration
	Limits        Limits
}

func NewTrader(executor *Executor, broker Broker, prices Prices, engine *strategy.Engine, store *state.Store, cfg TraderConfig) *Trader {
	return &Trader{
		executor:      executor,
		broker:        broker,
		prices:        prices,
		engine:        engine,
		store:         store,
		pairs:         cfg.Pairs,
		interval:      cfg.Interval,
		maxOpenTrades: cfg.MaxOpenTrades,
		confidenceMin: cfg.ConfidenceMin,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		limits:        cfg.Limits,
	}
}

func (t *Trader) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logger.Info("trader: запущен, интервал %s, пары %v", t.interval, t.pairs)
	t.setNextCycle(time.Now().Add(t.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("trader: остановлен")
			return
		case <-ticker.C:
			t.cycle(ctx)
			t.mu.Lock()
			t.lastCycle = time.Now()
			t.mu.Unlock()
			t.setNextCycle(time.Now().Add(t.interval))
		}
	}
}

func (t *Trader) setNextCycle(at time.Time) {
	t.mu.Lock()
	t.nextCycle = at
	t.mu.Unlock()
}

// LastCycleTime — время окончания последнего цикла (heartbeat).
func (t *Trader) LastCycleTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCycle
}

// NextTradeTime — время следующего торгового цикла (для /status).
func (t *Trader) NextTradeTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextCycle
}

// LastSignalBreakdown — разбор сигналов последнего цикла (для /whatyoudoin).
func (t *Trader) LastSignalBreakdown() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.breakdown == "" {
		return "No signals evaluated yet."
	}
	return t.breakdown
}

func (t *Trader) cycle(ctx context.Context) {
	open, err := t.broker.OpenTrades(ctx)
	if err != nil {
		logger.Error("trader: открытые сделки недоступны, цикл пропущен: %v", err)
		return
	}
	if len(open) >= t.maxOpenTrades {
		logger.Info("trader: открыто %d сделок (лимит %d), цикл пропущен", len(open), t.maxOpenTrades)
		return
	}

	summary, err := t.broker.AccountSummary(ctx)
	if err != nil {
		logger.Error("trader: баланс недоступен, цикл пропущен: %v", err)
		return
	}

	var notes []string
	snapshot := t.store.Snapshot()
	for _, pair := range t.pairs {
		if ctx.Err() != nil {
			return
		}
		signal, ok := t.signalFor(ctx, pair)
		if !ok {
			notes = append(notes, fmt.Sprintf("%s: no signal", pair))
			continue
		}
		notes = append(notes, fmt.Sprintf("%s: %s conf %.2f (%s)", pair, signal.Direction, signal.Confidence, signal.Reason))
		if signal.Confidence <= t.confidenceMin {
			continue
		}
		if snapshot.HasOpenTrade(pair) {
			continue
		}
		if snapshot.DailyTradeCount[pair] >= t.limits.MaxTradesPerDay {
			continue
		}

		result := t.executeWithRetry(ctx, signal, summary.Balance)
		logger.Info("trader: %s -> %s", pair, result)
		if IsExecuted(result) {
			snapshot = t.store.Snapshot()
		}
	}

	t.mu.Lock()
	t.breakdown = strings.Join(notes, "\n")
	t.mu.Unlock()
}

// ManualTrade исполняет лучший сигнал текущего рынка (команда /maketrade).
func (t *Trader) ManualTrade(ctx context.Context) string {
	byPair := make(map[string][]models.Candle, len(t.pairs))
	for _, pair := range t.pairs {
		candles, err := t.prices.Candles(ctx, pair, signalCandles, signalGranularity)
		if err != nil {
			logger.Error("trader: свечи по %s недоступны: %v", pair, err)
			continue
		}
		byPair[pair] = candles
	}

	signal, ok := t.engine.TopSignal(byPair)
	if !ok {
		return "No trade signal right now."
	}
	return t.executor.ExecuteSingleTrade(ctx, signal)
}

func (t *Trader) signalFor(ctx context.Context, pair string) (models.Signal, bool) {
	candles, err := t.prices.Candles(ctx, pair, signalCandles, signalGranularity)
	if err != nil {
		logger.Error("trader: свечи по %s недоступны: %v", pair, err)
		return models.Signal{}, false
	}
	return t.engine.TradeSignal(pair, candles)
}

// executeWithRetry повторяет неудавшиеся попытки; после последней
// шлёт алерт оператору.
func (t *Trader) executeWithRetry(ctx context.Context, signal models.Signal, balance float64) string {
	var result string
	for attempt := 1; attempt <= t.retryAttempts; attempt++ {
		result = t.executor.ExecuteTrade(ctx, signal, balance)
		if IsExecuted(result) {
			return result
		}
		logger.Error("trader: попытка %d/%d по %s: %s", attempt, t.retryAttempts, signal.Instrument, result)
		if attempt < t.retryAttempts {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(t.retryDelay):
			}
		}
	}
	t.mu.Lock()
	notifier := t.notifier
	t.mu.Unlock()
	if notifier != nil {
		notifier.Alert(ctx, "⚠️ Trade failed for %s after %d attempts: %s", signal.Instrument, t.retryAttempts, result)
	}
	return result
}

// IsExecuted — успешный результат исполнителя.
func IsExecuted(result string) bool {
	return strings.HasPrefix(result, "Trade executed")
}
