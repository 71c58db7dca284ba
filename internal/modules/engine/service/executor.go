package service

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"

	"forex_bot/internal/helper"
	"forex_bot/internal/models"
	history "forex_bot/internal/modules/history/service"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

const (
	stopATRMultiple = 2.0
	takeProfitRatio = 1.5
)

// Executor — координатор жизненного цикла сделки: допуск, блокировка
// инструмента, дедупликация, расчёт объёма, отправка ордера и запись
// результата.
type Executor struct {
	broker  Broker
	market  *MarketData
	store   *state.Store
	history *history.Trades
	locks   *InstrumentLocks
	limits  Limits
}

func NewExecutor(broker Broker, market *MarketData, store *state.Store, trades *history.Trades, locks *InstrumentLocks, limits Limits) *Executor {
	return &Executor{
		broker:  broker,
		market:  market,
		store:   store,
		history: trades,
		locks:   locks,
		limits:  limits,
	}
}

// ExecuteTrade проводит сигнал через весь конвейер и возвращает строку
// результата для оператора. Паника внутри конвейера не роняет бота.
func (e *Executor) ExecuteTrade(ctx context.Context, signal models.Signal, balance float64) (result string) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "executor.ExecuteTrade")
	defer span.Finish()
	span.SetTag("instrument", signal.Instrument)
	span.SetTag("direction", string(signal.Direction))
	defer func() { span.SetTag("outcome", result) }()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("executor: паника при исполнении %s: %v", signal.Instrument, r)
			result = fmt.Sprintf("Trade error: %v", r)
		}
	}()

	instrument := signal.Instrument

	spread, err := e.market.Spread(ctx, instrument)
	if err != nil {
		return fmt.Sprintf("Trade error: %v", err)
	}
	if spread > e.limits.MaxSpreadPips {
		return fmt.Sprintf("Spread too high on %s (%.2f pips)", instrument, spread)
	}

	snapshot := e.store.Snapshot()
	if ok, reason := CanTrade(&snapshot, instrument, e.limits, time.Now()); !ok {
		return reason
	}

	if !e.locks.TryAcquire(instrument) {
		return fmt.Sprintf("Trade already in progress for %s.", instrument)
	}
	defer e.locks.Release(instrument)

	// Дедуп проверяем уже под блокировкой: параллельный исполнитель мог
	// успеть записать такой же сигнал.
	hash := signal.Fingerprint()
	if e.store.Snapshot().HasRecentSignal(hash) {
		return fmt.Sprintf("Duplicate signal skipped for %s.", instrument)
	}

	atrPips, err := e.market.ATRPips(ctx, instrument)
	if err != nil {
		logger.Error("executor: ATR по %s недоступен: %v", instrument, err)
		atrPips = 0
	}
	stopPips := atrPips * stopATRMultiple
	size := CalculatePositionSize(instrument, balance, stopPips, e.limits.RiskFraction, e.limits.MinUnits)
	units := signal.SignedUnits(size)

	if stopPips <= 0 {
		stopPips = e.limits.DefaultStopPips
		if stopPips <= 0 {
			stopPips = fallbackStopPips
		}
	}
	takePips := stopPips * takeProfitRatio
	stopLoss, takeProfit := protectionPrices(instrument, signal.Direction, signal.Price, stopPips, takePips)

	order, err := e.broker.PlaceOrder(ctx, instrument, units, stopLoss, takeProfit)
	if err != nil {
		return fmt.Sprintf("Trade error: %v", err)
	}
	if order == nil {
		return "Order failed: No response from broker."
	}
	if order.ErrorMessage != "" {
		return fmt.Sprintf("Order failed: %s", order.ErrorMessage)
	}
	if order.TradeID == "" {
		return "Order failed: No trade ID returned."
	}

	entry := order.FillPrice
	if entry == 0 {
		entry = signal.Price
	}
	stopLoss, takeProfit = protectionPrices(instrument, signal.Direction, entry, stopPips, takePips)

	now := time.Now().UTC()
	trade := models.TradeRecord{
		TradeID:    order.TradeID,
		Instrument: instrument,
		Direction:  signal.Direction,
		Size:       size,
		EntryPrice: entry,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		ATR:        helper.PipsToPrice(instrument, atrPips),
		OpenedAt:   now,
		Status:     models.TradeOpen,
	}
	e.store.RecordOpenTrade(trade, hash)

	if e.history != nil {
		if err := e.history.Insert(ctx, trade, signal.Confidence); err != nil {
			logger.Error("executor: запись сделки %s в БД не удалась: %v", order.TradeID, err)
		}
	}

	logger.Info("executor: открыта сделка %s %s %s x%d по %.5f", order.TradeID, signal.Direction, instrument, size, entry)
	return fmt.Sprintf("Trade executed: %s %s x%d", instrument, signal.Direction, size)
}

// ExecuteSingleTrade запрашивает баланс у брокера и исполняет сигнал.
func (e *Executor) ExecuteSingleTrade(ctx context.Context, signal models.Signal) string {
	summary, err := e.broker.AccountSummary(ctx)
	if err != nil {
		return fmt.Sprintf("Trade error: %v", err)
	}
	return e.ExecuteTrade(ctx, signal, summary.Balance)
}

func protectionPrices(instrument string, dir models.Direction, entry, stopPips, takePips float64) (stopLoss, takeProfit float64) {
	stopDist := helper.PipsToPrice(instrument, stopPips)
	takeDist := helper.PipsToPrice(instrument, takePips)
	if dir == models.DirectionBuy {
		return entry - stopDist, entry + takeDist
	}
	return entry + stopDist, entry - takeDist
}
