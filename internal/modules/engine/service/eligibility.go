package service

import (
	"fmt"
	"time"

	"forex_bot/internal/models"
)

// Limits — пороги допуска сделок. Заполняются из конфига.
type Limits struct {
	MaxSpreadPips        float64
	MaxTradesPerDay      int
	MaxGlobalTrades      int
	MinTimeBetweenTrades time.Duration
	RiskFraction         float64
	DefaultStopPips      float64
	MinUnits             int
}

// CanTrade проверяет лимиты по снимку состояния. Порядок проверок
// фиксирован: глобальный лимит, дневной лимит по паре, пауза между
// сделками. Пустая строка означает "можно торговать".
func CanTrade(state *models.BotState, instrument string, limits Limits, now time.Time) (bool, string) {
	if openTradeCount(state) >= limits.MaxGlobalTrades {
		return false, "Max global trades reached."
	}
	if state.DailyTradeCount[instrument] >= limits.MaxTradesPerDay {
		return false, fmt.Sprintf("Max trades for %s today.", instrument)
	}
	if last, ok := state.LastTradeTime[instrument]; ok {
		if now.Sub(last) < limits.MinTimeBetweenTrades {
			return false, fmt.Sprintf("Cooldown not passed for %s.", instrument)
		}
	}
	return true, ""
}

// openTradeCount — число позиций в статусе open. Глобальный лимит
// считается именно по открытым позициям, а не по дневному счётчику:
// закрытые сделки освобождают место.
func openTradeCount(state *models.BotState) int {
	n := 0
	for _, t := range state.OpenTrades {
		if t.Status == models.TradeOpen {
			n++
		}
	}
	return n
}
