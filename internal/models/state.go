package models

import "time"

// BotState — единственный владелец: state.Store. Читатели (монитор,
// отчёты) получают копии через Snapshot, а не ссылку.
type BotState struct {
	OpenTrades      []TradeRecord        `json:"open_trades"`
	DailyTradeCount map[string]int       `json:"daily_trade_count"`
	LastTradeTime   map[string]time.Time `json:"last_trade_time"`
	RecentSignals   []string             `json:"recent_signals"`

	TotalProfitLoss float64 `json:"total_profit_loss"`
	WinCount        int     `json:"win_count"`
	LossCount       int     `json:"loss_count"`
	TradesToday     int     `json:"trades_today"`
}

func NewBotState() BotState {
	return BotState{
		OpenTrades:      []TradeRecord{},
		DailyTradeCount: map[string]int{},
		LastTradeTime:   map[string]time.Time{},
		RecentSignals:   []string{},
	}
}

// Clone — глубокая копия для консистентных снапшотов.
func (s BotState) Clone() BotState {
	out := s
	out.OpenTrades = append([]TradeRecord(nil), s.OpenTrades...)
	out.RecentSignals = append([]string(nil), s.RecentSignals...)
	out.DailyTradeCount = make(map[string]int, len(s.DailyTradeCount))
	for k, v := range s.DailyTradeCount {
		out.DailyTradeCount[k] = v
	}
	out.LastTradeTime = make(map[string]time.Time, len(s.LastTradeTime))
	for k, v := range s.LastTradeTime {
		out.LastTradeTime[k] = v
	}
	return out
}

func (s BotState) HasRecentSignal(hash string) bool {
	for _, h := range s.RecentSignals {
		if h == hash {
			return true
		}
	}
	return false
}

func (s BotState) HasOpenTrade(instrument string) bool {
	for _, t := range s.OpenTrades {
		if t.Instrument == instrument && t.Status == TradeOpen {
			return true
		}
	}
	return false
}

func (s *BotState) FindOpenTrade(tradeID string) (TradeRecord, bool) {
	for _, t := range s.OpenTrades {
		if t.TradeID == tradeID {
			return t, true
		}
	}
	return TradeRecord{}, false
}
