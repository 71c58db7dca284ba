package models

import "time"

type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// TradeRecord создаётся после подтверждённого филла; на закрытии
// мутируется статус и exit-поля, записи никогда не удаляются.
type TradeRecord struct {
	TradeID    string      `json:"trade_id"`
	Instrument string      `json:"instrument"`
	Direction  Direction   `json:"direction"`
	Size       int         `json:"size"`
	EntryPrice float64     `json:"entry_price"`
	StopLoss   float64     `json:"stop_loss"`
	TakeProfit float64     `json:"take_profit"`
	ATR        float64     `json:"atr"`
	OpenedAt   time.Time   `json:"opened_at"`
	Status     TradeStatus `json:"status"`
	ExitPrice  float64     `json:"exit_price,omitempty"`
	RealizedPL float64     `json:"realized_pl,omitempty"`
	ClosedAt   time.Time   `json:"closed_at,omitempty"`
}

func (t TradeRecord) HoldingTime(now time.Time) time.Duration {
	return now.Sub(t.OpenedAt)
}
