package models

import "time"

type AccountSummary struct {
	Balance      float64
	UnrealizedPL float64
	MarginUsed   float64
	OpenTrades   int
	Currency     string
}

// OrderResult — нормализованный ответ брокера на маркет-ордер.
// Nil-указатель целиком означает "брокер не ответил".
type OrderResult struct {
	TradeID      string
	FillPrice    float64
	ErrorMessage string
}

// BrokerTrade — открытый трейд со стороны брокера (источник истины
// для монитора: у него актуальный unrealized P/L).
type BrokerTrade struct {
	TradeID      string
	Instrument   string
	Units        int
	EntryPrice   float64
	UnrealizedPL float64
	OpenedAt     time.Time
}

type CloseResult struct {
	TradeID    string
	ExitPrice  float64
	RealizedPL float64
}

// BrokerPosition — агрегат long/short по инструменту (для /closetrades).
type BrokerPosition struct {
	Instrument  string
	LongUnits   int
	LongTrades  []string
	ShortUnits  int
	ShortTrades []string
}
