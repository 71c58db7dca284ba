package helper

import (
	"math"
	"strings"
	"time"
)

// PipSize — размер пипса: 0.01 для котировок в JPY, 0.0001 для остальных.
func PipSize(instrument string) float64 {
	if strings.Contains(strings.ToUpper(instrument), "JPY") {
		return 0.01
	}
	return 0.0001
}

// PriceToPips переводит абсолютную дистанцию цены в пипсы.
func PriceToPips(instrument string, dist float64) float64 {
	return math.Abs(dist) / PipSize(instrument)
}

func PipsToPrice(instrument string, pips float64) float64 {
	return pips * PipSize(instrument)
}

// NormPair приводит "eur/usd" и "eurusd" к брокерскому "EUR_USD".
func NormPair(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "/", "_")
	if !strings.Contains(s, "_") && len(s) == 6 {
		s = s[:3] + "_" + s[3:]
	}
	return s
}

// NextMidnight — ближайшая локальная полночь в заданной таймзоне
// (граница сброса дневных счётчиков).
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1)
}

// BackupTimestamp — UTC-метка, лексикографически сортируемая по времени.
func BackupTimestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405")
}
