package service

import (
	"forex_bot/internal/helper"
)

// Запасная дистанция стопа в пипсах, когда ATR недоступен:
// защищает от деления на ноль и от бесконечного размера.
const fallbackStopPips = 20.0

// CalculatePositionSize — размер позиции в юнитах от риска:
// units = floor(balance*riskFraction / (stopPips * pipValue)).
// Никогда не отдаёт меньше minUnits, не паникует на нулевом балансе
// и нулевом стопе.
func CalculatePositionSize(instrument string, balance, stopPips, riskFraction float64, minUnits int) int {
	if minUnits < 1 {
		minUnits = 1
	}
	if stopPips <= 0 {
		stopPips = fallbackStopPips
	}
	if riskFraction <= 0 || balance <= 0 {
		return minUnits
	}

	riskAmount := balance * riskFraction
	pipValue := helper.PipSize(instrument)

	units := int(riskAmount / (stopPips * pipValue))
	if units < minUnits {
		units = minUnits
	}
	return units
}
