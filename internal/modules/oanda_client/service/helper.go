package service

import (
	"strconv"
	"strings"
	"time"
)

// formatPrice: у JPY-пар три знака после запятой, у остальных пять.
func formatPrice(instrument string, px float64) string {
	digits := 5
	if strings.Contains(strings.ToUpper(instrument), "JPY") {
		digits = 3
	}
	return strconv.FormatFloat(px, 'f', digits, 64)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseUnits(s string) int {
	v, _ := strconv.ParseFloat(s, 64)
	return int(v)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
