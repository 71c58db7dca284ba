package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipSize(t *testing.T) {
	assert.InDelta(t, 0.0001, PipSize("EUR_USD"), 1e-12)
	assert.InDelta(t, 0.01, PipSize("USD_JPY"), 1e-12)
	assert.InDelta(t, 0.01, PipSize("eur_jpy"), 1e-12)
}

func TestPipConversions(t *testing.T) {
	assert.InDelta(t, 25.0, PriceToPips("EUR_USD", 0.0025), 1e-9)
	assert.InDelta(t, 25.0, PriceToPips("EUR_USD", -0.0025), 1e-9)
	assert.InDelta(t, 30.0, PriceToPips("USD_JPY", 0.30), 1e-9)

	assert.InDelta(t, 0.0020, PipsToPrice("EUR_USD", 20), 1e-12)
	assert.InDelta(t, 0.20, PipsToPrice("USD_JPY", 20), 1e-12)
}

func TestNormPair(t *testing.T) {
	tests := map[string]string{
		"eur/usd": "EUR_USD",
		"eurusd":  "EUR_USD",
		"EUR_USD": "EUR_USD",
		" gbpjpy": "GBP_JPY",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormPair(in))
	}
}

func TestNextMidnight(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// летнее время: 23:30 UTC это 00:30 в Лондоне следующего дня
	now := time.Date(2026, 7, 10, 18, 45, 0, 0, london)
	next := NextMidnight(now, london)
	assert.Equal(t, time.Date(2026, 7, 11, 0, 0, 0, 0, london), next)

	// сразу после полуночи до следующей почти сутки
	justAfter := time.Date(2026, 7, 10, 0, 0, 1, 0, london)
	assert.Equal(t, time.Date(2026, 7, 11, 0, 0, 0, 0, london), NextMidnight(justAfter, london))
}

func TestBackupTimestampSortable(t *testing.T) {
	early := BackupTimestamp(time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC))
	late := BackupTimestamp(time.Date(2026, 5, 11, 10, 0, 0, 0, time.UTC))
	assert.Less(t, early, late)
	assert.Equal(t, "20260511T090000", early)
}
