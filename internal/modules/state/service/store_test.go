package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex_bot/internal/models"
	"forex_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		File:           filepath.Join(dir, "trade_state.json"),
		BackupDir:      filepath.Join(dir, "backups"),
		BackupInterval: time.Hour,
		MaxBackups:     3,
	}
}

func sampleTrade(tradeID string) models.TradeRecord {
	return models.TradeRecord{
		TradeID:    tradeID,
		Instrument: "EUR_USD",
		Direction:  models.DirectionBuy,
		Size:       1000,
		EntryPrice: 1.1000,
		StopLoss:   1.0960,
		TakeProfit: 1.1060,
		OpenedAt:   time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC),
		Status:     models.TradeOpen,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	s, err := NewStore(cfg)
	require.NoError(t, err)

	s.RecordOpenTrade(sampleTrade("T-1"), "hash-1")
	require.NoError(t, s.Flush())

	// новый стор над тем же файлом видит записанное
	reopened, err := NewStore(cfg)
	require.NoError(t, err)

	st := reopened.Snapshot()
	require.Len(t, st.OpenTrades, 1)
	assert.Equal(t, "T-1", st.OpenTrades[0].TradeID)
	assert.Equal(t, 1, st.DailyTradeCount["EUR_USD"])
	assert.Equal(t, 1, st.TradesToday)
	assert.True(t, st.HasRecentSignal("hash-1"))
}

func TestStoreCorruptedFileQuarantined(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.File, []byte("{not json"), 0o644))

	s, err := NewStore(cfg)
	require.NoError(t, err)

	// стейт сброшен в пустой
	st := s.Snapshot()
	assert.Empty(t, st.OpenTrades)
	assert.Zero(t, st.TradesToday)

	// битый файл отложен рядом, не потерян
	entries, err := os.ReadDir(filepath.Dir(cfg.File))
	require.NoError(t, err)
	var quarantined []string
	for _, e := range entries {
		if len(e.Name()) > 10 && e.Name()[:10] == "corrupted_" {
			quarantined = append(quarantined, e.Name())
		}
	}
	require.Len(t, quarantined, 1)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfg.File), quarantined[0]))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestStoreMissingFileCreated(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewStore(cfg)
	require.NoError(t, err)

	_, err = os.Stat(cfg.File)
	assert.NoError(t, err)
}

func TestStoreCloseTrade(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewStore(cfg)
	require.NoError(t, err)

	s.RecordOpenTrade(sampleTrade("T-1"), "h1")
	s.RecordOpenTrade(sampleTrade("T-2"), "h2")

	closedAt := time.Date(2026, 5, 11, 11, 0, 0, 0, time.UTC)
	closed, ok := s.CloseTrade("T-1", 1.1042, 4.2, closedAt)
	require.True(t, ok)
	assert.Equal(t, models.TradeClosed, closed.Status)
	assert.InDelta(t, 1.1042, closed.ExitPrice, 1e-9)

	st := s.Snapshot()
	require.Len(t, st.OpenTrades, 1)
	assert.Equal(t, "T-2", st.OpenTrades[0].TradeID)
	assert.InDelta(t, 4.2, st.TotalProfitLoss, 1e-9)
	assert.Equal(t, 1, st.WinCount)
	assert.Zero(t, st.LossCount)

	// повторное закрытие того же ID не находит ничего
	_, ok = s.CloseTrade("T-1", 1.1042, 4.2, closedAt)
	assert.False(t, ok)
}

func TestStoreResetDaily(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewStore(cfg)
	require.NoError(t, err)

	s.RecordOpenTrade(sampleTrade("T-1"), "h1")
	s.Update(func(st *models.BotState) {
		st.TotalProfitLoss = 12.5
	})

	s.ResetDaily()

	st := s.Snapshot()
	assert.Zero(t, st.TradesToday)
	assert.Empty(t, st.DailyTradeCount)
	assert.Empty(t, st.RecentSignals)
	// открытые сделки и агрегаты переживают сброс
	assert.Len(t, st.OpenTrades, 1)
	assert.InDelta(t, 12.5, st.TotalProfitLoss, 1e-9)
}

func TestStoreSnapshotIsolated(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewStore(cfg)
	require.NoError(t, err)

	s.RecordOpenTrade(sampleTrade("T-1"), "h1")

	snap := s.Snapshot()
	snap.OpenTrades[0].TradeID = "mutated"
	snap.DailyTradeCount["EUR_USD"] = 99

	st := s.Snapshot()
	assert.Equal(t, "T-1", st.OpenTrades[0].TradeID)
	assert.Equal(t, 1, st.DailyTradeCount["EUR_USD"])
}

func TestStoreRecentSignalsTrimmed(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewStore(cfg)
	require.NoError(t, err)

	s.Update(func(st *models.BotState) {
		for i := 0; i < recentSignalsKeep; i++ {
			st.RecentSignals = append(st.RecentSignals, "old")
		}
	})
	s.RecordOpenTrade(sampleTrade("T-1"), "newest")

	st := s.Snapshot()
	assert.Len(t, st.RecentSignals, recentSignalsKeep)
	assert.Equal(t, "newest", st.RecentSignals[len(st.RecentSignals)-1])
}

func TestBackupTrim(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupInterval = 0 // каждый Flush делает копию
	s, err := NewStore(cfg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.RecordOpenTrade(sampleTrade("T-1"), "h")
		require.NoError(t, s.Flush())
		time.Sleep(1100 * time.Millisecond) // таймстемп в имени с точностью до секунды
	}

	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(entries), cfg.MaxBackups)
}
