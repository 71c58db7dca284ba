package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"forex_bot/internal/helper"
	"forex_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"forex_bot/pkg/logger"
)

// Сколько отпечатков сигналов держим до вытеснения старых.
const recentSignalsKeep = 500

type Config struct {
	File           string
	BackupDir      string
	BackupInterval time.Duration
	MaxBackups     int
}

// Store — единственный владелец BotState. Мутации только через Update,
// читатели получают копию через Snapshot. Save ставит "грязный" флаг,
// физическую запись делает фоновый writer (ровно один на стор).
type Store struct {
	cfg Config

	mu    sync.RWMutex
	state models.BotState

	dirty chan struct{}

	writeMu    sync.Mutex // максимум одна запись на диске одновременно
	lastBackup time.Time
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.BackupDir != "" {
		if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create backup dir")
		}
	}

	s := &Store{
		cfg:   cfg,
		state: models.NewBotState(),
		dirty: make(chan struct{}, 1),
	}

	if err := s.integrityCheck(); err != nil {
		return nil, err
	}
	s.load()

	return s, nil
}

// integrityCheck: файла нет — создаём пустой синхронно; файл битый —
// откладываем копию с таймстемпом и сбрасываемся в пустой. Потеря данных
// допустима, но только с логом и никогда не валит старт.
func (s *Store) integrityCheck() error {
	data, err := os.ReadFile(s.cfg.File)
	if os.IsNotExist(err) {
		return s.writeSync(models.NewBotState())
	}
	if err != nil {
		return errors.Wrap(err, "read state file")
	}

	var probe models.BotState
	if uErr := sonic.Unmarshal(data, &probe); uErr != nil {
		ts := helper.BackupTimestamp(time.Now())
		quarantine := filepath.Join(filepath.Dir(s.cfg.File), "corrupted_"+ts+".json")
		if cErr := os.WriteFile(quarantine, data, 0o644); cErr != nil {
			logger.Error("state quarantine copy failed: %v", cErr)
		}
		logger.Error("state file corrupted: %v, backed up to %s and reset", uErr, quarantine)
		return s.writeSync(models.NewBotState())
	}
	return nil
}

// load читает канонический файл в память; при ошибке — пустой стейт.
func (s *Store) load() {
	data, err := os.ReadFile(s.cfg.File)
	if err != nil {
		logger.Error("failed to load state: %v", err)
		s.setState(models.NewBotState())
		return
	}
	var st models.BotState
	if err := sonic.Unmarshal(data, &st); err != nil {
		logger.Error("failed to parse state: %v", err)
		s.setState(models.NewBotState())
		return
	}
	if st.DailyTradeCount == nil {
		st.DailyTradeCount = map[string]int{}
	}
	if st.LastTradeTime == nil {
		st.LastTradeTime = map[string]time.Time{}
	}
	s.setState(st)
}

func (s *Store) setState(st models.BotState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Snapshot — консистентная копия для can_trade и отчётов.
func (s *Store) Snapshot() models.BotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update — единственная точка мутации стейта.
func (s *Store) Update(fn func(st *models.BotState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

// Save — fire-and-forget: помечает стейт грязным и сразу возвращается.
// Совмещённые подряд вызовы схлопываются в одну запись.
func (s *Store) Save() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// RunWriter — фоновый writer; все мутации до Save видны следующей записи.
func (s *Store) RunWriter(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			if err := s.Flush(); err != nil {
				logger.Error("state save failed: %v", err)
			} else {
				logger.Info("state saved to %s", s.cfg.File)
			}
		}
	}
}

// Flush — синхронная запись: tmp-файл + атомарный rename, читатель
// никогда не увидит полузаписанный файл.
func (s *Store) Flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.Snapshot()
	if err := s.write(snap); err != nil {
		return err
	}
	s.maybeBackup()
	return nil
}

func (s *Store) write(st models.BotState) error {
	data, err := sonic.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}

	tmp := s.cfg.File + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write tmp state")
	}
	if err := os.Rename(tmp, s.cfg.File); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replace state file")
	}
	return nil
}

func (s *Store) writeSync(st models.BotState) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(st)
}

// --- структурные хелперы для бухгалтерии сделок ---

// RecordOpenTrade фиксирует подтверждённый филл: трейд, дневной счётчик,
// время последней сделки и отпечаток сигнала — одной мутацией.
func (s *Store) RecordOpenTrade(trade models.TradeRecord, signalHash string) {
	s.Update(func(st *models.BotState) {
		st.OpenTrades = append(st.OpenTrades, trade)
		st.DailyTradeCount[trade.Instrument]++
		st.LastTradeTime[trade.Instrument] = trade.OpenedAt
		st.TradesToday++
		st.RecentSignals = append(st.RecentSignals, signalHash)
		if len(st.RecentSignals) > recentSignalsKeep {
			st.RecentSignals = st.RecentSignals[len(st.RecentSignals)-recentSignalsKeep:]
		}
	})
	s.Save()
}

// CloseTrade переводит трейд в closed и обновляет агрегаты.
func (s *Store) CloseTrade(tradeID string, exitPrice, realizedPL float64, closedAt time.Time) (models.TradeRecord, bool) {
	var (
		closed models.TradeRecord
		found  bool
	)
	s.Update(func(st *models.BotState) {
		kept := st.OpenTrades[:0]
		for _, t := range st.OpenTrades {
			if t.TradeID == tradeID && t.Status == models.TradeOpen {
				t.Status = models.TradeClosed
				t.ExitPrice = exitPrice
				t.RealizedPL = realizedPL
				t.ClosedAt = closedAt
				closed = t
				found = true

				st.TotalProfitLoss += realizedPL
				if realizedPL >= 0 {
					st.WinCount++
				} else {
					st.LossCount++
				}
				continue
			}
			kept = append(kept, t)
		}
		st.OpenTrades = kept
	})
	if found {
		s.Save()
	}
	return closed, found
}

// ResetDaily сбрасывает дневные счётчики и историю сигналов на границе дня.
func (s *Store) ResetDaily() {
	s.Update(func(st *models.BotState) {
		st.DailyTradeCount = map[string]int{}
		st.RecentSignals = []string{}
		st.TradesToday = 0
	})
	s.Save()
}
