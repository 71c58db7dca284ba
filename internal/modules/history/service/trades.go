package service

import (
	"context"
	"fmt"
	"time"

	"forex_bot/internal/models"
	"forex_bot/pkg/db"

	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    trade_id      TEXT PRIMARY KEY,
    instrument    TEXT NOT NULL,
    direction     TEXT NOT NULL,
    confidence    DOUBLE PRECISION,
    entry_time    TIMESTAMPTZ NOT NULL,
    entry_price   DOUBLE PRECISION,
    stop_loss     DOUBLE PRECISION,
    take_profit   DOUBLE PRECISION,
    position_size BIGINT,
    exit_time     TIMESTAMPTZ,
    exit_price    DOUBLE PRECISION,
    pl            DOUBLE PRECISION,
    status        TEXT NOT NULL
)`

// Trades — зеркало сделок в Postgres для отчётов. Стейт-файл остаётся
// источником истины по открытым трейдам, база — только история.
type Trades struct {
	db db.TxManager
}

// NewTrades instance
func NewTrades(manager db.TxManager) *Trades {
	return &Trades{db: manager}
}

func (t *Trades) EnsureSchema(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.EnsureSchema: %w", err)
		}
	}()
	return t.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, schema)
		return err
	})
}

// Insert on open
func (t *Trades) Insert(ctx context.Context, rec models.TradeRecord, confidence float64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.InsertTrade: %w", err)
		}
	}()
	return t.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO trades
			    (trade_id, instrument, direction, confidence, entry_time,
			     entry_price, stop_loss, take_profit, position_size, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'open')
			ON CONFLICT (trade_id) DO NOTHING`,
			rec.TradeID, rec.Instrument, string(rec.Direction), confidence,
			rec.OpenedAt, rec.EntryPrice, rec.StopLoss, rec.TakeProfit, rec.Size,
		)
		return err
	})
}

// MarkClosed on close
func (t *Trades) MarkClosed(ctx context.Context, tradeID string, exitPrice, pl float64, closedAt time.Time) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.MarkClosed: %w", err)
		}
	}()
	return t.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			UPDATE trades
			SET status='closed', exit_time=$2, exit_price=$3, pl=$4
			WHERE trade_id=$1`,
			tradeID, closedAt, exitPrice, pl,
		)
		return err
	})
}

type DailySummary struct {
	ProfitLoss float64
	Open       int
	Closed     int
}

type WeeklySummary struct {
	ProfitLoss float64
	Trades     int
}

func (t *Trades) Daily(ctx context.Context, day time.Time) (out DailySummary, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.DailySummary: %w", err)
		}
	}()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	err = t.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx, `
			SELECT COALESCE(SUM(pl), 0),
			       COUNT(*) FILTER (WHERE status = 'open'),
			       COUNT(*) FILTER (WHERE status = 'closed')
			FROM trades
			WHERE entry_time >= $1 AND entry_time < $2`,
			start, end,
		)
		return row.Scan(&out.ProfitLoss, &out.Open, &out.Closed)
	})
	return out, err
}

func (t *Trades) Weekly(ctx context.Context, now time.Time) (out WeeklySummary, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.WeeklySummary: %w", err)
		}
	}()
	start := now.AddDate(0, 0, -7)

	err = t.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx, `
			SELECT COALESCE(SUM(pl), 0), COUNT(*)
			FROM trades
			WHERE entry_time >= $1 AND entry_time < $2`,
			start, now,
		)
		return row.Scan(&out.ProfitLoss, &out.Trades)
	})
	return out, err
}
