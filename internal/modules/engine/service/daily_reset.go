package service

import (
	"context"
	"time"

	"forex_bot/internal/helper"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

// DailyReset обнуляет дневные счётчики в полночь локального времени
// торговой сессии.
type DailyReset struct {
	store *state.Store
	loc   *time.Location
}

func NewDailyReset(store *state.Store, timezone string) *DailyReset {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error("reset: таймзона %q не найдена, используется UTC: %v", timezone, err)
		loc = time.UTC
	}
	return &DailyReset{store: store, loc: loc}
}

func (r *DailyReset) Run(ctx context.Context) {
	for {
		next := helper.NextMidnight(time.Now().In(r.loc), r.loc)
		wait := time.Until(next)
		logger.Info("reset: следующий сброс счётчиков в %s (через %s)", next.Format(time.RFC3339), wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		r.store.ResetDaily()
		logger.Info("reset: дневные счётчики обнулены")
	}
}
