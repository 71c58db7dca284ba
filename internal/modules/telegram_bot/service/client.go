package service

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"forex_bot/internal/modules/config"
	engine "forex_bot/internal/modules/engine/service"
	history "forex_bot/internal/modules/history/service"
	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

// Telegram — контрольная поверхность бота. Принимает команды только из
// авторизованного чата и не даёт оператору заспамить брокера.
type Telegram struct {
	bot     *tgbot.BotAPI
	cfg     *config.Config
	limiter *rate.Limiter

	trader  *engine.Trader
	closer  *engine.Closer
	broker  engine.Broker
	store   *state.Store
	history *history.Trades

	startedAt time.Time
}

func NewTelegram(cfg *config.Config, trader *engine.Trader, closer *engine.Closer, broker engine.Broker, store *state.Store, trades *history.Trades) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	perMin := cfg.MaxCommandsPerMin
	if perMin <= 0 {
		perMin = 10
	}

	return &Telegram{
		bot:       b,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		trader:    trader,
		closer:    closer,
		broker:    broker,
		store:     store,
		history:   trades,
		startedAt: time.Now(),
	}, nil
}

func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, update)
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) Send(chatID int64, msg string) {
	m := tgbot.NewMessage(chatID, msg)
	m.ParseMode = tgbot.ModeMarkdown
	if _, err := t.bot.Send(m); err != nil {
		logger.Error("telegram: отправка в чат %d не удалась: %v", chatID, err)
	}
}

// Alert — алерт оператору в авторизованный чат (engine.Notifier).
func (t *Telegram) Alert(_ context.Context, format string, args ...any) {
	t.Send(t.cfg.Telegram.ChatID, fmt.Sprintf(format, args...))
}
