package engine

import (
	"context"

	"forex_bot/internal/modules/config"
	"forex_bot/internal/modules/engine/service"
	history "forex_bot/internal/modules/history/service"
	oanda "forex_bot/internal/modules/oanda_client/service"
	state "forex_bot/internal/modules/state/service"
	strategy "forex_bot/internal/modules/strategy/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(c *oanda.Client) service.Broker { return c },
			func(c *oanda.Client) service.Prices { return c },
			service.NewInstrumentLocks,
			func(cfg *config.Config) service.Limits {
				return service.Limits{
					MaxSpreadPips:        cfg.MaxSpreadPips,
					MaxTradesPerDay:      cfg.MaxTradesPerDay,
					MaxGlobalTrades:      cfg.MaxGlobalTrades,
					MinTimeBetweenTrades: cfg.MinTimeBetweenTrades,
					RiskFraction:         cfg.RiskFraction,
					DefaultStopPips:      cfg.DefaultStopPips,
					MinUnits:             cfg.MinUnits,
				}
			},
			func(prices service.Prices) *service.MarketData {
				return service.NewMarketData(prices)
			},
			func(broker service.Broker, market *service.MarketData, store *state.Store, trades *history.Trades, locks *service.InstrumentLocks, limits service.Limits) *service.Executor {
				return service.NewExecutor(broker, market, store, trades, locks, limits)
			},
			func(broker service.Broker, store *state.Store, trades *history.Trades, cfg *config.Config) *service.Monitor {
				return service.NewMonitor(broker, store, trades, cfg.MonitorInterval, cfg.MaxHoldTime)
			},
			func(broker service.Broker, store *state.Store, trades *history.Trades) *service.Closer {
				return service.NewCloser(broker, store, trades)
			},
			func(store *state.Store, cfg *config.Config) *service.DailyReset {
				return service.NewDailyReset(store, cfg.ResetTimezone)
			},
			func(executor *service.Executor, broker service.Broker, prices service.Prices, eng *strategy.Engine, store *state.Store, wl *config.Watchlist, cfg *config.Config, limits service.Limits) *service.Trader {
				return service.NewTrader(executor, broker, prices, eng, store, service.TraderConfig{
					Pairs:         wl.Pairs,
					Interval:      cfg.TradeInterval,
					MaxOpenTrades: cfg.MaxOpenTrades,
					ConfidenceMin: cfg.ConfidenceMin,
					RetryAttempts: cfg.RetryAttempts,
					RetryDelay:    cfg.RetryDelay,
					Limits:        limits,
				})
			},
		),
		// нотифаер появляется позже трейдера (телеграм зависит от него)
		fx.Invoke(func(trader *service.Trader, notifier service.Notifier) {
			trader.SetNotifier(notifier)
		}),
		fx.Invoke(func(lc fx.Lifecycle, trader *service.Trader, monitor *service.Monitor, reset *service.DailyReset, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go trader.Run(ctx)
					go monitor.Run(ctx)
					go reset.Run(ctx)
					return nil
				},
			})
		}),
	)
}
