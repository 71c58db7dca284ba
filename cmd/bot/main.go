package main

import (
	"context"
	"log"

	"forex_bot/internal/modules/config"
	"forex_bot/internal/modules/engine"
	"forex_bot/internal/modules/health"
	"forex_bot/internal/modules/history"
	"forex_bot/internal/modules/oanda_client"
	"forex_bot/internal/modules/postgres"
	"forex_bot/internal/modules/state"
	"forex_bot/internal/modules/strategy"
	telegram "forex_bot/internal/modules/telegram_bot"
	"forex_bot/pkg/logger"
	"forex_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return appCtx
			},
		),
		config.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
		postgres.Module(),
		state.Module(),
		oanda.Module(),
		strategy.Module(),
		history.Module(),
		engine.Module(),
		telegram.Module(),
		health.Module(),
	)

	app.Run()
	cancel()
}
