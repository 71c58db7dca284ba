package history

import (
	"context"

	"forex_bot/internal/modules/history/service"
	"forex_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("history",
		fx.Provide(
			func(manager *db.PgTxManager) *service.Trades {
				return service.NewTrades(manager)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, t *service.Trades) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return t.EnsureSchema(ctx)
				},
			})
		}),
	)
}
