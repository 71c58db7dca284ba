package oanda

import (
	"forex_bot/internal/modules/config"
	"forex_bot/internal/modules/oanda_client/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("oanda",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(service.Config{
					APIKey:      cfg.Oanda.APIKey,
					AccountID:   cfg.Oanda.AccountID,
					Environment: cfg.Oanda.Environment,
				})
			},
		),
	)
}
