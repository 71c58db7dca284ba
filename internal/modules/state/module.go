package state

import (
	"context"

	"forex_bot/internal/modules/config"
	"forex_bot/internal/modules/state/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(
			func(cfg *config.Config) (*service.Store, error) {
				return service.NewStore(service.Config{
					File:           cfg.StateFile,
					BackupDir:      cfg.BackupDir,
					BackupInterval: cfg.BackupInterval,
					MaxBackups:     cfg.MaxBackups,
				})
			},
		),
		// фоновый writer живёт весь аптайм приложения
		fx.Invoke(func(lc fx.Lifecycle, s *service.Store, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go s.RunWriter(ctx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					return s.Flush()
				},
			})
		}),
	)
}
