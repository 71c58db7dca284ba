package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"forex_bot/internal/modules/config"
	engine "forex_bot/internal/modules/engine/service"
	"forex_bot/internal/modules/health/service"
	state "forex_bot/internal/modules/state/service"
)

func NewMux(hs *service.State, store *state.Store, trader *engine.Trader, feed *Feed) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: циклы запущены, стейт загружен
		if !hs.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		st := store.Snapshot()
		resp := map[string]any{
			"ready":       hs.Ready(),
			"uptimeSec":   int64(hs.Uptime().Seconds()),
			"openTrades":  len(st.OpenTrades),
			"tradesToday": st.TradesToday,
			"lastCycleUnix": func() int64 {
				t := trader.LastCycleTime()
				if t.IsZero() {
					return 0
				}
				return t.Unix()
			}(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/ws", feed.Handle)

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, mux *http.ServeMux, hs *service.State, feed *Feed, appCtx context.Context) {
	srv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.HealthAddr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			go feed.Run(appCtx)
			hs.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hs.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewFeed,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
