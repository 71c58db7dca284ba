package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	state "forex_bot/internal/modules/state/service"
	"forex_bot/pkg/logger"
)

const feedInterval = 5 * time.Second

// Feed раздаёт снимки состояния бота по вебсокету (для дашборда).
type Feed struct {
	store    *state.Store
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewFeed(store *state.Store) *Feed {
	return &Feed{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (f *Feed) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: апгрейд не удался: %v", err)
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	// читатель нужен только чтобы заметить закрытие со стороны клиента
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.drop(conn)
				return
			}
		}
	}()
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	if _, ok := f.conns[conn]; ok {
		delete(f.conns, conn)
		_ = conn.Close()
	}
	f.mu.Unlock()
}

// Run рассылает снимок всем подключённым раз в feedInterval.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case <-ticker.C:
			f.broadcast()
		}
	}
}

func (f *Feed) broadcast() {
	f.mu.Lock()
	if len(f.conns) == 0 {
		f.mu.Unlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(f.conns))
	for c := range f.conns {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	snapshot := f.store.Snapshot()
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		logger.Error("ws: сериализация снимка не удалась: %v", err)
		return
	}

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(3 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.drop(c)
		}
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	for c := range f.conns {
		_ = c.Close()
	}
	f.conns = make(map[*websocket.Conn]struct{})
	f.mu.Unlock()
}
