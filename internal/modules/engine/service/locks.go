package service

import "sync"

// InstrumentLocks — эксклюзивный лок на инструмент с неблокирующим
// try-acquire: второй сигнал по тому же инструменту отбрасывается,
// а не встаёт в очередь. Явная структура, не глобальная мапа.
type InstrumentLocks struct {
	mu         sync.Mutex
	inProgress map[string]bool
}

func NewInstrumentLocks() *InstrumentLocks {
	return &InstrumentLocks{
		inProgress: make(map[string]bool),
	}
}

// TryAcquire — true, если лок взят; false, если исполнение уже идёт.
func (l *InstrumentLocks) TryAcquire(instrument string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inProgress[instrument] {
		return false
	}
	l.inProgress[instrument] = true
	return true
}

func (l *InstrumentLocks) Release(instrument string) {
	l.mu.Lock()
	delete(l.inProgress, instrument)
	l.mu.Unlock()
}

func (l *InstrumentLocks) Held(instrument string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inProgress[instrument]
}
