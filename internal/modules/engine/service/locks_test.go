package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentLocks(t *testing.T) {
	locks := NewInstrumentLocks()

	assert.True(t, locks.TryAcquire("EUR_USD"))
	assert.False(t, locks.TryAcquire("EUR_USD"))
	assert.True(t, locks.Held("EUR_USD"))

	// другой инструмент не задет
	assert.True(t, locks.TryAcquire("USD_JPY"))

	locks.Release("EUR_USD")
	assert.False(t, locks.Held("EUR_USD"))
	assert.True(t, locks.TryAcquire("EUR_USD"))
}

func TestInstrumentLocksConcurrent(t *testing.T) {
	locks := NewInstrumentLocks()

	const goroutines = 50
	var acquired int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.TryAcquire("GBP_USD") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired)
}
