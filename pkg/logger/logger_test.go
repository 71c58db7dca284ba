package logger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func resetRecent() {
	recentMu.Lock()
	recentErrors = nil
	recentMu.Unlock()
}

func TestLastErrorsKeepsTail(t *testing.T) {
	resetRecent()

	for i := 0; i < recentErrorsKeep+5; i++ {
		Error("broker call failed #%d", i)
	}

	errs := LastErrors()
	require.Len(t, errs, recentErrorsKeep)
	// остаётся только хвост, свежие записи в конце
	assert.True(t, strings.HasSuffix(errs[0], "broker call failed #5"))
	assert.True(t, strings.HasSuffix(errs[len(errs)-1], fmt.Sprintf("broker call failed #%d", recentErrorsKeep+4)))
}

func TestLastErrorsEmptyAndIsolated(t *testing.T) {
	resetRecent()
	assert.Empty(t, LastErrors())

	Error("state write failed")
	errs := LastErrors()
	require.Len(t, errs, 1)

	// копия не связана с внутренним кольцом
	errs[0] = "mutated"
	assert.NotEqual(t, "mutated", LastErrors()[0])
}
