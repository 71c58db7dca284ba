package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"forex_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestDiagnosticsMessage(t *testing.T) {
	tg := &Telegram{}

	logger.Error("candles fetch failed for EUR_USD: timeout")
	msg := tg.diagnosticsMessage()
	assert.True(t, strings.HasPrefix(msg, "🩺 *Diagnostics*"))
	assert.Contains(t, msg, "candles fetch failed for EUR_USD: timeout")
	assert.Contains(t, msg, "```")
}
