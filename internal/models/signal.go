package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

type Direction string

const (
	DirectionNone Direction = ""
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Signal — свежий сигнал одного цикла; никогда не персистится,
// только его отпечаток попадает в recent_signals.
type Signal struct {
	Instrument string
	Direction  Direction
	Confidence float64
	Price      float64
	Reason     string
}

// SignedUnits переводит размер в подписанные юниты брокера:
// плюс для buy, минус для sell.
func (s Signal) SignedUnits(size int) int {
	if s.Direction == DirectionSell {
		return -size
	}
	return size
}

// Fingerprint — детерминированный sha256 по отсортированным полям сигнала.
// Одинаковый сигнал, посчитанный дважды за цикл, даёт одинаковый хеш.
func (s Signal) Fingerprint() string {
	fields := map[string]string{
		"instrument": s.Instrument,
		"direction":  string(s.Direction),
		"confidence": fmt.Sprintf("%.4f", s.Confidence),
		"price":      fmt.Sprintf("%.5f", s.Price),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
