package config

import (
	"os"

	"forex_bot/internal/helper"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Watchlist — торгуемые пары из YAML-файла.
type Watchlist struct {
	Pairs []string `yaml:"pairs"`
}

var defaultPairs = []string{
	"EUR_USD", "GBP_USD", "USD_JPY", "AUD_USD", "USD_CAD", "USD_CHF", "NZD_USD",
}

func NewWatchlist(cfg *Config) (*Watchlist, error) {
	data, err := os.ReadFile(cfg.PairsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &Watchlist{Pairs: append([]string(nil), defaultPairs...)}, nil
		}
		return nil, errors.Wrap(err, "read pairs file")
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, errors.Wrap(err, "parse pairs file")
	}
	if len(wl.Pairs) == 0 {
		wl.Pairs = append([]string(nil), defaultPairs...)
	}
	for i, p := range wl.Pairs {
		wl.Pairs[i] = helper.NormPair(p)
	}
	return &wl, nil
}
