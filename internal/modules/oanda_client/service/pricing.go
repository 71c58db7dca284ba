package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"forex_bot/internal/helper"
	"forex_bot/internal/models"
)

// CurrentSpread — текущий спред bid/ask в пипсах.
func (c *Client) CurrentSpread(ctx context.Context, instrument string) (float64, error) {
	bid, ask, err := c.CurrentPrice(ctx, instrument)
	if err != nil {
		return 0, err
	}
	return helper.PriceToPips(instrument, ask-bid), nil
}

func (c *Client) CurrentPrice(ctx context.Context, instrument string) (bid, ask float64, err error) {
	path := c.accountPath("/pricing") + "?instruments=" + url.QueryEscape(instrument)

	var resp pricingResponse
	status, err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return 0, 0, err
	}
	if resp.ErrorMessage != "" {
		return 0, 0, fmt.Errorf("pricing %s: %s", instrument, resp.ErrorMessage)
	}
	if status/100 != 2 {
		return 0, 0, fmt.Errorf("pricing %s: http %d", instrument, status)
	}
	if len(resp.Prices) == 0 || len(resp.Prices[0].Bids) == 0 || len(resp.Prices[0].Asks) == 0 {
		return 0, 0, fmt.Errorf("pricing %s: empty quote", instrument)
	}

	p := resp.Prices[0]
	bid = parseFloat(p.Bids[0].Price)
	ask = parseFloat(p.Asks[0].Price)
	if bid <= 0 || ask <= 0 {
		return 0, 0, fmt.Errorf("pricing %s: bad quote bid=%.6f ask=%.6f", instrument, bid, ask)
	}
	return bid, ask, nil
}

// Candles — исторические свечи (mid) для индикаторов.
func (c *Client) Candles(ctx context.Context, instrument string, count int, granularity string) ([]models.Candle, error) {
	path := "/v3/instruments/" + url.PathEscape(instrument) + "/candles" +
		"?count=" + strconv.Itoa(count) +
		"&granularity=" + url.QueryEscape(granularity) +
		"&price=M"

	var resp candlesResponse
	status, err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("candles %s: %s", instrument, resp.ErrorMessage)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("candles %s: http %d", instrument, status)
	}

	out := make([]models.Candle, 0, len(resp.Candles))
	for _, rc := range resp.Candles {
		if !rc.Complete {
			continue
		}
		out = append(out, models.Candle{
			Time:   parseTime(rc.Time),
			Open:   parseFloat(rc.Mid.O),
			High:   parseFloat(rc.Mid.H),
			Low:    parseFloat(rc.Mid.L),
			Close:  parseFloat(rc.Mid.C),
			Volume: rc.Volume,
		})
	}
	return out, nil
}
