package service

import (
	"context"
	"fmt"
	"net/http"

	"forex_bot/internal/models"
)

func (c *Client) AccountSummary(ctx context.Context) (*models.AccountSummary, error) {
	var resp accountSummaryResponse
	status, err := c.doJSON(ctx, http.MethodGet, c.accountPath("/summary"), nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("account summary: %s", resp.ErrorMessage)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("account summary: http %d", status)
	}

	return &models.AccountSummary{
		Balance:      parseFloat(resp.Account.Balance),
		UnrealizedPL: parseFloat(resp.Account.UnrealizedPL),
		MarginUsed:   parseFloat(resp.Account.MarginUsed),
		OpenTrades:   resp.Account.OpenTradeCnt,
		Currency:     resp.Account.Currency,
	}, nil
}

func (c *Client) OpenTrades(ctx context.Context) ([]models.BrokerTrade, error) {
	var resp openTradesResponse
	status, err := c.doJSON(ctx, http.MethodGet, c.accountPath("/openTrades"), nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("open trades: %s", resp.ErrorMessage)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("open trades: http %d", status)
	}

	out := make([]models.BrokerTrade, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		out = append(out, models.BrokerTrade{
			TradeID:      t.ID,
			Instrument:   t.Instrument,
			Units:        parseUnits(t.CurrentUnits),
			EntryPrice:   parseFloat(t.Price),
			UnrealizedPL: parseFloat(t.UnrealizedPL),
			OpenedAt:     parseTime(t.OpenTime),
		})
	}
	return out, nil
}

func (c *Client) OpenPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	var resp openPositionsResponse
	status, err := c.doJSON(ctx, http.MethodGet, c.accountPath("/openPositions"), nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("open positions: %s", resp.ErrorMessage)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("open positions: http %d", status)
	}

	out := make([]models.BrokerPosition, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		out = append(out, models.BrokerPosition{
			Instrument:  p.Instrument,
			LongUnits:   parseUnits(p.Long.Units),
			LongTrades:  p.Long.TradeIDs,
			ShortUnits:  parseUnits(p.Short.Units),
			ShortTrades: p.Short.TradeIDs,
		})
	}
	return out, nil
}
