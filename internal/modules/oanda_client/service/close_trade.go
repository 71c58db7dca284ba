package service

import (
	"context"
	"fmt"
	"net/http"

	"forex_bot/internal/models"
)

// CloseTrade закрывает трейд целиком по рынку.
func (c *Client) CloseTrade(ctx context.Context, tradeID string) (*models.CloseResult, error) {
	var resp tradeCloseResponse
	status, err := c.doJSON(ctx, http.MethodPut, c.accountPath("/trades/"+tradeID+"/close"), nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("close trade %s: %s", tradeID, resp.ErrorMessage)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("close trade %s: http %d", tradeID, status)
	}

	out := &models.CloseResult{TradeID: tradeID}
	if fill := resp.OrderFillTransaction; fill != nil {
		out.ExitPrice = parseFloat(fill.Price)
		out.RealizedPL = parseFloat(fill.PL)
		for _, tc := range fill.TradesClosed {
			if tc.TradeID == tradeID {
				out.ExitPrice = parseFloat(tc.Price)
				out.RealizedPL = parseFloat(tc.RealizedPL)
			}
		}
	}
	return out, nil
}
