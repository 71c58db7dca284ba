package service

import (
	"context"
	"net/http"
	"strconv"

	"forex_bot/internal/models"
)

type orderRequest struct {
	Order orderBody `json:"order"`
}

type orderBody struct {
	Instrument   string      `json:"instrument"`
	Units        string      `json:"units"`
	Type         string      `json:"type"`
	PositionFill string      `json:"positionFill"`
	StopLoss     *priceLevel `json:"stopLossOnFill,omitempty"`
	TakeProfit   *priceLevel `json:"takeProfitOnFill,omitempty"`
}

type priceLevel struct {
	Price string `json:"price"`
}

// PlaceOrder отправляет рыночный ордер с подписанными юнитами
// (плюс — buy, минус — sell). Транспортная ошибка = "брокер не ответил":
// вернётся nil-результат и err.
func (c *Client) PlaceOrder(
	ctx context.Context,
	instrument string,
	units int,
	stopLoss, takeProfit float64,
) (*models.OrderResult, error) {

	body := orderRequest{
		Order: orderBody{
			Instrument:   instrument,
			Units:        strconv.Itoa(units),
			Type:         "MARKET",
			PositionFill: "DEFAULT",
		},
	}
	if stopLoss > 0 {
		body.Order.StopLoss = &priceLevel{Price: formatPrice(instrument, stopLoss)}
	}
	if takeProfit > 0 {
		body.Order.TakeProfit = &priceLevel{Price: formatPrice(instrument, takeProfit)}
	}

	var resp orderCreateResponse
	if _, err := c.doJSON(ctx, http.MethodPost, c.accountPath("/orders"), body, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorMessage != "" {
		return &models.OrderResult{ErrorMessage: resp.ErrorMessage}, nil
	}
	if resp.OrderCancelTransaction != nil {
		return &models.OrderResult{ErrorMessage: resp.OrderCancelTransaction.Reason}, nil
	}

	out := &models.OrderResult{}
	if fill := resp.OrderFillTransaction; fill != nil {
		out.FillPrice, _ = strconv.ParseFloat(fill.Price, 64)
		if fill.TradeOpened != nil {
			out.TradeID = fill.TradeOpened.TradeID
		}
	}
	return out, nil
}
