package service

// Сырые ответы OANDA v20. Все числа приходят строками.

type orderCreateResponse struct {
	OrderFillTransaction *struct {
		Price       string `json:"price"`
		TradeOpened *struct {
			TradeID string `json:"tradeID"`
			Units   string `json:"units"`
		} `json:"tradeOpened"`
	} `json:"orderFillTransaction"`
	OrderCancelTransaction *struct {
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
	ErrorMessage string `json:"errorMessage"`
}

type tradeCloseResponse struct {
	OrderFillTransaction *struct {
		Price        string `json:"price"`
		PL           string `json:"pl"`
		TradesClosed []struct {
			TradeID    string `json:"tradeID"`
			RealizedPL string `json:"realizedPL"`
			Price      string `json:"price"`
		} `json:"tradesClosed"`
	} `json:"orderFillTransaction"`
	ErrorMessage string `json:"errorMessage"`
}

type openTradesResponse struct {
	Trades []struct {
		ID           string `json:"id"`
		Instrument   string `json:"instrument"`
		CurrentUnits string `json:"currentUnits"`
		Price        string `json:"price"`
		UnrealizedPL string `json:"unrealizedPL"`
		OpenTime     string `json:"openTime"`
	} `json:"trades"`
	ErrorMessage string `json:"errorMessage"`
}

type openPositionsResponse struct {
	Positions []struct {
		Instrument string       `json:"instrument"`
		Long       positionSide `json:"long"`
		Short      positionSide `json:"short"`
	} `json:"positions"`
	ErrorMessage string `json:"errorMessage"`
}

type positionSide struct {
	Units    string   `json:"units"`
	TradeIDs []string `json:"tradeIDs"`
}

type accountSummaryResponse struct {
	Account struct {
		Balance      string `json:"balance"`
		UnrealizedPL string `json:"unrealizedPL"`
		MarginUsed   string `json:"marginUsed"`
		OpenTradeCnt int    `json:"openTradeCount"`
		Currency     string `json:"currency"`
	} `json:"account"`
	ErrorMessage string `json:"errorMessage"`
}

type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Bids       []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
	ErrorMessage string `json:"errorMessage"`
}

type candlesResponse struct {
	Candles []struct {
		Time     string  `json:"time"`
		Complete bool    `json:"complete"`
		Volume   float64 `json:"volume"`
		Mid      struct {
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
		} `json:"mid"`
	} `json:"candles"`
	ErrorMessage string `json:"errorMessage"`
}
