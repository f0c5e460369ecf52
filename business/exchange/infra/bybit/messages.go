package bybit

import (
	"encoding/json"
	"fmt"
)

// envelope is the v5 API response wrapper. retCode zero means success.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// tickersResult is the /v5/market/tickers result.
type tickersResult struct {
	List []tickerEntry `json:"list"`
}

type tickerEntry struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Bid1Price string `json:"bid1Price"`
	Ask1Price string `json:"ask1Price"`
}

// walletBalanceResult is the /v5/account/wallet-balance result.
type walletBalanceResult struct {
	List []walletAccount `json:"list"`
}

type walletAccount struct {
	AccountType string       `json:"accountType"`
	Coins       []walletCoin `json:"coin"`
}

type walletCoin struct {
	Coin          string `json:"coin"`
	WalletBalance string `json:"walletBalance"`
	Locked        string `json:"locked"`
}

// instrumentsResult is the /v5/market/instruments-info result.
type instrumentsResult struct {
	List []instrumentEntry `json:"list"`
}

type instrumentEntry struct {
	Symbol        string        `json:"symbol"`
	Status        string        `json:"status"`
	LotSizeFilter lotSizeFilter `json:"lotSizeFilter"`
}

type lotSizeFilter struct {
	BasePrecision string `json:"basePrecision"`
	MinOrderQty   string `json:"minOrderQty"`
	MinOrderAmt   string `json:"minOrderAmt"`
}

// createOrderResult is the /v5/order/create result.
type createOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

// orderListResult is the /v5/order/realtime and /v5/order/history result.
type orderListResult struct {
	List []orderEntry `json:"list"`
}

type orderEntry struct {
	OrderID     string `json:"orderId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderStatus string `json:"orderStatus"`
	Qty         string `json:"qty"`
	CumExecQty  string `json:"cumExecQty"`
	AvgPrice    string `json:"avgPrice"`
	CreatedTime string `json:"createdTime"`
}

// APIError is a non-zero retCode response from the Bybit API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bybit API error %d: %s", e.Code, e.Message)
}
