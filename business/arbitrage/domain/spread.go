package domain

import (
	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

var hundred = decimal.NewFromInt(100)

// Evaluate compares two quotes for the same pair and returns an Opportunity
// when the relative spread clears the threshold (in percent), or nil.
//
// The spread is always computed against the buy-side (lower) price:
//
//	spread_pct = (higher - lower) / lower * 100
//
// Equal or non-positive prices yield no opportunity. Evaluation is pure: the
// same quotes always produce the same result, and the arguments are
// order-insensitive apart from the buy/sell role swap.
func Evaluate(pair exchange.Pair, a, b exchange.Quote, threshold decimal.Decimal) *Opportunity {
	if !a.Price.IsPositive() || !b.Price.IsPositive() {
		return nil
	}
	if a.Price.Equal(b.Price) {
		return nil
	}

	buy, sell := a, b
	if buy.Price.GreaterThan(sell.Price) {
		buy, sell = sell, buy
	}

	spreadPct := sell.Price.Sub(buy.Price).Div(buy.Price).Mul(hundred)
	if spreadPct.LessThan(threshold) {
		return nil
	}

	ts := a.Timestamp
	if b.Timestamp.After(ts) {
		ts = b.Timestamp
	}

	return &Opportunity{
		Pair:         pair,
		BuyExchange:  buy.Exchange,
		SellExchange: sell.Exchange,
		BuyPrice:     buy.Price,
		SellPrice:    sell.Price,
		SpreadPct:    spreadPct,
		Direction:    NewDirection(buy.Exchange, sell.Exchange),
		Timestamp:    ts,
	}
}
