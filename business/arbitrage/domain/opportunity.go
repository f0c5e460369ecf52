// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Direction identifies which venue funds the buy leg and which the sell leg.
type Direction string

// NewDirection builds a direction label from the two venue names.
func NewDirection(buyExchange, sellExchange string) Direction {
	return Direction(buyExchange + "->" + sellExchange)
}

// Opportunity is a qualifying cross-venue spread, immutable once created.
// ID stays empty until the pipeline claims the opportunity for execution.
type Opportunity struct {
	ID           string
	Pair         exchange.Pair
	BuyExchange  string
	SellExchange string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	SpreadPct    decimal.Decimal
	Quantity     decimal.Decimal
	Direction    Direction
	Timestamp    time.Time
}

// GrossEdge returns the per-unit price difference in quote units.
func (o *Opportunity) GrossEdge() decimal.Decimal {
	return o.SellPrice.Sub(o.BuyPrice)
}

// Notional returns the buy-side trade value in quote units.
func (o *Opportunity) Notional() decimal.Decimal {
	return o.BuyPrice.Mul(o.Quantity)
}

// WithQuantity returns a copy carrying the executable quantity.
func (o Opportunity) WithQuantity(qty decimal.Decimal) Opportunity {
	o.Quantity = qty
	return o
}
