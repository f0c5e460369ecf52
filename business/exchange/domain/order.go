package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the side of a trade (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderStatus is the venue-reported lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// IsTerminal reports whether the order can no longer fill.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusRejected
}

// OrderRequest describes a market order to submit.
type OrderRequest struct {
	Pair     Pair
	Side     Side
	Quantity decimal.Decimal // Base units
}

// Order is a venue's view of a submitted order.
type Order struct {
	ID          string
	Exchange    string
	Pair        Pair
	Side        Side
	Quantity    decimal.Decimal // Requested, in base units
	FilledQty   decimal.Decimal
	AvgPrice    decimal.Decimal // Average fill price, zero until fills arrive
	Status      OrderStatus
	SubmittedAt time.Time
}

// IsFilled reports whether the order filled completely.
func (o *Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}
