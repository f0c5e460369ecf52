package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a venue's current price for a pair, in quote currency per unit of base.
type Quote struct {
	Exchange  string
	Pair      Pair
	Price     decimal.Decimal
	Timestamp time.Time
}

// NewQuote creates a Quote stamped with the current time.
func NewQuote(exchange string, pair Pair, price decimal.Decimal) Quote {
	return Quote{
		Exchange:  exchange,
		Pair:      pair,
		Price:     price,
		Timestamp: time.Now(),
	}
}

// Age returns how long ago the quote was observed.
func (q Quote) Age() time.Duration {
	return time.Since(q.Timestamp)
}

// IsValid reports whether the quote carries a usable price.
func (q Quote) IsValid() bool {
	return q.Price.IsPositive()
}
