package domain

import (
	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

// Sizer turns an available balance into an exchange-compliant order quantity.
// A zero result always means "do not trade", never an error.
type Sizer struct {
	AllocationRatio decimal.Decimal // Fraction of balance to deploy, e.g. 0.95
	Buffer          decimal.Decimal // Absolute amount held back, in funding units
	MaxNotional     decimal.Decimal // Per-trade value cap in quote units; zero = uncapped
}

// NewSizer creates a Sizer. A non-positive ratio defaults to 1 (use everything).
func NewSizer(allocationRatio, buffer, maxNotional decimal.Decimal) Sizer {
	if !allocationRatio.IsPositive() {
		allocationRatio = decimal.NewFromInt(1)
	}
	return Sizer{
		AllocationRatio: allocationRatio,
		Buffer:          buffer,
		MaxNotional:     maxNotional,
	}
}

// Size computes the order quantity in base units for one leg.
//
// balance is the funding asset's free balance: the quote asset for a buy, the
// base asset for a sell. The result is truncated to the venue's step (never
// rounded up, so the notional cannot exceed the usable balance) and clamped
// to zero when it would violate the venue's minimums.
func (s Sizer) Size(filter exchange.TradingFilter, balance, price decimal.Decimal, side exchange.Side) decimal.Decimal {
	if !price.IsPositive() || !balance.IsPositive() {
		return decimal.Zero
	}

	usable := balance.Mul(s.AllocationRatio).Sub(s.Buffer)
	if !usable.IsPositive() {
		return decimal.Zero
	}

	var raw decimal.Decimal
	if side == exchange.SideBuy {
		// usable is in quote units; cap applies directly.
		if s.MaxNotional.IsPositive() && usable.GreaterThan(s.MaxNotional) {
			usable = s.MaxNotional
		}
		raw = usable.Div(price)
	} else {
		// usable is in base units; convert the notional cap through price.
		if s.MaxNotional.IsPositive() {
			maxBase := s.MaxNotional.Div(price)
			if usable.GreaterThan(maxBase) {
				usable = maxBase
			}
		}
		raw = usable
	}

	qty := filter.TruncateQuantity(raw)
	if !filter.Validate(qty, price) {
		return decimal.Zero
	}

	return qty
}
