package domain

import "github.com/shopspring/decimal"

// defaultPrecision bounds truncation when a venue reports no step size.
const defaultPrecision = 8

// TradingFilter holds a venue's order constraints for one pair.
type TradingFilter struct {
	Pair        Pair
	MinQuantity decimal.Decimal // Smallest order size, in base units
	MinNotional decimal.Decimal // Smallest order value, in quote units
	StepSize    decimal.Decimal // Quantity increment; zero means precision-only
}

// TruncateQuantity rounds qty down to the venue's step size. Rounding is
// always toward zero: rounding up could exceed the funded amount.
func (f TradingFilter) TruncateQuantity(qty decimal.Decimal) decimal.Decimal {
	if qty.IsNegative() {
		return decimal.Zero
	}
	if f.StepSize.IsPositive() {
		return qty.Div(f.StepSize).Floor().Mul(f.StepSize)
	}
	return qty.RoundDown(defaultPrecision)
}

// Validate reports whether an order of qty at price clears the venue minimums.
func (f TradingFilter) Validate(qty, price decimal.Decimal) bool {
	if !qty.IsPositive() {
		return false
	}
	if f.MinQuantity.IsPositive() && qty.LessThan(f.MinQuantity) {
		return false
	}
	if f.MinNotional.IsPositive() && qty.Mul(price).LessThan(f.MinNotional) {
		return false
	}
	return true
}
