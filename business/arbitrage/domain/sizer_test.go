package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

func testFilter(minQty, minNotional, step string) exchange.TradingFilter {
	return exchange.TradingFilter{
		Pair:        testPair,
		MinQuantity: decimal.RequireFromString(minQty),
		MinNotional: decimal.RequireFromString(minNotional),
		StepSize:    decimal.RequireFromString(step),
	}
}

func TestSizerSize(t *testing.T) {
	tests := []struct {
		name    string
		ratio   string
		buffer  string
		cap     string
		filter  exchange.TradingFilter
		balance string
		price   string
		side    exchange.Side
		want    string
	}{
		{
			name:    "buy capped by max notional",
			ratio:   "0.95",
			buffer:  "1",
			cap:     "500",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "1000",
			price:   "100",
			side:    exchange.SideBuy,
			want:    "5", // usable 949 capped to 500, 500/100
		},
		{
			name:    "buy uncapped uses allocation",
			ratio:   "0.95",
			buffer:  "1",
			cap:     "0",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "1000",
			price:   "100",
			side:    exchange.SideBuy,
			want:    "9.49",
		},
		{
			name:    "below min notional skips",
			ratio:   "1",
			buffer:  "0",
			cap:     "0",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "5",
			price:   "50",
			side:    exchange.SideBuy,
			want:    "0", // 0.1 units at 50 = 5 < min notional 10
		},
		{
			name:    "below min quantity skips",
			ratio:   "1",
			buffer:  "0",
			cap:     "0",
			filter:  testFilter("0.5", "1", "0.1"),
			balance: "20",
			price:   "100",
			side:    exchange.SideBuy,
			want:    "0", // 0.2 units < min qty 0.5
		},
		{
			name:    "zero balance",
			ratio:   "0.95",
			buffer:  "1",
			cap:     "500",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "0",
			price:   "100",
			side:    exchange.SideBuy,
			want:    "0",
		},
		{
			name:    "zero price",
			ratio:   "0.95",
			buffer:  "1",
			cap:     "500",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "1000",
			price:   "0",
			side:    exchange.SideBuy,
			want:    "0",
		},
		{
			name:    "buffer exceeds balance",
			ratio:   "1",
			buffer:  "100",
			cap:     "0",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "50",
			price:   "100",
			side:    exchange.SideBuy,
			want:    "0",
		},
		{
			name:    "sell uses base balance directly",
			ratio:   "1",
			buffer:  "0",
			cap:     "0",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "2.5",
			price:   "100",
			side:    exchange.SideSell,
			want:    "2.5",
		},
		{
			name:    "sell capped by notional through price",
			ratio:   "1",
			buffer:  "0",
			cap:     "100",
			filter:  testFilter("0.001", "10", "0.001"),
			balance: "5",
			price:   "50",
			side:    exchange.SideSell,
			want:    "2", // cap 100 / price 50
		},
		{
			name:    "truncates to step",
			ratio:   "1",
			buffer:  "0",
			cap:     "0",
			filter:  testFilter("0.001", "10", "0.01"),
			balance: "1000",
			price:   "3",
			side:    exchange.SideBuy,
			want:    "333.33", // 333.333... floored to step 0.01
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizer := NewSizer(
				decimal.RequireFromString(tt.ratio),
				decimal.RequireFromString(tt.buffer),
				decimal.RequireFromString(tt.cap),
			)
			got := sizer.Size(
				tt.filter,
				decimal.RequireFromString(tt.balance),
				decimal.RequireFromString(tt.price),
				tt.side,
			)
			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Errorf("Size() = %s, want %s", got, want)
			}
		})
	}
}

func TestSizerNotionalNeverExceedsUsable(t *testing.T) {
	sizer := NewSizer(
		decimal.RequireFromString("0.95"),
		decimal.RequireFromString("1"),
		decimal.Zero,
	)
	filter := testFilter("0.001", "10", "0.007")

	balances := []string{"100", "537.21", "1000", "99999.99"}
	prices := []string{"0.37", "41.5", "3000"}

	for _, b := range balances {
		for _, p := range prices {
			balance := decimal.RequireFromString(b)
			price := decimal.RequireFromString(p)

			qty := sizer.Size(filter, balance, price, exchange.SideBuy)
			usable := balance.Mul(sizer.AllocationRatio).Sub(sizer.Buffer)
			if qty.Mul(price).GreaterThan(usable) {
				t.Errorf("balance %s price %s: notional %s exceeds usable %s",
					b, p, qty.Mul(price), usable)
			}
		}
	}
}

func TestNewSizerDefaultsRatio(t *testing.T) {
	s := NewSizer(decimal.Zero, decimal.Zero, decimal.Zero)
	if !s.AllocationRatio.Equal(decimal.NewFromInt(1)) {
		t.Errorf("AllocationRatio = %s, want 1", s.AllocationRatio)
	}
}
