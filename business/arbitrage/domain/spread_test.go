package domain

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	exchange "github.com/fd1az/crossarb/business/exchange/domain"
)

var testPair = exchange.Pair{Base: "ETH", Quote: "USDC"}

func quote(venue, price string) exchange.Quote {
	return exchange.Quote{
		Exchange: venue,
		Pair:     testPair,
		Price:    decimal.RequireFromString(price),
	}
}

func TestEvaluate(t *testing.T) {
	threshold := decimal.RequireFromString("0.5")

	tests := []struct {
		name      string
		priceA    string
		priceB    string
		buy       string
		sell      string
		spreadPct string
		none      bool
	}{
		{
			name:      "binance cheaper clears threshold",
			priceA:    "100.00",
			priceB:    "100.60",
			buy:       "binance",
			sell:      "bybit",
			spreadPct: "0.6",
		},
		{
			name:      "bybit cheaper clears threshold",
			priceA:    "100.60",
			priceB:    "100.00",
			buy:       "bybit",
			sell:      "binance",
			spreadPct: "0.6",
		},
		{
			name:   "equal prices",
			priceA: "100.00",
			priceB: "100.00",
			none:   true,
		},
		{
			name:   "spread below threshold",
			priceA: "100.00",
			priceB: "100.40",
			none:   true,
		},
		{
			name:      "spread exactly at threshold",
			priceA:    "100.00",
			priceB:    "100.50",
			buy:       "binance",
			sell:      "bybit",
			spreadPct: "0.5",
		},
		{
			name:   "zero price",
			priceA: "0",
			priceB: "100.00",
			none:   true,
		},
		{
			name:   "negative price",
			priceA: "-5",
			priceB: "100.00",
			none:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := quote("binance", tt.priceA)
			b := quote("bybit", tt.priceB)

			opp := Evaluate(testPair, a, b, threshold)
			if tt.none {
				if opp != nil {
					t.Fatalf("Evaluate returned %+v, want nil", opp)
				}
				return
			}
			if opp == nil {
				t.Fatal("Evaluate returned nil, want opportunity")
			}
			if opp.BuyExchange != tt.buy || opp.SellExchange != tt.sell {
				t.Errorf("direction = buy %s sell %s, want buy %s sell %s",
					opp.BuyExchange, opp.SellExchange, tt.buy, tt.sell)
			}
			if want := decimal.RequireFromString(tt.spreadPct); !opp.SpreadPct.Equal(want) {
				t.Errorf("SpreadPct = %s, want %s", opp.SpreadPct, want)
			}
			if opp.SpreadPct.IsNegative() {
				t.Error("SpreadPct must never be negative")
			}
		})
	}
}

func TestEvaluateSymmetric(t *testing.T) {
	threshold := decimal.RequireFromString("0.5")
	a := quote("binance", "3000.00")
	b := quote("bybit", "3021.00")

	ab := Evaluate(testPair, a, b, threshold)
	ba := Evaluate(testPair, b, a, threshold)

	if ab == nil || ba == nil {
		t.Fatal("expected opportunities in both argument orders")
	}
	if !ab.SpreadPct.Equal(ba.SpreadPct) {
		t.Errorf("spread differs by argument order: %s vs %s", ab.SpreadPct, ba.SpreadPct)
	}
	if ab.BuyExchange != ba.BuyExchange || ab.SellExchange != ba.SellExchange {
		t.Errorf("roles differ by argument order: %+v vs %+v", ab, ba)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	threshold := decimal.RequireFromString("0.5")
	a := quote("binance", "100.00")
	b := quote("bybit", "101.00")

	first := Evaluate(testPair, a, b, threshold)
	second := Evaluate(testPair, a, b, threshold)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
