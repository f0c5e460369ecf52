package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		step     string
		qty      string
		expected string
	}{
		{
			name:     "exact multiple of step",
			step:     "0.001",
			qty:      "1.250",
			expected: "1.25",
		},
		{
			name:     "rounds down to step",
			step:     "0.001",
			qty:      "1.2519",
			expected: "1.251",
		},
		{
			name:     "never rounds up",
			step:     "0.01",
			qty:      "0.0199",
			expected: "0.01",
		},
		{
			name:     "below one step truncates to zero",
			step:     "0.01",
			qty:      "0.0042",
			expected: "0",
		},
		{
			name:     "no step falls back to 8 decimals",
			step:     "0",
			qty:      "0.123456789123",
			expected: "0.12345678",
		},
		{
			name:     "negative clamps to zero",
			step:     "0.001",
			qty:      "-3",
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := TradingFilter{StepSize: decimal.RequireFromString(tt.step)}
			got := f.TruncateQuantity(decimal.RequireFromString(tt.qty))
			want := decimal.RequireFromString(tt.expected)
			if !got.Equal(want) {
				t.Errorf("TruncateQuantity(%s) = %s, want %s", tt.qty, got, want)
			}
		})
	}
}

func TestFilterValidate(t *testing.T) {
	f := TradingFilter{
		MinQuantity: decimal.RequireFromString("0.01"),
		MinNotional: decimal.RequireFromString("10"),
	}

	tests := []struct {
		name  string
		qty   string
		price string
		valid bool
	}{
		{"clears both minimums", "0.05", "2000", true},
		{"below min quantity", "0.005", "2000", false},
		{"below min notional", "0.01", "500", false},
		{"zero quantity", "0", "2000", false},
		{"exactly at minimums", "0.01", "1000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Validate(decimal.RequireFromString(tt.qty), decimal.RequireFromString(tt.price))
			if got != tt.valid {
				t.Errorf("Validate(%s, %s) = %v, want %v", tt.qty, tt.price, got, tt.valid)
			}
		})
	}
}
