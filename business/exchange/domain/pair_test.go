package domain

import "testing"

func TestParsePair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		base    string
		quote   string
		wantErr bool
	}{
		{"simple pair", "ETH/USDC", "ETH", "USDC", false},
		{"lowercase normalized", "eth/usdc", "ETH", "USDC", false},
		{"whitespace trimmed", " BTC / USDT ", "BTC", "USDT", false},
		{"missing separator", "ETHUSDC", "", "", true},
		{"missing quote", "ETH/", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePair(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePair(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePair(%q): %v", tt.input, err)
			}
			if p.Base != tt.base || p.Quote != tt.quote {
				t.Errorf("ParsePair(%q) = %s/%s, want %s/%s", tt.input, p.Base, p.Quote, tt.base, tt.quote)
			}
		})
	}
}

func TestPairSymbol(t *testing.T) {
	p := Pair{Base: "ETH", Quote: "USDC"}
	if got := p.Symbol(); got != "ETHUSDC" {
		t.Errorf("Symbol() = %q, want ETHUSDC", got)
	}
	if got := p.String(); got != "ETH/USDC" {
		t.Errorf("String() = %q, want ETH/USDC", got)
	}
}
