// Package domain contains the core domain types for the exchange context.
package domain

import (
	"fmt"
	"strings"
)

// Pair represents a trading pair, e.g. ETH/USDC.
type Pair struct {
	Base  string // e.g. ETH
	Quote string // e.g. USDC
}

// ParsePair parses a "BASE/QUOTE" string.
func ParsePair(s string) (Pair, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return Pair{}, fmt.Errorf("invalid pair %q: expected BASE/QUOTE", s)
	}
	return Pair{
		Base:  strings.ToUpper(strings.TrimSpace(base)),
		Quote: strings.ToUpper(strings.TrimSpace(quote)),
	}, nil
}

// String returns the canonical pair notation (e.g. "ETH/USDC").
func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// Symbol returns the concatenated symbol most venues use (e.g. "ETHUSDC").
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

// IsZero reports whether the pair is unset.
func (p Pair) IsZero() bool {
	return p.Base == "" && p.Quote == ""
}
