// Package app contains application services and port definitions for the exchange context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/exchange/domain"
)

// Adapter is the uniform interface the arbitrage engine uses to talk to a venue.
// Implementations translate venue-specific symbols, endpoints and payloads.
type Adapter interface {
	// Name returns the venue identifier (e.g. "binance").
	Name() string

	// FetchPrice returns the venue's current price for pair.
	FetchPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error)

	// GetBalance returns the free balance of a single asset (e.g. "USDC").
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)

	// GetTradingFilters returns the venue's order constraints for pair.
	GetTradingFilters(ctx context.Context, pair domain.Pair) (*domain.TradingFilter, error)

	// SubmitOrder places a market order and returns the venue's acknowledgement.
	// The returned order may not be filled yet; use PollOrder to confirm.
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)

	// PollOrder returns the current state of a previously submitted order.
	PollOrder(ctx context.Context, pair domain.Pair, orderID string) (*domain.Order, error)
}
