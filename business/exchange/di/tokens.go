// Package di contains dependency injection tokens for the exchange context.
package di

import (
	"github.com/fd1az/crossarb/business/exchange/app"
	"github.com/fd1az/crossarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("exchange.Registry")
)

// Private dependency tokens - internal to exchange module
var (
	BinanceAdapter = di.NewToken[app.Adapter]("exchange:binanceAdapter")
	BybitAdapter   = di.NewToken[app.Adapter]("exchange:bybitAdapter")
)

// Helper functions for type-safe access
func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}

func GetBinanceAdapter(c di.ServiceRegistry) app.Adapter {
	return di.GetToken(c, BinanceAdapter)
}

func GetBybitAdapter(c di.ServiceRegistry) app.Adapter {
	return di.GetToken(c, BybitAdapter)
}
