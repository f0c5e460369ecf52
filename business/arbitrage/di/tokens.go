// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Pipeline = di.NewToken[*app.Pipeline]("arbitrage.Pipeline")
)

// Private dependency tokens - internal to arbitrage module
var (
	Executor = di.NewToken[*app.Executor]("arbitrage:executor")
	Reporter = di.NewToken[app.Reporter]("arbitrage:reporter")
	Cooldown = di.NewToken[*app.Cooldown]("arbitrage:cooldown")
)

// Helper functions for type-safe access
func GetPipeline(c di.ServiceRegistry) *app.Pipeline {
	return di.GetToken(c, Pipeline)
}

func GetExecutor(c di.ServiceRegistry) *app.Executor {
	return di.GetToken(c, Executor)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetCooldown(c di.ServiceRegistry) *app.Cooldown {
	return di.GetToken(c, Cooldown)
}
