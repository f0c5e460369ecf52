// Package exchange implements the exchange bounded context: venue adapters
// behind a uniform port.
package exchange

import (
	"context"
	"time"

	"github.com/fd1az/crossarb/business/exchange/app"
	exchangeDI "github.com/fd1az/crossarb/business/exchange/di"
	"github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/business/exchange/infra/binance"
	"github.com/fd1az/crossarb/business/exchange/infra/bybit"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/monolith"
)

// Module implements the exchange bounded context.
type Module struct {
	binanceStream *binance.Stream
}

// RegisterServices registers all exchange services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Binance adapter - private dependency
	di.RegisterToken(c, exchangeDI.BinanceAdapter, func(sr di.ServiceRegistry) app.Adapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := binance.NewClient(binance.Config{
			BaseURL:      cfg.Binance.APIURL,
			APIKey:       cfg.Binance.APIKey,
			APISecret:    cfg.Binance.APISecret,
			RateLimitRPM: cfg.Binance.RateLimitRPM,
		}, log)
		if err != nil {
			panic("failed to create binance client: " + err.Error())
		}

		var stream *binance.Stream
		if cfg.Binance.EnableStream {
			stream = binance.NewStream(binance.StreamConfig{
				WebSocketURL: cfg.Binance.WebSocketURL,
				Symbols:      configuredSymbols(cfg),
				StaleTimeout: cfg.Binance.StaleTimeout,
			}, log)
			m.binanceStream = stream
		}

		return binance.NewAdapter(client, stream, log)
	})

	// Register Bybit adapter - private dependency
	di.RegisterToken(c, exchangeDI.BybitAdapter, func(sr di.ServiceRegistry) app.Adapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := bybit.NewClient(bybit.Config{
			BaseURL:      cfg.Bybit.APIURL,
			APIKey:       cfg.Bybit.APIKey,
			APISecret:    cfg.Bybit.APISecret,
			RateLimitRPM: cfg.Bybit.RateLimitRPM,
		}, log)
		if err != nil {
			panic("failed to create bybit client: " + err.Error())
		}

		return bybit.NewAdapter(client, log)
	})

	// Register Registry (public - exposed to other modules)
	di.RegisterToken(c, exchangeDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		registry := app.NewRegistry()
		registry.Register(exchangeDI.GetBinanceAdapter(sr))
		registry.Register(exchangeDI.GetBybitAdapter(sr))
		return registry
	})

	return nil
}

// Startup connects the Binance stream without blocking the rest of the app.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Force adapter construction so config errors surface at startup.
	registry := exchangeDI.GetRegistry(mono.Services())

	if m.binanceStream != nil {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := m.binanceStream.Connect(connectCtx); err != nil {
			log.Warn(ctx, "binance stream connection failed, will retry in background", "error", err)
			go m.retryStreamConnect(ctx, mono)
		}
	}

	log.Info(ctx, "exchange module started", "venues", registry.Names())
	return nil
}

func (m *Module) retryStreamConnect(ctx context.Context, mono monolith.Monolith) {
	log := mono.Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
			if err := m.binanceStream.Connect(ctx); err != nil {
				log.Warn(ctx, "binance stream retry failed", "error", err)
				continue
			}
			log.Info(ctx, "binance stream connected")
			return
		}
	}
}

// configuredSymbols maps the configured pairs to Binance stream symbols.
func configuredSymbols(cfg *config.Config) []string {
	symbols := make([]string, 0, len(cfg.Arbitrage.Pairs))
	for _, raw := range cfg.Arbitrage.Pairs {
		pair, err := domain.ParsePair(raw)
		if err != nil {
			continue
		}
		symbols = append(symbols, pair.Symbol())
	}
	return symbols
}
