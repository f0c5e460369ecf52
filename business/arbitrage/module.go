// Package arbitrage implements the arbitrage bounded context: spread
// detection, sizing and two-leg execution.
package arbitrage

import (
	"context"

	"github.com/fd1az/crossarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/crossarb/business/arbitrage/di"
	"github.com/fd1az/crossarb/business/arbitrage/domain"
	"github.com/fd1az/crossarb/business/arbitrage/infra"
	"github.com/fd1az/crossarb/business/arbitrage/infra/postgres"
	exchangeDI "github.com/fd1az/crossarb/business/exchange/di"
	exchange "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/monolith"
	"github.com/fd1az/crossarb/internal/notify"
)

// Module implements the arbitrage bounded context.
type Module struct {
	pgClient *postgres.Client
	pgStore  *postgres.Store
	done     chan struct{}
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Reporter fans out to the display reporter plus, when enabled, the
	// postgres reporter. The store is attached during Startup, before the
	// pipeline is first resolved.
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var reporters app.MultiReporter
		if cfg.Arbitrage.TUIMode {
			reporters = append(reporters, infra.NewTUIReporter())
		} else {
			reporters = append(reporters, infra.NewConsoleReporter())
		}
		if m.pgStore != nil {
			reporters = append(reporters, infra.NewPostgresReporter(m.pgStore, log))
		}
		return reporters
	})

	di.RegisterToken(c, arbitrageDI.Cooldown, func(sr di.ServiceRegistry) *app.Cooldown {
		cfg := sr.Get("config").(*config.Config)
		return app.NewCooldown(cfg.Arbitrage.Cooldown)
	})

	di.RegisterToken(c, arbitrageDI.Executor, func(sr di.ServiceRegistry) *app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		notifier := sr.Get("notifier").(*notify.Notifier)
		instruments := sr.Get("instruments").(*metrics.Instruments)

		return app.NewExecutor(
			exchangeDI.GetRegistry(sr),
			notifier,
			instruments,
			app.ExecutorConfig{
				FillPollAttempts: cfg.Arbitrage.FillPollAttempts,
				FillPollInterval: cfg.Arbitrage.FillPollInterval,
				DryRun:           cfg.Arbitrage.DryRun,
			},
			log,
		)
	})

	di.RegisterToken(c, arbitrageDI.Pipeline, func(sr di.ServiceRegistry) *app.Pipeline {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		instruments := sr.Get("instruments").(*metrics.Instruments)

		sizer := domain.NewSizer(
			cfg.Arbitrage.AllocationRatioDecimal(),
			cfg.Arbitrage.TradeBufferDecimal(),
			cfg.Arbitrage.MaxNotionalDecimal(),
		)

		return app.NewPipeline(
			exchangeDI.GetBinanceAdapter(sr),
			exchangeDI.GetBybitAdapter(sr),
			sizer,
			arbitrageDI.GetCooldown(sr),
			arbitrageDI.GetExecutor(sr),
			arbitrageDI.GetReporter(sr),
			instruments,
			app.PipelineConfig{
				Pairs:           configuredPairs(cfg),
				SpreadThreshold: cfg.Arbitrage.SpreadThresholdDecimal(),
				PollInterval:    cfg.Arbitrage.PollInterval,
				Workers:         cfg.Arbitrage.Workers,
				FilterTTL:       cfg.Arbitrage.FilterTTL,
			},
			log,
		)
	})

	return nil
}

// Startup wires persistence, starts the reporter and launches the scan loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return err
		}
		if err := client.RunMigrations(ctx); err != nil {
			client.Close()
			return err
		}
		m.pgClient = client
		m.pgStore = postgres.NewStore(client.Pool())
		log.Info(ctx, "postgres persistence enabled")
	}

	pipeline := arbitrageDI.GetPipeline(mono.Services())
	reporter := arbitrageDI.GetReporter(mono.Services())
	if err := reporter.Start(ctx); err != nil {
		return err
	}

	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		_ = pipeline.Run(ctx)
		_ = reporter.Stop()
		if m.pgClient != nil {
			m.pgClient.Close()
		}
	}()

	log.Info(ctx, "arbitrage module started",
		"dry_run", cfg.Arbitrage.DryRun,
		"pairs", len(cfg.Arbitrage.Pairs),
	)
	return nil
}

// HealthCheck reports persistence connectivity for the health endpoint.
func (m *Module) HealthCheck(ctx context.Context) (bool, string) {
	if m.pgClient == nil {
		return true, "persistence disabled"
	}
	if err := m.pgClient.Ping(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Wait blocks until the scan loop has fully stopped.
func (m *Module) Wait() {
	if m.done != nil {
		<-m.done
	}
}

// configuredPairs parses the configured pair strings, dropping invalid entries.
func configuredPairs(cfg *config.Config) []exchange.Pair {
	pairs := make([]exchange.Pair, 0, len(cfg.Arbitrage.Pairs))
	for _, raw := range cfg.Arbitrage.Pairs {
		pair, err := exchange.ParsePair(raw)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
