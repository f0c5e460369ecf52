// Package main is the entry point for the cross-exchange arbitrage bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/crossarb/business/arbitrage"
	"github.com/fd1az/crossarb/business/exchange"
	exchangeApp "github.com/fd1az/crossarb/business/exchange/app"
	exchangeDI "github.com/fd1az/crossarb/business/exchange/di"
	exchangeDomain "github.com/fd1az/crossarb/business/exchange/domain"
	"github.com/fd1az/crossarb/internal/apm"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/health"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/monolith"
	"github.com/fd1az/crossarb/internal/notify"
	"github.com/fd1az/crossarb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crossarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, cancel, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Arbitrage.TUIMode = tuiMode

	// In TUI mode logs would corrupt the display, so they are discarded.
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
		log.Info(ctx, "starting cross-exchange arbitrage bot",
			"version", version,
			"environment", cfg.App.Environment,
			"dry_run", cfg.Arbitrage.DryRun,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))

		if _, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		); err != nil {
			log.Warn(ctx, "metrics provider init failed", "error", err)
		} else {
			port := cfg.Telemetry.PrometheusPort
			if port == 0 {
				port = 9090
			}
			go func() {
				if err := metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port))); err != nil {
					log.Warn(ctx, "prometheus metrics server stopped", "error", err)
				}
			}()
			log.Info(ctx, "prometheus metrics server started", "port", port)
		}
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	arbitrageModule := &arbitrage.Module{}
	modules := []monolith.Module{
		&exchange.Module{}, // Must be first - provides the venue adapters
		arbitrageModule,
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	registerHealthChecks(healthServer, mono.Services(), cfg, arbitrageModule)

	startModules := func() error {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		_ = mono.Notifier().Notify(ctx, notify.EventStartup, "Bot started",
			fmt.Sprintf("crossarb %s scanning %d pair(s), dry_run=%v",
				version, len(cfg.Arbitrage.Pairs), cfg.Arbitrage.DryRun))
		return nil
	}

	if tuiMode {
		return runTUI(ctx, cancel, startModules, arbitrageModule)
	}
	return runCLI(ctx, log, startModules, arbitrageModule)
}

// registerHealthChecks wires venue reachability and persistence checks into
// the health server. Adapters resolve lazily, so checks are safe to register
// before the modules start.
func registerHealthChecks(server *health.Server, services di.ServiceRegistry, cfg *config.Config, arbitrageModule *arbitrage.Module) {
	if len(cfg.Arbitrage.Pairs) > 0 {
		if pair, err := exchangeDomain.ParsePair(cfg.Arbitrage.Pairs[0]); err == nil {
			venueCheck := func(get func(di.ServiceRegistry) exchangeApp.Adapter) health.CheckFunc {
				return func(ctx context.Context) (bool, string) {
					if _, err := get(services).FetchPrice(ctx, pair); err != nil {
						return false, err.Error()
					}
					return true, ""
				}
			}
			server.RegisterCheck("binance", venueCheck(exchangeDI.GetBinanceAdapter))
			server.RegisterCheck("bybit", venueCheck(exchangeDI.GetBybitAdapter))
		}
	}
	server.RegisterCheck("postgres", arbitrageModule.HealthCheck)
}

func runCLI(ctx context.Context, log *logger.Logger, startModules func() error, arbitrageModule *arbitrage.Module) error {
	if err := startModules(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")
	arbitrageModule.Wait()
	return nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, startModules func() error, arbitrageModule *arbitrage.Module) error {
	program := tea.NewProgram(ui.New([]string{"binance", "bybit"}), tea.WithAltScreen())
	ui.Program = program

	errCh := make(chan error, 1)
	go func() {
		if err := startModules(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		<-ctx.Done()
		errCh <- nil
	}()

	// Blocks until the operator quits the dashboard.
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	cancel()
	arbitrageModule.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
