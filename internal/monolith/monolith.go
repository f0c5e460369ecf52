// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/notify"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Notifier() *notify.Notifier
	Instruments() *metrics.Instruments
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config      *config.Config
	logger      logger.LoggerInterface
	notifier    *notify.Notifier
	instruments *metrics.Instruments
	container   di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	instruments, err := metrics.NewInstruments()
	if err != nil {
		return nil, err
	}

	var senders []notify.Sender
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		senders = append(senders, tg)
	}
	notifier := notify.NewNotifier(senders, cfg.Telegram.Events, log)

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("notifier", notifier)
	container.Register("instruments", instruments)

	return &app{
		config:      cfg,
		logger:      log,
		notifier:    notifier,
		instruments: instruments,
		container:   container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Notifier() *notify.Notifier {
	return a.notifier
}

func (a *app) Instruments() *metrics.Instruments {
	return a.instruments
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
