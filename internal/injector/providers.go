// Package injector assembles the server from its configuration.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/strategyforge/internal/config"
	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/game/world"
	"github.com/zeusync/strategyforge/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideWorld,
	ProvideServer,
)

// ProvideLogger builds the process logger. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	var opts []log.Option
	if cfg.Log.Format == "console" {
		opts = append(opts, log.WithConsoleEncoding())
	}
	if cfg.Log.Development {
		opts = append(opts, log.WithDevelopment())
	}
	if len(cfg.Log.OutputPaths) > 0 {
		opts = append(opts, log.WithOutputPaths(cfg.Log.OutputPaths...))
	}

	logger := log.New(level, opts...)
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideWorld builds the world on events and populates it from the scenario.
func ProvideWorld(cfg *config.Config, events bus.EventBus, logger log.Log) (*world.World, error) {
	w, err := world.New(world.SettingsFromConfig(cfg.Simulation),
		world.WithEventBus(events),
		world.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Populate(cfg.Scenario); err != nil {
		return nil, err
	}
	logger.Info("Scenario loaded",
		log.Int("bases", len(w.Bases())),
		log.Int("entities", w.Targets().Len()),
	)
	return w, nil
}

func ProvideServer(cfg *config.Config, w *world.World, events bus.EventBus, logger log.Log) (*server.Server, error) {
	return server.New(cfg.Server, cfg.Simulation, w, events, logger)
}
