// Package config loads the server and scenario configuration from YAML.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/strategyforge/internal/core/observability/log"
)

var ErrInvalidConfig = stderrors.New("invalid config")

// Config is the whole YAML document.
type Config struct {
	Log        LogConfig        `json:"log" yaml:"log"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Scenario   Scenario         `json:"scenario" yaml:"scenario"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	// Format is "json" or "console".
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Development bool     `json:"development,omitempty" yaml:"development,omitempty"`
	OutputPaths []string `json:"output_paths,omitempty" yaml:"output_paths,omitempty"`
}

// SimulationConfig drives the tick loop and projectile defaults.
type SimulationConfig struct {
	TickRate            int           `json:"tick_rate" yaml:"tick_rate"`
	Workers             int           `json:"workers" yaml:"workers"`
	ProjectileSpeed     float64       `json:"projectile_speed" yaml:"projectile_speed"`
	ProjectileLifetime  time.Duration `json:"projectile_lifetime" yaml:"projectile_lifetime"`
	ImpactFlashDuration time.Duration `json:"impact_flash_duration" yaml:"impact_flash_duration"`
	// MaxTicks stops the loop after that many ticks; zero runs until shutdown.
	MaxTicks uint64 `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// TickInterval is the wall-clock period of one tick.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// ServerConfig configures the spectator feed.
type ServerConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	// BroadcastEvery is the number of ticks between snapshots sent to
	// spectators.
	BroadcastEvery int `json:"broadcast_every" yaml:"broadcast_every"`
	// Token, when set, must be presented by spectators as ?token=.
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`
	MaxClients int    `json:"max_clients" yaml:"max_clients"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Simulation: SimulationConfig{
			TickRate:            30,
			Workers:             1,
			ProjectileSpeed:     10,
			ProjectileLifetime:  5 * time.Second,
			ImpactFlashDuration: 250 * time.Millisecond,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			BroadcastEvery: 3,
			MaxClients:     256,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	s := c.Simulation
	switch {
	case s.TickRate <= 0:
		return fmt.Errorf("%w: simulation.tick_rate must be positive", ErrInvalidConfig)
	case s.Workers < 0:
		return fmt.Errorf("%w: simulation.workers must not be negative", ErrInvalidConfig)
	case !(s.ProjectileSpeed > 0):
		return fmt.Errorf("%w: simulation.projectile_speed must be positive", ErrInvalidConfig)
	case s.ProjectileLifetime <= 0:
		return fmt.Errorf("%w: simulation.projectile_lifetime must be positive", ErrInvalidConfig)
	case s.ImpactFlashDuration < 0:
		return fmt.Errorf("%w: simulation.impact_flash_duration must not be negative", ErrInvalidConfig)
	}

	if c.Server.BroadcastEvery <= 0 {
		return fmt.Errorf("%w: server.broadcast_every must be positive", ErrInvalidConfig)
	}
	if c.Server.MaxClients <= 0 {
		return fmt.Errorf("%w: server.max_clients must be positive", ErrInvalidConfig)
	}
	return c.Scenario.Validate()
}
