// Package world owns every simulated entity and runs the per-tick stage
// pipeline over them.
package world

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/core/systems"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/feedback"
	"github.com/zeusync/strategyforge/internal/game/projectile"
	"github.com/zeusync/strategyforge/internal/game/weapon"
)

var ErrInvalidDelta = errors.New("tick delta must be finite and non-negative")

// Settings tune the world's stages.
type Settings struct {
	// Workers bounds the per-base fan-out of the power and effects stages.
	// One or less runs them inline.
	Workers    int
	Projectile projectile.Settings
}

func DefaultSettings() Settings {
	return Settings{Workers: 1, Projectile: projectile.DefaultSettings()}
}

// World is the authoritative simulation state. It is not safe for
// concurrent use.
type World struct {
	settings Settings
	tick     uint64
	ids      models.IDSource

	bases       []*base.Base
	targets     *combat.Registry
	projectiles *projectile.Simulator
	weapons     *weapon.Controller
	pipeline    *systems.Pipeline[*World]

	events     bus.EventBus
	modifier   combat.DamageModifier
	emitter    *feedback.Emitter
	logger     log.Log
	shotsFired uint64
}

type Option func(*World)

func WithEventBus(b bus.EventBus) Option {
	return func(w *World) { w.events = b }
}

func WithLogger(l log.Log) Option {
	return func(w *World) { w.logger = l }
}

func WithDamageModifier(m combat.DamageModifier) Option {
	return func(w *World) { w.modifier = m }
}

func New(settings Settings, opts ...Option) (*World, error) {
	w := &World{
		settings: settings,
		targets:  combat.NewRegistry(),
		events:   bus.Discard(),
		logger:   log.NewNop(),
		pipeline: systems.NewPipeline[*World](),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("world")
	w.emitter = feedback.NewEmitter(w.events, "world", w.logger)
	w.projectiles = projectile.NewSimulator(settings.Projectile, w.targets,
		projectile.WithEventBus(w.events),
		projectile.WithLogger(w.logger.Named("projectiles")),
		projectile.WithDamageModifier(w.modifier),
	)
	w.weapons = weapon.NewController(w.targets, w.projectiles, w.logger.Named("weapons"))

	for _, s := range []systems.System[*World]{
		powerStage{},
		effectsStage{},
		weaponStage{},
		projectileStage{},
		sweepStage{},
	} {
		if err := w.pipeline.Register(s); err != nil {
			return nil, fmt.Errorf("register stage: %w", err)
		}
	}
	return w, nil
}

// NextID issues a fresh entity ID, for modules attached to world bases.
func (w *World) NextID() models.EntityID { return w.ids.Next() }

// AddBase creates a base and makes it targetable.
func (w *World) AddBase(name string, team models.Team, opts ...base.Option) (*base.Base, error) {
	b := base.New(w.ids.Next(), name, team, opts...)
	if err := w.targets.Register(b); err != nil {
		return nil, err
	}
	w.bases = append(w.bases, b)
	return b, nil
}

// AddTarget registers a free-standing damageable entity.
func (w *World) AddTarget(name string, team models.Team, pos physics.Vec2, maxHealth float64, opts ...combat.TargetOption) (*combat.Target, error) {
	t := combat.NewTarget(w.ids.Next(), name, team, pos, maxHealth, opts...)
	if err := w.targets.Register(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (w *World) Tick() uint64                       { return w.tick }
func (w *World) Bases() []*base.Base                { return w.bases }
func (w *World) Targets() *combat.Registry          { return w.targets }
func (w *World) Projectiles() *projectile.Simulator { return w.projectiles }
func (w *World) ShotsFired() uint64                 { return w.shotsFired }

// Step advances the simulation by dt seconds. Stages run strictly in order:
// power, effects, weapons, projectiles, then the end-of-tick sweep.
func (w *World) Step(dt float64) error {
	if !(dt >= 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	w.tick++
	if err := w.pipeline.Update(dt, w); err != nil {
		return fmt.Errorf("tick %d: %w", w.tick, err)
	}
	return nil
}

// StageOrder lists stage names in execution order.
func (w *World) StageOrder() []string { return w.pipeline.ExecutionOrder() }

func (w *World) StageMetrics(name string) (systems.Metrics, bool) {
	return w.pipeline.GetSystemMetrics(name)
}

func (w *World) destroyed(kind string, id models.EntityID, team models.Team) {
	w.logger.Debug("Entity destroyed",
		log.Uint64("tick", w.tick),
		log.String("kind", kind),
		log.Uint64("entity", uint64(id)),
	)
	w.emitter.Emit(w.tick, feedback.EventEntityDestroyed, feedback.EntityDestroyed{Entity: id, Kind: kind, Team: team})
}

// removeDestroyedBases drops dead bases together with their modules.
func (w *World) removeDestroyedBases() {
	w.bases = slices.DeleteFunc(w.bases, func(b *base.Base) bool {
		if !b.Destroyed() {
			return false
		}
		for _, m := range b.Modules() {
			w.destroyed("module", m.ID(), m.Team())
		}
		return true
	})
}
