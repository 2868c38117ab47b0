// Package feedback defines the presentation signals the simulation emits on
// the event bus. Nothing in the simulation reads them back.
package feedback

import (
	"image/color"

	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/module"
)

const (
	EventPowerChanged      = "module.power_changed"
	EventProjectileSpawned = "projectile.spawned"
	EventProjectileImpact  = "projectile.impact"
	EventProjectileExpired = "projectile.expired"
	EventEntityDestroyed   = "entity.destroyed"
)

// PowerChanged reports a module switching on or off.
type PowerChanged struct {
	Base   models.EntityID `json:"base"`
	Module models.EntityID `json:"module"`
	Kind   module.Kind     `json:"kind"`
	Active bool            `json:"active"`
	Tint   color.RGBA      `json:"tint"`
}

type ProjectileSpawned struct {
	Projectile uint64            `json:"projectile"`
	Base       models.EntityID   `json:"base"`
	Weapon     models.EntityID   `json:"weapon"`
	Target     models.EntityID   `json:"target"`
	From       physics.Vec2      `json:"from"`
	To         physics.Vec2      `json:"to"`
	Damage     float64           `json:"damage"`
	DamageType module.DamageType `json:"damage_type"`
}

// Hit is one entity or module damaged by an impact. Owner is set for
// modules and names the base they are mounted on.
type Hit struct {
	Entity models.EntityID `json:"entity"`
	Owner  models.EntityID `json:"owner,omitempty"`
	Damage float64         `json:"damage"`
}

// ProjectileImpact lists everything an arriving projectile damaged.
type ProjectileImpact struct {
	Projectile uint64       `json:"projectile"`
	Point      physics.Vec2 `json:"point"`
	Radius     float64      `json:"radius"`
	Hits       []Hit        `json:"hits,omitempty"`
}

type ProjectileExpired struct {
	Projectile uint64       `json:"projectile"`
	Position   physics.Vec2 `json:"position"`
}

type EntityDestroyed struct {
	Entity models.EntityID `json:"entity"`
	Kind   string          `json:"kind"`
	Team   models.Team     `json:"team"`
}

// Emitter publishes feedback for one source. A failing subscriber is logged
// and never interrupts the tick.
type Emitter struct {
	bus    bus.EventBus
	source string
	logger log.Log
}

func NewEmitter(b bus.EventBus, source string, logger log.Log) *Emitter {
	if b == nil {
		b = bus.Discard()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Emitter{bus: b, source: source, logger: logger}
}

func (e *Emitter) Emit(tick uint64, typ string, data any) {
	if err := e.bus.Publish(bus.NewEvent(typ, e.source, tick, data)); err != nil {
		e.logger.Warn("Feedback subscriber failed",
			log.String("event", typ),
			log.Uint64("tick", tick),
			log.Error(err),
		)
	}
}
