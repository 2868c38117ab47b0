// Package base models the mobile structure that owns modules and a power
// budget.
package base

import (
	"slices"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/effects"
	"github.com/zeusync/strategyforge/internal/game/module"
	"github.com/zeusync/strategyforge/internal/game/power"
)

var (
	_ combat.Damageable = (*Base)(nil)
	_ combat.Assembly   = (*Base)(nil)
	_ combat.Part       = (*module.Module)(nil)
)

const (
	DefaultHealth        = 1000
	DefaultMovementSpeed = 30
	DefaultPowerOutput   = 100
	// IntrinsicCapacity is the power capacity a base has before any energy
	// module adds to it.
	IntrinsicCapacity = 150
)

// Base is a mobile structure that carries modules and shares one power
// budget among them.
type Base struct {
	id       models.EntityID
	name     string
	team     models.Team
	position physics.Vec2

	health    float64
	maxHealth float64
	shield    float64

	baseMovementSpeed      float64
	effectiveMovementSpeed float64

	intrinsicPowerOutput float64
	powerOutput          float64
	powerConsumed        float64
	maxPower             float64

	stats   effects.Stats
	modules []*module.Module
}

type Option func(*Base)

func WithPosition(p physics.Vec2) Option {
	return func(b *Base) { b.position = p }
}

func WithHealth(h float64) Option {
	return func(b *Base) {
		b.maxHealth = h
		b.health = h
	}
}

func WithMovementSpeed(s float64) Option {
	return func(b *Base) {
		b.baseMovementSpeed = s
		b.effectiveMovementSpeed = s
	}
}

// WithPowerOutput sets the base's own generator output, which also seeds the
// first tick's budget.
func WithPowerOutput(p float64) Option {
	return func(b *Base) {
		b.intrinsicPowerOutput = p
		b.powerOutput = max(p, 0)
	}
}

func New(id models.EntityID, name string, team models.Team, opts ...Option) *Base {
	b := &Base{
		id:   id,
		name: name,
		team: team,

		health:    DefaultHealth,
		maxHealth: DefaultHealth,

		baseMovementSpeed:      DefaultMovementSpeed,
		effectiveMovementSpeed: DefaultMovementSpeed,

		intrinsicPowerOutput: DefaultPowerOutput,
		powerOutput:          DefaultPowerOutput,
		maxPower:             IntrinsicCapacity,

		stats: effects.Neutral(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) ID() models.EntityID    { return b.id }
func (b *Base) Name() string           { return b.name }
func (b *Base) Team() models.Team      { return b.team }
func (b *Base) Position() physics.Vec2 { return b.position }
func (b *Base) Health() float64        { return b.health }
func (b *Base) MaxHealth() float64     { return b.maxHealth }
func (b *Base) Shield() float64        { return b.shield }
func (b *Base) MaxShield() float64     { return b.stats.MaxShield }
func (b *Base) Armor() float64         { return b.stats.Armor }
func (b *Base) Destroyed() bool        { return b.health <= 0 }

func (b *Base) BaseMovementSpeed() float64      { return b.baseMovementSpeed }
func (b *Base) EffectiveMovementSpeed() float64 { return b.effectiveMovementSpeed }
func (b *Base) IntrinsicPowerOutput() float64   { return b.intrinsicPowerOutput }
func (b *Base) PowerOutput() float64            { return b.powerOutput }
func (b *Base) PowerConsumed() float64          { return b.powerConsumed }
func (b *Base) MaxPower() float64               { return b.maxPower }
func (b *Base) Stats() effects.Stats            { return b.stats }

// Modules returns the attached modules in insertion order. The slice is
// owned by the base and must not be modified.
func (b *Base) Modules() []*module.Module { return b.modules }

// PowerBalance is the unused part of the budget.
func (b *Base) PowerBalance() float64 { return b.powerOutput - b.powerConsumed }

func (b *Base) CanActivate(cost float64) bool { return b.powerOutput >= cost }

// ApplyDamage hits the hull. Shields and armor are not consumed here.
func (b *Base) ApplyDamage(amount float64) {
	if amount <= 0 {
		return
	}
	b.health = max(b.health-amount, 0)
}

// Attach builds a module owned by this base and appends it after the
// existing ones. The module inherits the base's team.
func (b *Base) Attach(id models.EntityID, p module.Params, opts ...module.Option) (*module.Module, error) {
	m, err := module.New(id, p, append(slices.Clip(opts), module.WithTeam(b.team))...)
	if err != nil {
		return nil, err
	}
	b.modules = append(b.modules, m)
	return m, nil
}

// EachPart visits the modules that still have health, at their world
// positions, so splash damage can reach them.
func (b *Base) EachPart(fn func(p combat.Part, pos physics.Vec2) bool) {
	for _, m := range b.modules {
		if m.Destroyed() {
			continue
		}
		if !fn(m, b.ModulePosition(m)) {
			return
		}
	}
}

// ModulePosition is the world position of a module mounted on this base.
func (b *Base) ModulePosition(m *module.Module) physics.Vec2 {
	return physics.Transform{Origin: b.position, Offset: m.Offset()}.World()
}

// AllocatePower recomputes which modules run this tick from the current
// power output and returns the modules whose state flipped.
func (b *Base) AllocatePower() []*module.Module {
	return module.ApplyActivation(b.modules, power.Allocate(b.modules, b.powerOutput))
}

// ApplyModuleEffects folds the active modules into the base's derived stats.
// dt drives shield recharge.
func (b *Base) ApplyModuleEffects(dt float64) {
	st := effects.Aggregate(b.modules)
	b.stats = st

	b.effectiveMovementSpeed = b.baseMovementSpeed * st.SpeedMultiplier
	b.powerOutput = max(0, b.intrinsicPowerOutput+st.PowerGenerated)
	b.maxPower = IntrinsicCapacity + st.PowerCapacity
	b.powerConsumed = min(max(0, st.PowerConsumed), b.maxPower)

	b.shield = min(b.shield+st.ShieldRechargeRate*dt, st.MaxShield)
}

// SweepDestroyed detaches modules with no health left and returns them.
func (b *Base) SweepDestroyed() []*module.Module {
	var removed []*module.Module
	b.modules = slices.DeleteFunc(b.modules, func(m *module.Module) bool {
		if m.Destroyed() {
			removed = append(removed, m)
			return true
		}
		return false
	})
	return removed
}
