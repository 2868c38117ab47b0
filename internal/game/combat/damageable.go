// Package combat holds what weapons and projectiles need to know about the
// things they hit.
package combat

import (
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/module"
)

// Damageable is anything a projectile can hurt. Only health is ever mutated
// by combat; shield and armor are read for presentation and modifiers.
type Damageable interface {
	physics.Positioned
	ID() models.EntityID
	Team() models.Team
	Health() float64
	MaxHealth() float64
	Shield() float64
	MaxShield() float64
	Armor() float64
	ApplyDamage(amount float64)
}

func Alive(d Damageable) bool { return d.Health() > 0 }

// Part is a separately damaged component mounted on a Damageable, such as a
// module on a base. Parts are never targeted directly.
type Part interface {
	ID() models.EntityID
	Health() float64
	ApplyDamage(amount float64)
}

// Assembly is a Damageable whose parts take splash damage at their own
// positions, independently of the hull.
type Assembly interface {
	EachPart(fn func(p Part, pos physics.Vec2) bool)
}

// Hostile reports whether b is a valid target for a shooter on team a.
func Hostile(a, b models.Team) bool { return a != b }

// DamageModifier adjusts splash damage before it is applied.
type DamageModifier func(kind module.DamageType, target Damageable, amount float64) float64

// Uniform applies every damage type unchanged.
func Uniform(_ module.DamageType, _ Damageable, amount float64) float64 { return amount }

// Target is a free-standing damageable entity such as a unit or a wall.
type Target struct {
	id       models.EntityID
	name     string
	team     models.Team
	position physics.Vec2

	health    float64
	maxHealth float64
	shield    float64
	maxShield float64
	armor     float64
}

type TargetOption func(*Target)

func WithShield(current, maximum float64) TargetOption {
	return func(t *Target) {
		t.maxShield = max(maximum, 0)
		t.shield = min(max(current, 0), t.maxShield)
	}
}

func WithArmor(armor float64) TargetOption {
	return func(t *Target) { t.armor = armor }
}

// WithCurrentHealth starts the target damaged.
func WithCurrentHealth(h float64) TargetOption {
	return func(t *Target) { t.health = min(max(h, 0), t.maxHealth) }
}

func NewTarget(id models.EntityID, name string, team models.Team, pos physics.Vec2, maxHealth float64, opts ...TargetOption) *Target {
	t := &Target{
		id:        id,
		name:      name,
		team:      team,
		position:  pos,
		health:    maxHealth,
		maxHealth: maxHealth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Target) ID() models.EntityID    { return t.id }
func (t *Target) Name() string           { return t.name }
func (t *Target) Team() models.Team      { return t.team }
func (t *Target) Position() physics.Vec2 { return t.position }
func (t *Target) Health() float64        { return t.health }
func (t *Target) MaxHealth() float64     { return t.maxHealth }
func (t *Target) Shield() float64        { return t.shield }
func (t *Target) MaxShield() float64     { return t.maxShield }
func (t *Target) Armor() float64         { return t.armor }

func (t *Target) ApplyDamage(amount float64) {
	if amount <= 0 {
		return
	}
	t.health = max(t.health-amount, 0)
}
