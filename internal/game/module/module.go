package module

import (
	"fmt"
	"image/color"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
)

var (
	TintActive   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	TintInactive = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Module is a unit attached to a base. Its parameters never change after
// construction; the active flag is owned by the power allocator and only
// changes through ApplyActivation.
type Module struct {
	id     models.EntityID
	params Params
	team   models.Team
	offset physics.Vec2

	health           float64
	maxHealth        float64
	powerConsumption float64
	active           bool
	tint             color.RGBA

	cooldown *Cooldown
}

type Option func(*Module) error

// WithPowerConsumption overrides the catalogue power draw.
func WithPowerConsumption(c float64) Option {
	return func(m *Module) error {
		if m.params.Kind() == KindEnergy {
			return fmt.Errorf("%w: energy modules do not consume power", ErrInvalidParameter)
		}
		if err := nonNegative("power_consumption", c); err != nil {
			return err
		}
		m.powerConsumption = c
		return nil
	}
}

// WithOffset places the module relative to its base centre.
func WithOffset(v physics.Vec2) Option {
	return func(m *Module) error {
		m.offset = v
		return nil
	}
}

func WithTeam(t models.Team) Option {
	return func(m *Module) error {
		m.team = t
		return nil
	}
}

// WithHealth sets the starting health, capped at the catalogue maximum.
func WithHealth(h float64) Option {
	return func(m *Module) error {
		if err := nonNegative("health", h); err != nil {
			return err
		}
		m.health = min(h, m.maxHealth)
		return nil
	}
}

// New validates p and builds an inactive module with catalogue health and
// power draw.
func New(id models.EntityID, p Params, opts ...Option) (*Module, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil parameters", ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s module: %w", p.Kind(), err)
	}

	m := &Module{
		id:               id,
		params:           p,
		maxHealth:        p.MaxHealth(),
		health:           p.MaxHealth(),
		powerConsumption: p.PowerConsumption(),
		tint:             TintInactive,
	}
	if p.Kind() == KindWeapon {
		m.cooldown = &Cooldown{}
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("%s module: %w", p.Kind(), err)
		}
	}
	return m, nil
}

func (m *Module) ID() models.EntityID       { return m.id }
func (m *Module) Kind() Kind                { return m.params.Kind() }
func (m *Module) Params() Params            { return m.params }
func (m *Module) Team() models.Team         { return m.team }
func (m *Module) Offset() physics.Vec2      { return m.offset }
func (m *Module) Health() float64           { return m.health }
func (m *Module) MaxHealth() float64        { return m.maxHealth }
func (m *Module) PowerConsumption() float64 { return m.powerConsumption }
func (m *Module) Active() bool              { return m.active }
func (m *Module) Tint() color.RGBA          { return m.tint }
func (m *Module) Destroyed() bool           { return m.health <= 0 }

// Cooldown is nil for every kind except Weapon.
func (m *Module) Cooldown() *Cooldown { return m.cooldown }

// Weapon returns the weapon parameters when the module is a weapon.
func (m *Module) Weapon() (Weapon, bool) {
	w, ok := m.params.(Weapon)
	return w, ok
}

// ApplyDamage subtracts amount from health, never below zero.
func (m *Module) ApplyDamage(amount float64) {
	if amount <= 0 {
		return
	}
	m.health = max(m.health-amount, 0)
}

// ApplyActivation writes an allocation result onto mods, which must be the
// same slice order the allocation was computed from. It returns the modules
// whose active flag flipped.
func ApplyActivation(mods []*Module, active []bool) []*Module {
	var changed []*Module
	for i, m := range mods {
		want := i < len(active) && active[i]
		if m.active == want {
			continue
		}
		m.active = want
		if want {
			m.tint = TintActive
		} else {
			m.tint = TintInactive
		}
		changed = append(changed, m)
	}
	return changed
}
