package world

import (
	"context"
	"encoding/binary"
	"image/color"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/module"
	"github.com/zeusync/strategyforge/internal/game/projectile"
	"github.com/zeusync/strategyforge/pkg/concurrent"
	"github.com/zeusync/strategyforge/pkg/generic"
)

// Snapshot is the presentation view of one tick.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Bases       []BaseView       `json:"bases"`
	Targets     []TargetView     `json:"targets"`
	Projectiles []ProjectileView `json:"projectiles"`
	Flashes     []FlashView      `json:"flashes"`
}

type BaseView struct {
	ID                     models.EntityID `json:"id"`
	Name                   string          `json:"name"`
	Team                   models.Team     `json:"team"`
	Position               physics.Vec2    `json:"position"`
	Health                 float64         `json:"health"`
	MaxHealth              float64         `json:"max_health"`
	Shield                 float64         `json:"shield"`
	MaxShield              float64         `json:"max_shield"`
	Armor                  float64         `json:"armor"`
	PowerOutput            float64         `json:"power_output"`
	PowerConsumed          float64         `json:"power_consumed"`
	MaxPower               float64         `json:"max_power"`
	EffectiveMovementSpeed float64         `json:"effective_movement_speed"`
	Modules                []ModuleView    `json:"modules"`
}

type ModuleView struct {
	ID               models.EntityID `json:"id"`
	Kind             module.Kind     `json:"kind"`
	Active           bool            `json:"active"`
	Tint             color.RGBA      `json:"tint"`
	Health           float64         `json:"health"`
	MaxHealth        float64         `json:"max_health"`
	PowerConsumption float64         `json:"power_consumption"`
	Position         physics.Vec2    `json:"position"`
	Cooldown         float64         `json:"cooldown,omitempty"`
}

type TargetView struct {
	ID        models.EntityID `json:"id"`
	Name      string          `json:"name"`
	Team      models.Team     `json:"team"`
	Position  physics.Vec2    `json:"position"`
	Health    float64         `json:"health"`
	MaxHealth float64         `json:"max_health"`
	Shield    float64         `json:"shield"`
}

type ProjectileView struct {
	ID         uint64            `json:"id"`
	Position   physics.Vec2      `json:"position"`
	Target     physics.Vec2      `json:"target"`
	Damage     float64           `json:"damage"`
	DamageType module.DamageType `json:"damage_type"`
}

type FlashView struct {
	Position  physics.Vec2 `json:"position"`
	Radius    float64      `json:"radius"`
	Remaining float64      `json:"remaining"`
}

// Snapshot copies the presentation-facing state of the world. It must not
// run concurrently with Step.
func (w *World) Snapshot() Snapshot {
	// Views only read their own base, and a background context never
	// cancels, so the map cannot fail.
	bases, _ := concurrent.ParallelMap(context.Background(), w.bases, w.settings.Workers, baseView)
	s := Snapshot{
		Tick:        w.tick,
		Bases:       bases,
		Targets:     []TargetView{},
		Projectiles: make([]ProjectileView, 0, w.projectiles.Len()),
		Flashes:     []FlashView{},
	}
	w.targets.Each(func(d combat.Damageable) bool {
		t, ok := d.(*combat.Target)
		if !ok {
			return true
		}
		s.Targets = append(s.Targets, TargetView{
			ID:        t.ID(),
			Name:      t.Name(),
			Team:      t.Team(),
			Position:  t.Position(),
			Health:    t.Health(),
			MaxHealth: t.MaxHealth(),
			Shield:    t.Shield(),
		})
		return true
	})
	w.projectiles.EachProjectile(func(h generic.Handle, p *projectile.Projectile) bool {
		s.Projectiles = append(s.Projectiles, ProjectileView{
			ID:         h.ID(),
			Position:   p.Position,
			Target:     p.To,
			Damage:     p.Damage,
			DamageType: p.DamageType,
		})
		return true
	})
	w.projectiles.EachFlash(func(_ generic.Handle, f *projectile.Flash) bool {
		s.Flashes = append(s.Flashes, FlashView{Position: f.Position, Radius: f.Radius, Remaining: f.Remaining})
		return true
	})
	return s
}

func baseView(b *base.Base) BaseView {
	v := BaseView{
		ID:                     b.ID(),
		Name:                   b.Name(),
		Team:                   b.Team(),
		Position:               b.Position(),
		Health:                 b.Health(),
		MaxHealth:              b.MaxHealth(),
		Shield:                 b.Shield(),
		MaxShield:              b.MaxShield(),
		Armor:                  b.Armor(),
		PowerOutput:            b.PowerOutput(),
		PowerConsumed:          b.PowerConsumed(),
		MaxPower:               b.MaxPower(),
		EffectiveMovementSpeed: b.EffectiveMovementSpeed(),
		Modules:                make([]ModuleView, 0, len(b.Modules())),
	}
	for _, m := range b.Modules() {
		mv := ModuleView{
			ID:               m.ID(),
			Kind:             m.Kind(),
			Active:           m.Active(),
			Tint:             m.Tint(),
			Health:           m.Health(),
			MaxHealth:        m.MaxHealth(),
			PowerConsumption: m.PowerConsumption(),
			Position:         b.ModulePosition(m),
		}
		if cd := m.Cooldown(); cd != nil {
			mv.Cooldown = cd.Remaining()
		}
		v.Modules = append(v.Modules, mv)
	}
	return v
}

// Checksum hashes the simulation state that determinism depends on. Two runs
// of the same scenario with the same deltas produce equal checksums.
func (w *World) Checksum() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 256)
	u := func(v uint64) { buf = binary.LittleEndian.AppendUint64(buf, v) }
	f := func(v float64) { u(math.Float64bits(v)) }
	flush := func() {
		_, _ = d.Write(buf)
		buf = buf[:0]
	}

	u(w.tick)
	for _, b := range w.bases {
		u(uint64(b.ID()))
		f(b.Health())
		f(b.Shield())
		f(b.PowerOutput())
		f(b.PowerConsumed())
		f(b.MaxPower())
		f(b.EffectiveMovementSpeed())
		for _, m := range b.Modules() {
			u(uint64(m.ID()))
			if m.Active() {
				u(1)
			} else {
				u(0)
			}
			f(m.Health())
			if cd := m.Cooldown(); cd != nil {
				f(cd.Remaining())
			}
		}
		flush()
	}
	w.targets.Each(func(t combat.Damageable) bool {
		u(uint64(t.ID()))
		f(t.Health())
		return true
	})
	flush()
	w.projectiles.EachProjectile(func(h generic.Handle, p *projectile.Projectile) bool {
		u(h.ID())
		f(p.Position.X)
		f(p.Position.Y)
		f(p.Age)
		return true
	})
	w.projectiles.EachFlash(func(_ generic.Handle, fl *projectile.Flash) bool {
		f(fl.Remaining)
		return true
	})
	flush()
	return d.Sum64()
}
