// Package projectile flies shots to their aim point and resolves splash
// damage on arrival.
package projectile

import (
	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/feedback"
	"github.com/zeusync/strategyforge/internal/game/module"
	"github.com/zeusync/strategyforge/pkg/generic"
)

const (
	DefaultSpeed         = 10.0
	DefaultLifetime      = 5.0
	DefaultFlashDuration = 0.25

	lifetimeEpsilon = 1e-9
)

// Settings are the flight parameters shared by every projectile.
type Settings struct {
	Speed         float64
	Lifetime      float64
	FlashDuration float64
}

func DefaultSettings() Settings {
	return Settings{
		Speed:         DefaultSpeed,
		Lifetime:      DefaultLifetime,
		FlashDuration: DefaultFlashDuration,
	}
}

// Shot is what a weapon hands over when it fires.
type Shot struct {
	Base         models.EntityID
	Weapon       models.EntityID
	Target       models.EntityID
	Damage       float64
	DamageType   module.DamageType
	SplashRadius float64
	From         physics.Vec2
	To           physics.Vec2
}

// Projectile is a shot in flight.
type Projectile struct {
	Shot
	Speed    float64
	Position physics.Vec2
	Age      float64
	Lifetime float64

	done bool
}

// Done reports whether the projectile has impacted or expired and waits for
// the end-of-tick sweep.
func (p *Projectile) Done() bool { return p.done }

// Flash is the short-lived marker left at an impact point.
type Flash struct {
	Position  physics.Vec2
	Radius    float64
	Remaining float64
}

// Simulator owns projectiles and impact flashes.
type Simulator struct {
	settings    Settings
	targets     *combat.Registry
	modifier    combat.DamageModifier
	projectiles *generic.Arena[Projectile]
	flashes     *generic.Arena[Flash]
	events      bus.EventBus
	emitter     *feedback.Emitter
	logger      log.Log
}

type Option func(*Simulator)

func WithDamageModifier(m combat.DamageModifier) Option {
	return func(s *Simulator) {
		if m != nil {
			s.modifier = m
		}
	}
}

func WithEventBus(b bus.EventBus) Option {
	return func(s *Simulator) { s.events = b }
}

func WithLogger(l log.Log) Option {
	return func(s *Simulator) { s.logger = l }
}

func NewSimulator(settings Settings, targets *combat.Registry, opts ...Option) *Simulator {
	s := &Simulator{
		settings:    settings,
		targets:     targets,
		modifier:    combat.Uniform,
		projectiles: generic.NewArena[Projectile](64),
		flashes:     generic.NewArena[Flash](16),
		logger:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.emitter = feedback.NewEmitter(s.events, "projectiles", s.logger)
	return s
}

// Spawn launches a projectile at the shot's source. The aim point is fixed.
func (s *Simulator) Spawn(tick uint64, shot Shot) generic.Handle {
	h := s.projectiles.Insert(Projectile{
		Shot:     shot,
		Speed:    s.settings.Speed,
		Position: shot.From,
		Lifetime: s.settings.Lifetime,
	})
	s.emitter.Emit(tick, feedback.EventProjectileSpawned, feedback.ProjectileSpawned{
		Projectile: h.ID(),
		Base:       shot.Base,
		Weapon:     shot.Weapon,
		Target:     shot.Target,
		From:       shot.From,
		To:         shot.To,
		Damage:     shot.Damage,
		DamageType: shot.DamageType,
	})
	return h
}

// Step advances flashes and every live projectile by dt. Impacts and
// expiries are only marked here; Sweep removes them.
func (s *Simulator) Step(tick uint64, dt float64) {
	s.flashes.Each(func(_ generic.Handle, f *Flash) bool {
		f.Remaining -= dt
		return true
	})

	var impacts []Flash
	s.projectiles.Each(func(h generic.Handle, p *Projectile) bool {
		if p.done {
			return true
		}
		remaining := p.Position.DistanceTo(p.To)
		travel := p.Speed * dt
		if travel >= remaining {
			p.Position = p.To
			p.done = true
			s.impact(tick, h, p)
			impacts = append(impacts, Flash{Position: p.To, Radius: p.SplashRadius, Remaining: s.settings.FlashDuration})
			return true
		}

		p.Position = p.Position.Add(physics.Direction(p.Position, p.To).Scale(travel))
		p.Age += dt
		if p.Age+lifetimeEpsilon >= p.Lifetime {
			p.done = true
			s.logger.Debug("Projectile expired", log.Stringer("projectile", h), log.Uint64("tick", tick))
			s.emitter.Emit(tick, feedback.EventProjectileExpired, feedback.ProjectileExpired{
				Projectile: h.ID(),
				Position:   p.Position,
			})
		}
		return true
	})

	for _, f := range impacts {
		s.flashes.Insert(f)
	}
}

func (s *Simulator) impact(tick uint64, h generic.Handle, p *Projectile) {
	hits := s.targets.Splash(p.To, p.Damage, p.SplashRadius, func(d combat.Damageable, amount float64) float64 {
		return s.modifier(p.DamageType, d, amount)
	})

	ev := feedback.ProjectileImpact{Projectile: h.ID(), Point: p.To, Radius: p.SplashRadius}
	for _, hit := range hits {
		fh := feedback.Hit{Entity: hit.Target.ID(), Damage: hit.Damage}
		if hit.Part != nil {
			fh.Entity, fh.Owner = hit.Part.ID(), hit.Target.ID()
		}
		ev.Hits = append(ev.Hits, fh)
	}
	s.logger.Debug("Projectile impact",
		log.Stringer("projectile", h),
		log.Uint64("tick", tick),
		log.Int("hits", len(hits)),
	)
	s.emitter.Emit(tick, feedback.EventProjectileImpact, ev)
}

// Sweep removes finished projectiles and faded flashes.
func (s *Simulator) Sweep() (projectiles, flashes int) {
	projectiles = s.projectiles.Sweep(func(p *Projectile) bool { return p.done })
	flashes = s.flashes.Sweep(func(f *Flash) bool { return f.Remaining <= 0 })
	return projectiles, flashes
}

func (s *Simulator) Len() int { return s.projectiles.Len() }

func (s *Simulator) Get(h generic.Handle) (*Projectile, bool) { return s.projectiles.Get(h) }

// EachProjectile visits projectiles in slot order, including ones already
// marked done this tick.
func (s *Simulator) EachProjectile(fn func(generic.Handle, *Projectile) bool) {
	s.projectiles.Each(fn)
}

func (s *Simulator) EachFlash(fn func(generic.Handle, *Flash) bool) {
	s.flashes.Each(fn)
}
