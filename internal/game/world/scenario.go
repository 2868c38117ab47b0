package world

import (
	"fmt"

	"github.com/zeusync/strategyforge/internal/config"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/projectile"
)

// SettingsFromConfig maps the simulation section onto world settings.
func SettingsFromConfig(c config.SimulationConfig) Settings {
	return Settings{
		Workers: c.Workers,
		Projectile: projectile.Settings{
			Speed:         c.ProjectileSpeed,
			Lifetime:      c.ProjectileLifetime.Seconds(),
			FlashDuration: c.ImpactFlashDuration.Seconds(),
		},
	}
}

// Populate adds the scenario's bases, their modules in order, and the
// free-standing targets.
func (w *World) Populate(sc config.Scenario) error {
	for _, spec := range sc.Bases {
		opts := []base.Option{base.WithPosition(spec.Position)}
		if spec.Health != nil {
			opts = append(opts, base.WithHealth(*spec.Health))
		}
		if spec.MovementSpeed != nil {
			opts = append(opts, base.WithMovementSpeed(*spec.MovementSpeed))
		}
		if spec.PowerOutput != nil {
			opts = append(opts, base.WithPowerOutput(*spec.PowerOutput))
		}
		b, err := w.AddBase(spec.Name, spec.Team, opts...)
		if err != nil {
			return fmt.Errorf("base %s: %w", spec.Name, err)
		}

		for i, ms := range spec.Modules {
			p, err := ms.Params()
			if err != nil {
				return fmt.Errorf("base %s module %d: %w", spec.Name, i, err)
			}
			if _, err := b.Attach(w.NextID(), p, ms.Options()...); err != nil {
				return fmt.Errorf("base %s module %d: %w", spec.Name, i, err)
			}
		}
	}

	for _, spec := range sc.Targets {
		_, err := w.AddTarget(spec.Name, spec.Team, spec.Position, spec.Health,
			combat.WithShield(spec.Shield, spec.Shield),
			combat.WithArmor(spec.Armor),
		)
		if err != nil {
			return fmt.Errorf("target %s: %w", spec.Name, err)
		}
	}
	return nil
}
