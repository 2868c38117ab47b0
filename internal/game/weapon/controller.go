// Package weapon drives the firing cycle of weapon modules.
package weapon

import (
	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/combat"
	"github.com/zeusync/strategyforge/internal/game/projectile"
	"github.com/zeusync/strategyforge/pkg/generic"
)

// Spawner receives the shots a controller decides to fire.
type Spawner interface {
	Spawn(tick uint64, shot projectile.Shot) generic.Handle
}

// Controller fires powered weapons at the nearest hostile in range.
type Controller struct {
	targets *combat.Registry
	spawner Spawner
	logger  log.Log
}

func NewController(targets *combat.Registry, spawner Spawner, logger log.Log) *Controller {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Controller{targets: targets, spawner: spawner, logger: logger}
}

// Update runs one firing pass over bases in order and returns the number of
// shots fired. Only powered weapons advance their cooldown; a ready weapon
// with nothing in range stays ready.
func (c *Controller) Update(tick uint64, dt float64, bases []*base.Base) int {
	fired := 0
	for _, b := range bases {
		if b.Destroyed() {
			continue
		}
		for _, m := range b.Modules() {
			w, ok := m.Weapon()
			if !ok || !m.Active() || m.Destroyed() {
				continue
			}
			cd := m.Cooldown()
			cd.Advance(dt)
			if !cd.Ready() {
				continue
			}

			from := b.ModulePosition(m)
			target, dist, found := c.targets.Nearest(from, b.Team(), w.Range)
			if !found {
				continue
			}
			c.spawner.Spawn(tick, projectile.Shot{
				Base:         b.ID(),
				Weapon:       m.ID(),
				Target:       target.ID(),
				Damage:       w.Damage,
				DamageType:   w.DamageType,
				SplashRadius: w.SplashRadius,
				From:         from,
				To:           target.Position(),
			})
			cd.Trigger(w.Cooldown())
			fired++

			if c.logger.Enabled(log.LevelDebug) {
				c.logger.Debug("Weapon fired",
					log.Uint64("tick", tick),
					log.Uint64("weapon", uint64(m.ID())),
					log.Uint64("target", uint64(target.ID())),
					log.Float64("distance", dist),
				)
			}
		}
	}
	return fired
}
