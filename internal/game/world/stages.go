package world

import (
	"context"

	"github.com/zeusync/strategyforge/internal/core/observability/log"
	"github.com/zeusync/strategyforge/internal/core/systems"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/feedback"
	"github.com/zeusync/strategyforge/internal/game/module"
	"github.com/zeusync/strategyforge/pkg/concurrent"
)

const (
	StagePower       = "power"
	StageEffects     = "effects"
	StageWeapons     = "weapons"
	StageProjectiles = "projectiles"
	StageSweep       = "sweep"
)

// powerStage reallocates every base's budget. Bases are independent, so the
// pass may fan out; feedback is emitted afterwards in base order.
type powerStage struct{}

func (powerStage) Name() string                           { return StagePower }
func (powerStage) ExecutionPhase() systems.ExecutionPhase { return systems.PhasePreUpdate }

func (powerStage) Update(_ float64, w *World) error {
	changed := make([][]*module.Module, len(w.bases))
	err := concurrent.ForEach(context.Background(), indices(len(w.bases)), w.settings.Workers, func(_ context.Context, i int) error {
		changed[i] = w.bases[i].AllocatePower()
		return nil
	})
	if err != nil {
		return err
	}

	for i, b := range w.bases {
		for _, m := range changed[i] {
			w.logger.Debug("Module power changed",
				log.Uint64("tick", w.tick),
				log.Uint64("base", uint64(b.ID())),
				log.Uint64("module", uint64(m.ID())),
				log.Stringer("kind", m.Kind()),
				log.Bool("active", m.Active()),
			)
			w.emitter.Emit(w.tick, feedback.EventPowerChanged, feedback.PowerChanged{
				Base:   b.ID(),
				Module: m.ID(),
				Kind:   m.Kind(),
				Active: m.Active(),
				Tint:   m.Tint(),
			})
		}
	}
	return nil
}

type effectsStage struct{}

func (effectsStage) Name() string                           { return StageEffects }
func (effectsStage) ExecutionPhase() systems.ExecutionPhase { return systems.PhaseUpdate }

func (effectsStage) Update(dt float64, w *World) error {
	return concurrent.ForEach(context.Background(), w.bases, w.settings.Workers, func(_ context.Context, b *base.Base) error {
		b.ApplyModuleEffects(dt)
		return nil
	})
}

type weaponStage struct{}

func (weaponStage) Name() string                           { return StageWeapons }
func (weaponStage) ExecutionPhase() systems.ExecutionPhase { return systems.PhasePostUpdate }

func (weaponStage) Update(dt float64, w *World) error {
	w.shotsFired += uint64(w.weapons.Update(w.tick, dt, w.bases))
	return nil
}

type projectileStage struct{}

func (projectileStage) Name() string                           { return StageProjectiles }
func (projectileStage) ExecutionPhase() systems.ExecutionPhase { return systems.PhaseLateUpdate }

func (projectileStage) Update(dt float64, w *World) error {
	w.projectiles.Step(w.tick, dt)
	return nil
}

// sweepStage performs the deferred removals of the tick.
type sweepStage struct{}

func (sweepStage) Name() string                           { return StageSweep }
func (sweepStage) ExecutionPhase() systems.ExecutionPhase { return systems.PhaseCleanup }

// Dead bases go first and take all their modules with them; surviving bases
// then drop their own destroyed modules.
func (sweepStage) Update(_ float64, w *World) error {
	w.projectiles.Sweep()

	for _, d := range w.targets.Sweep() {
		kind := "target"
		if _, ok := d.(*base.Base); ok {
			kind = "base"
		}
		w.destroyed(kind, d.ID(), d.Team())
	}
	w.removeDestroyedBases()

	for _, b := range w.bases {
		for _, m := range b.SweepDestroyed() {
			w.destroyed("module", m.ID(), m.Team())
		}
	}
	return nil
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
