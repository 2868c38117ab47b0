package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strategyforge/internal/config"
	"github.com/zeusync/strategyforge/internal/core/events/bus"
	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/base"
	"github.com/zeusync/strategyforge/internal/game/feedback"
	"github.com/zeusync/strategyforge/internal/game/module"
)

func ptr[T any](v T) *T { return &v }

func duelScenario() config.Scenario {
	return config.Scenario{
		Bases: []config.BaseSpec{{
			Name:        "alpha",
			Team:        models.TeamPlayer,
			PowerOutput: ptr(100.0),
			Modules: []config.ModuleSpec{
				{Kind: module.KindDefense, PowerConsumption: ptr(60.0), Defense: &module.Defense{ArmorBonus: 5}},
				{Kind: module.KindMovement, PowerConsumption: ptr(50.0), Movement: &module.Movement{SpeedModifier: 2}},
				{Kind: module.KindWeapon, Weapon: &module.Weapon{Damage: 100, AttackSpeed: 1, Range: 50, SplashRadius: 10}},
			},
		}},
		Targets: []config.TargetSpec{
			{Name: "a", Team: models.TeamEnemy, Position: physics.V(20, 0), Health: 1000},
			{Name: "b", Team: models.TeamEnemy, Position: physics.V(25, 0), Health: 1000},
		},
	}
}

func newWorld(t *testing.T, settings Settings, sc config.Scenario, opts ...Option) *World {
	t.Helper()
	w, err := New(settings, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Populate(sc))
	return w
}

func health(t *testing.T, w *World, name string) float64 {
	t.Helper()
	for _, tv := range w.Snapshot().Targets {
		if tv.Name == name {
			return tv.Health
		}
	}
	t.Fatalf("target %s not found", name)
	return 0
}

func TestStageOrder(t *testing.T) {
	w, err := New(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{StagePower, StageEffects, StageWeapons, StageProjectiles, StageSweep}, w.StageOrder())
}

func TestStepRejectsBadDelta(t *testing.T) {
	w, err := New(DefaultSettings())
	require.NoError(t, err)
	assert.ErrorIs(t, w.Step(-1), ErrInvalidDelta)
	assert.Zero(t, w.Tick())
	require.NoError(t, w.Step(0))
	assert.Equal(t, uint64(1), w.Tick())
}

func TestDuel(t *testing.T) {
	b := bus.New()
	var impacts, powerFlips int
	_, err := b.Subscribe(feedback.EventProjectileImpact, func(bus.Event) error { impacts++; return nil })
	require.NoError(t, err)
	_, err = b.Subscribe(feedback.EventPowerChanged, func(bus.Event) error { powerFlips++; return nil })
	require.NoError(t, err)

	w := newWorld(t, DefaultSettings(), duelScenario(), WithEventBus(b))
	alpha := w.Bases()[0]

	require.NoError(t, w.Step(0.1))
	mods := alpha.Modules()
	assert.True(t, mods[0].Active())
	assert.False(t, mods[1].Active(), "movement does not fit after defense")
	assert.True(t, mods[2].Active())
	assert.Equal(t, 2, powerFlips)
	assert.Equal(t, 100.0, alpha.PowerConsumed())
	assert.Equal(t, 5.0, alpha.Armor())
	assert.Equal(t, 30.0, alpha.EffectiveMovementSpeed())
	assert.Equal(t, uint64(1), w.ShotsFired())
	assert.Equal(t, 1, w.Projectiles().Len())

	for w.Tick() < 19 {
		require.NoError(t, w.Step(0.1))
	}
	assert.Equal(t, 1000.0, health(t, w, "a"))
	assert.Equal(t, uint64(2), w.ShotsFired(), "second shot one second after the first")

	require.NoError(t, w.Step(0.1))
	assert.Equal(t, 900.0, health(t, w, "a"))
	assert.Equal(t, 950.0, health(t, w, "b"))
	assert.Equal(t, 1, impacts)
	assert.Equal(t, 1, w.Projectiles().Len(), "the impacted projectile is swept")
	assert.Len(t, w.Snapshot().Flashes, 1)
	assert.Equal(t, 2, powerFlips, "no flips under a stable budget")

	m, ok := w.StageMetrics(StageWeapons)
	require.True(t, ok)
	assert.Equal(t, uint64(20), m.ExecutionCount)
}

func TestDestroyedBaseIsRemovedWithModules(t *testing.T) {
	b := bus.New()
	var destroyed []feedback.EntityDestroyed
	_, err := b.Subscribe(feedback.EventEntityDestroyed, func(e bus.Event) error {
		destroyed = append(destroyed, e.Data.(feedback.EntityDestroyed))
		return nil
	})
	require.NoError(t, err)

	sc := config.Scenario{Bases: []config.BaseSpec{
		{
			Name: "alpha",
			Team: models.TeamPlayer,
			Modules: []config.ModuleSpec{
				{Kind: module.KindWeapon, Weapon: &module.Weapon{Damage: 100, AttackSpeed: 1, Range: 50, SplashRadius: 5}},
			},
		},
		{
			Name:     "omega",
			Team:     models.TeamEnemy,
			Position: physics.V(10, 0),
			Health:   ptr(50.0),
			Modules:  []config.ModuleSpec{{Kind: module.KindSensor, Sensor: &module.Sensor{}}},
		},
	}}
	w := newWorld(t, DefaultSettings(), sc, WithEventBus(b))
	omega := w.Bases()[1]
	sensorID := omega.Modules()[0].ID()

	for w.Tick() < 10 {
		require.NoError(t, w.Step(0.1))
	}

	require.Len(t, w.Bases(), 1)
	assert.Equal(t, "alpha", w.Bases()[0].Name())
	_, ok := w.Targets().Get(omega.ID())
	assert.False(t, ok)
	assert.Equal(t, 1000.0, w.Bases()[0].Health(), "the shooter is outside the blast")

	require.Len(t, destroyed, 2)
	assert.Equal(t, feedback.EntityDestroyed{Entity: omega.ID(), Kind: "base", Team: models.TeamEnemy}, destroyed[0])
	assert.Equal(t, sensorID, destroyed[1].Entity)
	assert.Equal(t, "module", destroyed[1].Kind)

	require.NoError(t, w.Step(0.1))
	assert.Equal(t, uint64(1), w.ShotsFired(), "nothing left to shoot")
}

func TestSplashDestroysModulesOnSurvivingBase(t *testing.T) {
	b := bus.New()
	var (
		destroyed []feedback.EntityDestroyed
		impacts   []feedback.ProjectileImpact
	)
	_, err := b.Subscribe(feedback.EventEntityDestroyed, func(e bus.Event) error {
		destroyed = append(destroyed, e.Data.(feedback.EntityDestroyed))
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(feedback.EventProjectileImpact, func(e bus.Event) error {
		impacts = append(impacts, e.Data.(feedback.ProjectileImpact))
		return nil
	})
	require.NoError(t, err)

	sc := config.Scenario{Bases: []config.BaseSpec{
		{
			Name: "alpha",
			Team: models.TeamPlayer,
			Modules: []config.ModuleSpec{
				{Kind: module.KindWeapon, Weapon: &module.Weapon{Damage: 100, AttackSpeed: 0.5, Range: 50, SplashRadius: 5}},
			},
		},
		{
			Name:     "omega",
			Team:     models.TeamEnemy,
			Position: physics.V(10, 0),
			Modules: []config.ModuleSpec{
				{Kind: module.KindSensor, Sensor: &module.Sensor{}},
				{Kind: module.KindStorage, Offset: physics.V(0, 8), Storage: &module.Storage{Capacity: 10}},
			},
		},
	}}
	w := newWorld(t, DefaultSettings(), sc, WithEventBus(b))
	omega := w.Bases()[1]
	sensor, storage := omega.Modules()[0], omega.Modules()[1]

	for w.Tick() < 10 {
		require.NoError(t, w.Step(0.1))
	}

	require.Len(t, impacts, 1)
	assert.Contains(t, impacts[0].Hits, feedback.Hit{Entity: omega.ID(), Damage: 100})
	assert.Contains(t, impacts[0].Hits, feedback.Hit{Entity: sensor.ID(), Owner: omega.ID(), Damage: 100})
	assert.Len(t, impacts[0].Hits, 2, "the storage module sits outside the blast")

	assert.Equal(t, 900.0, omega.Health())
	assert.Equal(t, []*module.Module{storage}, omega.Modules())
	assert.Equal(t, []feedback.EntityDestroyed{{Entity: sensor.ID(), Kind: "module", Team: models.TeamEnemy}}, destroyed)
}

func TestDeterministicChecksum(t *testing.T) {
	run := func(workers int) []uint64 {
		settings := DefaultSettings()
		settings.Workers = workers
		sc := duelScenario()
		sc.Bases = append(sc.Bases, config.BaseSpec{
			Name:     "omega",
			Team:     models.TeamEnemy,
			Position: physics.V(30, 10),
			Modules: []config.ModuleSpec{
				{Kind: module.KindEnergy, Energy: &module.Energy{PowerOutput: 40, PowerCapacity: 20}},
				{Kind: module.KindWeapon, Weapon: &module.Weapon{Damage: 30, AttackSpeed: 3, Range: 60, SplashRadius: 4}},
				{Kind: module.KindSensor, Sensor: &module.Sensor{VisionRange: 100}},
			},
		})
		w := newWorld(t, settings, sc)
		var sums []uint64
		for i := 0; i < 120; i++ {
			require.NoError(t, w.Step(1.0/30))
			sums = append(sums, w.Checksum())
		}
		return sums
	}

	first := run(1)
	assert.Equal(t, first, run(1))
	assert.Equal(t, first, run(4), "per-base fan-out does not change the outcome")
}

func TestBudgetInvariantHoldsEveryTick(t *testing.T) {
	sc := duelScenario()
	sc.Bases[0].Modules = append(sc.Bases[0].Modules,
		config.ModuleSpec{Kind: module.KindSensor, Sensor: &module.Sensor{VisionRange: 20}},
		config.ModuleSpec{Kind: module.KindUtility, Utility: &module.Utility{EffectType: module.EffectRepair, EffectStrength: 1}},
	)
	w := newWorld(t, DefaultSettings(), sc)

	for i := 0; i < 60; i++ {
		require.NoError(t, w.Step(0.05))
		for _, b := range w.Bases() {
			var sum float64
			for _, m := range b.Modules() {
				if m.Active() {
					sum += m.PowerConsumption()
				}
			}
			assert.LessOrEqual(t, sum, b.PowerOutput()+1e-9)
			assert.LessOrEqual(t, b.PowerConsumed(), b.MaxPower())
		}
	}
}

func TestSnapshotIsJSON(t *testing.T) {
	w := newWorld(t, DefaultSettings(), duelScenario())
	require.NoError(t, w.Step(0.1))

	raw, err := json.Marshal(w.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 1, decoded["tick"])

	bases := decoded["bases"].([]any)
	require.Len(t, bases, 1)
	modules := bases[0].(map[string]any)["modules"].([]any)
	require.Len(t, modules, 3)
	assert.Equal(t, "weapon", modules[2].(map[string]any)["kind"])
	assert.Equal(t, "player", bases[0].(map[string]any)["team"])
	assert.Len(t, decoded["projectiles"], 1)
}

func TestAddBaseAssignsFreshIDs(t *testing.T) {
	w, err := New(DefaultSettings())
	require.NoError(t, err)
	a, err := w.AddBase("a", models.TeamPlayer)
	require.NoError(t, err)
	b, err := w.AddBase("b", models.TeamEnemy, base.WithPosition(physics.V(1, 1)))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, b.ID(), w.NextID())
}
