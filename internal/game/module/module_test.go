package module

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
)

func TestCatalogueValues(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		health float64
		cost   float64
	}{
		{"movement", Movement{SpeedModifier: 1.2, Efficiency: 0.4}, 100, 9},
		{"movement efficiency floor", Movement{SpeedModifier: 1, Efficiency: 1}, 100, 1.5},
		{"storage", Storage{Capacity: 100, PassiveGeneration: 4}, 120, 7},
		{"defense", Defense{ShieldStrength: 200, ShieldRechargeRate: 5}, 150, 32},
		{"production", Production{QueueSlots: 3}, 110, 25},
		{"sensor", Sensor{VisionRange: 100}, 80, 50},
		{"energy", Energy{PowerOutput: 50}, 100, 0},
		{"weapon", Weapon{Damage: 20, AttackSpeed: 2, Range: 100}, 100, 34},
		{"utility repair", Utility{EffectType: EffectRepair, EffectStrength: 2}, 90, 30},
		{"utility cloak", Utility{EffectType: EffectCloak, AreaOfEffect: 50}, 90, 100},
		{"utility shield boost", Utility{EffectType: EffectShieldBoost, EffectStrength: 1}, 90, 25},
		{"utility other", Utility{EffectType: EffectReveal, EffectStrength: 9}, 90, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(1, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.health, m.MaxHealth())
			assert.Equal(t, tt.health, m.Health())
			assert.InDelta(t, tt.cost, m.PowerConsumption(), 1e-9)
			assert.False(t, m.Active())
			assert.Equal(t, TintInactive, m.Tint())
		})
	}
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"zero attack speed", Weapon{Damage: 10, AttackSpeed: 0, Range: 10}},
		{"negative attack speed", Weapon{Damage: 10, AttackSpeed: -1, Range: 10}},
		{"infinite attack speed", Weapon{Damage: 10, AttackSpeed: math.Inf(1), Range: 10}},
		{"negative splash", Weapon{Damage: 10, AttackSpeed: 1, Range: 10, SplashRadius: -1}},
		{"negative range", Weapon{Damage: 10, AttackSpeed: 1, Range: -5}},
		{"nan damage", Weapon{Damage: math.NaN(), AttackSpeed: 1}},
		{"resistance above one", Defense{DamageResistance: 1.5}},
		{"efficiency above one", Movement{Efficiency: 2}},
		{"negative capacity", Storage{Capacity: -1}},
		{"unknown effect", Utility{EffectType: UtilityEffect(99)}},
		{"negative energy output", Energy{PowerOutput: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(1, tt.params)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	_, err := New(1, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOptions(t *testing.T) {
	m, err := New(7, Weapon{Damage: 10, AttackSpeed: 1, Range: 10},
		WithPowerConsumption(40),
		WithOffset(physics.V(2, -3)),
		WithTeam(models.TeamEnemy),
		WithHealth(500),
	)
	require.NoError(t, err)
	assert.Equal(t, models.EntityID(7), m.ID())
	assert.Equal(t, 40.0, m.PowerConsumption())
	assert.Equal(t, physics.V(2, -3), m.Offset())
	assert.Equal(t, models.TeamEnemy, m.Team())
	assert.Equal(t, 100.0, m.Health(), "health is capped at max")
	require.NotNil(t, m.Cooldown())
	assert.True(t, m.Cooldown().Ready())

	_, err = New(1, Energy{PowerOutput: 10}, WithPowerConsumption(5))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = New(1, Sensor{}, WithPowerConsumption(-1))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	s, err := New(1, Sensor{})
	require.NoError(t, err)
	assert.Nil(t, s.Cooldown())
	_, ok := s.Weapon()
	assert.False(t, ok)
}

func TestApplyActivationReportsFlips(t *testing.T) {
	a, _ := New(1, Defense{})
	b, _ := New(2, Sensor{})
	c, _ := New(3, Storage{})
	mods := []*Module{a, b, c}

	changed := ApplyActivation(mods, []bool{true, false, true})
	assert.Equal(t, []*Module{a, c}, changed)
	assert.Equal(t, TintActive, a.Tint())
	assert.Equal(t, TintInactive, b.Tint())

	changed = ApplyActivation(mods, []bool{true, false, true})
	assert.Empty(t, changed)

	changed = ApplyActivation(mods, []bool{true})
	assert.Equal(t, []*Module{c}, changed)
	assert.False(t, c.Active())
}

func TestApplyDamage(t *testing.T) {
	m, _ := New(1, Sensor{})
	m.ApplyDamage(-5)
	assert.Equal(t, 80.0, m.Health())
	m.ApplyDamage(30)
	assert.Equal(t, 50.0, m.Health())
	m.ApplyDamage(100)
	assert.Equal(t, 0.0, m.Health())
	assert.True(t, m.Destroyed())
}

func TestCooldownCadence(t *testing.T) {
	var c Cooldown
	assert.True(t, c.Ready())
	assert.Zero(t, c.Remaining())
	assert.False(t, c.Advance(1), "advancing a ready timer is a no-op")

	c.Trigger(0.5)
	assert.Equal(t, Cooling, c.State())
	assert.InDelta(t, 0.5, c.Remaining(), 1e-12)

	became := false
	for i := 0; i < 5; i++ {
		assert.False(t, became)
		became = c.Advance(0.1)
	}
	assert.True(t, became, "five 0.1s ticks reach a 0.5s cooldown")
	assert.True(t, c.Ready())
}

func TestParseEnums(t *testing.T) {
	k, err := ParseKind(" Weapon ")
	require.NoError(t, err)
	assert.Equal(t, KindWeapon, k)

	d, err := ParseDamageType("emp")
	require.NoError(t, err)
	assert.Equal(t, DamageEMP, d)

	e, err := ParseUtilityEffect("shield_boost")
	require.NoError(t, err)
	assert.Equal(t, EffectShieldBoost, e)

	r, err := ParseResourceType("ammunition")
	require.NoError(t, err)
	assert.Equal(t, ResourceAmmunition, r)

	_, err = ParseKind("turret")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	var dt DamageType
	require.NoError(t, dt.UnmarshalText([]byte("sonic")))
	assert.Equal(t, DamageSonic, dt)
	assert.Error(t, dt.UnmarshalText([]byte("laser")))
	assert.Equal(t, DamageSonic, dt, "failed decode leaves value unchanged")
	assert.Equal(t, "kind(200)", Kind(200).String())
}
