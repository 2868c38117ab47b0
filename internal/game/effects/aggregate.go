// Package effects folds the contributions of powered modules into the
// derived stats of their base.
package effects

import "github.com/zeusync/strategyforge/internal/game/module"

// MaxDamageResistance caps stacked resistance from defense modules.
const MaxDamageResistance = 0.9

// Source is a module as seen by the aggregator.
type Source interface {
	Active() bool
	Params() module.Params
	PowerConsumption() float64
}

// Stats are the derived base values folded from active modules.
type Stats struct {
	SpeedMultiplier         float64 `json:"speed_multiplier"`
	TerrainPenaltyReduction float64 `json:"terrain_penalty_reduction"`
	Armor                   float64 `json:"armor"`
	MaxShield               float64 `json:"max_shield"`
	ShieldRechargeRate      float64 `json:"shield_recharge_rate"`
	DamageResistance        float64 `json:"damage_resistance"`
	PowerGenerated          float64 `json:"power_generated"`
	PowerCapacity           float64 `json:"power_capacity"`
	PowerConsumed           float64 `json:"power_consumed"`
	HasWeapons              bool    `json:"has_weapons"`
}

// Neutral is the accumulator before any module contributes.
func Neutral() Stats {
	return Stats{SpeedMultiplier: 1}
}

// Aggregate walks the active sources only. Kinds without a direct stat
// contribution still add their power draw.
func Aggregate[S Source](sources []S) Stats {
	st := Neutral()
	for _, s := range sources {
		if !s.Active() {
			continue
		}
		st.PowerConsumed += s.PowerConsumption()

		switch p := s.Params().(type) {
		case module.Movement:
			st.SpeedMultiplier *= p.SpeedModifier
			st.TerrainPenaltyReduction = max(st.TerrainPenaltyReduction, p.TerrainPenaltyReduction)
		case module.Defense:
			st.Armor += p.ArmorBonus
			st.MaxShield = max(st.MaxShield, p.ShieldStrength)
			st.ShieldRechargeRate += p.ShieldRechargeRate
			st.DamageResistance = min(MaxDamageResistance, st.DamageResistance+p.DamageResistance)
		case module.Energy:
			st.PowerGenerated += p.PowerOutput
			st.PowerCapacity += p.PowerCapacity
		case module.Weapon:
			st.HasWeapons = true
		}
	}
	return st
}
