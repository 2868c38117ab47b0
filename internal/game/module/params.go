package module

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParameter = errors.New("invalid module parameter")

// Params is the closed set of module variants. Each variant carries its own
// immutable parameters; Kind is the tag used for priority and matching.
type Params interface {
	Kind() Kind
	// Validate rejects parameter sets the simulation does not defend against
	// at runtime.
	Validate() error
	// MaxHealth and PowerConsumption are the catalogue values a module of this
	// variant is built with.
	MaxHealth() float64
	PowerConsumption() float64

	sealed()
}

// Movement enhances base mobility.
type Movement struct {
	SpeedModifier           float64 `yaml:"speed_modifier" json:"speed_modifier"`
	Efficiency              float64 `yaml:"efficiency" json:"efficiency"`
	TerrainPenaltyReduction float64 `yaml:"terrain_penalty_reduction" json:"terrain_penalty_reduction"`
}

// Storage increases resource capacity.
type Storage struct {
	Capacity          int          `yaml:"capacity" json:"capacity"`
	ResourceType      ResourceType `yaml:"resource_type" json:"resource_type"`
	PassiveGeneration float64      `yaml:"passive_generation" json:"passive_generation"`
}

// Defense improves base survivability.
type Defense struct {
	ArmorBonus         float64 `yaml:"armor_bonus" json:"armor_bonus"`
	ShieldStrength     float64 `yaml:"shield_strength" json:"shield_strength"`
	ShieldRechargeRate float64 `yaml:"shield_recharge_rate" json:"shield_recharge_rate"`
	DamageResistance   float64 `yaml:"damage_resistance" json:"damage_resistance"`
}

// Production enhances unit and building production.
type Production struct {
	BuildSpeed     float64 `yaml:"build_speed" json:"build_speed"`
	QueueSlots     uint8   `yaml:"queue_slots" json:"queue_slots"`
	CostReduction  float64 `yaml:"cost_reduction" json:"cost_reduction"`
	ExperienceGain float64 `yaml:"experience_gain" json:"experience_gain"`
}

// Sensor improves detection and awareness.
type Sensor struct {
	DetectionRadius  float64 `yaml:"detection_radius" json:"detection_radius"`
	StealthDetection float64 `yaml:"stealth_detection" json:"stealth_detection"`
	VisionRange      float64 `yaml:"vision_range" json:"vision_range"`
	ScanCooldown     float64 `yaml:"scan_cooldown" json:"scan_cooldown"`
}

// Energy generates power and adds capacity.
type Energy struct {
	PowerOutput       float64 `yaml:"power_output" json:"power_output"`
	PowerCapacity     float64 `yaml:"power_capacity" json:"power_capacity"`
	Efficiency        float64 `yaml:"efficiency" json:"efficiency"`
	PowerTransferRate float64 `yaml:"power_transfer_rate" json:"power_transfer_rate"`
}

// Weapon gives the base offensive capability.
type Weapon struct {
	Damage        float64    `yaml:"damage" json:"damage"`
	AttackSpeed   float64    `yaml:"attack_speed" json:"attack_speed"`
	Range         float64    `yaml:"range" json:"range"`
	DamageType    DamageType `yaml:"damage_type" json:"damage_type"`
	SplashRadius  float64    `yaml:"splash_radius" json:"splash_radius"`
	TrackingSpeed float64    `yaml:"tracking_speed" json:"tracking_speed"`
}

// Utility provides a support effect.
type Utility struct {
	EffectType     UtilityEffect `yaml:"effect_type" json:"effect_type"`
	EffectStrength float64       `yaml:"effect_strength" json:"effect_strength"`
	AreaOfEffect   float64       `yaml:"area_of_effect" json:"area_of_effect"`
	Cooldown       float64       `yaml:"cooldown" json:"cooldown"`
}

func (Movement) Kind() Kind   { return KindMovement }
func (Storage) Kind() Kind    { return KindStorage }
func (Defense) Kind() Kind    { return KindDefense }
func (Production) Kind() Kind { return KindProduction }
func (Sensor) Kind() Kind     { return KindSensor }
func (Energy) Kind() Kind     { return KindEnergy }
func (Weapon) Kind() Kind     { return KindWeapon }
func (Utility) Kind() Kind    { return KindUtility }

func (Movement) sealed()   {}
func (Storage) sealed()    {}
func (Defense) sealed()    {}
func (Production) sealed() {}
func (Sensor) sealed()     {}
func (Energy) sealed()     {}
func (Weapon) sealed()     {}
func (Utility) sealed()    {}

func (Movement) MaxHealth() float64   { return 100 }
func (Storage) MaxHealth() float64    { return 120 }
func (Defense) MaxHealth() float64    { return 150 }
func (Production) MaxHealth() float64 { return 110 }
func (Sensor) MaxHealth() float64     { return 80 }
func (Energy) MaxHealth() float64     { return 100 }
func (Weapon) MaxHealth() float64     { return 100 }
func (Utility) MaxHealth() float64    { return 90 }

// More efficient drives draw less, never below 10% of the nominal 15.
func (m Movement) PowerConsumption() float64 {
	return 15 * math.Max(1-m.Efficiency, 0.1)
}

func (s Storage) PowerConsumption() float64 {
	return 5 + s.PassiveGeneration*0.5
}

func (d Defense) PowerConsumption() float64 {
	return 20 + d.ShieldStrength*0.01 + d.ShieldRechargeRate*2
}

func (p Production) PowerConsumption() float64 {
	return 10 + 5*float64(p.QueueSlots)
}

func (s Sensor) PowerConsumption() float64 {
	return 25 * (1 + s.VisionRange*0.01)
}

// Energy modules generate power and never draw from the budget.
func (Energy) PowerConsumption() float64 { return 0 }

func (w Weapon) PowerConsumption() float64 {
	return 30 + w.Damage*w.AttackSpeed*0.1
}

func (u Utility) PowerConsumption() float64 {
	switch u.EffectType {
	case EffectRepair:
		return 15 * u.EffectStrength
	case EffectCloak:
		return 20 * u.AreaOfEffect * 0.1
	case EffectShieldBoost:
		return 25 * u.EffectStrength
	default:
		return 15
	}
}

// Cooldown is the minimum interval between shots in seconds.
func (w Weapon) Cooldown() float64 { return 1 / w.AttackSpeed }

func (m Movement) Validate() error {
	if err := nonNegative("speed_modifier", m.SpeedModifier); err != nil {
		return err
	}
	if err := unitInterval("efficiency", m.Efficiency); err != nil {
		return err
	}
	return unitInterval("terrain_penalty_reduction", m.TerrainPenaltyReduction)
}

func (s Storage) Validate() error {
	if s.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d is negative", ErrInvalidParameter, s.Capacity)
	}
	if int(s.ResourceType) >= len(resourceNames) {
		return fmt.Errorf("%w: resource type %d", ErrInvalidParameter, s.ResourceType)
	}
	return nonNegative("passive_generation", s.PassiveGeneration)
}

func (d Defense) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"armor_bonus", d.ArmorBonus},
		{"shield_strength", d.ShieldStrength},
		{"shield_recharge_rate", d.ShieldRechargeRate},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return unitInterval("damage_resistance", d.DamageResistance)
}

func (p Production) Validate() error {
	if err := nonNegative("build_speed", p.BuildSpeed); err != nil {
		return err
	}
	if err := unitInterval("cost_reduction", p.CostReduction); err != nil {
		return err
	}
	return nonNegative("experience_gain", p.ExperienceGain)
}

func (s Sensor) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"detection_radius", s.DetectionRadius},
		{"vision_range", s.VisionRange},
		{"scan_cooldown", s.ScanCooldown},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return unitInterval("stealth_detection", s.StealthDetection)
}

func (e Energy) Validate() error {
	if err := nonNegative("power_output", e.PowerOutput); err != nil {
		return err
	}
	if err := nonNegative("power_capacity", e.PowerCapacity); err != nil {
		return err
	}
	if err := unitInterval("efficiency", e.Efficiency); err != nil {
		return err
	}
	return nonNegative("power_transfer_rate", e.PowerTransferRate)
}

func (w Weapon) Validate() error {
	if !(w.AttackSpeed > 0) || math.IsInf(w.AttackSpeed, 0) {
		return fmt.Errorf("%w: attack_speed must be positive, got %v", ErrInvalidParameter, w.AttackSpeed)
	}
	if int(w.DamageType) >= len(damageNames) {
		return fmt.Errorf("%w: damage type %d", ErrInvalidParameter, w.DamageType)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"damage", w.Damage},
		{"range", w.Range},
		{"splash_radius", w.SplashRadius},
		{"tracking_speed", w.TrackingSpeed},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

func (u Utility) Validate() error {
	if int(u.EffectType) >= len(effectNames) {
		return fmt.Errorf("%w: utility effect %d", ErrInvalidParameter, u.EffectType)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"effect_strength", u.EffectStrength},
		{"area_of_effect", u.AreaOfEffect},
		{"cooldown", u.Cooldown},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func unitInterval(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
