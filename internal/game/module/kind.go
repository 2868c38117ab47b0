package module

import (
	"fmt"
	"strings"
)

// Kind is the variant tag of a module. Priority and attachment matching
// compare kinds only, never parameter values.
type Kind uint8

const (
	KindMovement Kind = iota
	KindStorage
	KindDefense
	KindProduction
	KindSensor
	KindEnergy
	KindWeapon
	KindUtility
)

var kindNames = [...]string{
	KindMovement:   "movement",
	KindStorage:    "storage",
	KindDefense:    "defense",
	KindProduction: "production",
	KindSensor:     "sensor",
	KindEnergy:     "energy",
	KindWeapon:     "weapon",
	KindUtility:    "utility",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseKind(s string) (Kind, error) {
	return parseEnum[Kind](s, kindNames[:], "module kind")
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// DamageType of a weapon's projectiles.
type DamageType uint8

const (
	DamageKinetic DamageType = iota
	DamageEnergy
	DamageExplosive
	DamageChemical
	DamageSonic
	DamageEMP
)

var damageNames = [...]string{
	DamageKinetic:   "kinetic",
	DamageEnergy:    "energy",
	DamageExplosive: "explosive",
	DamageChemical:  "chemical",
	DamageSonic:     "sonic",
	DamageEMP:       "emp",
}

func (d DamageType) String() string {
	if int(d) < len(damageNames) {
		return damageNames[d]
	}
	return fmt.Sprintf("damage(%d)", uint8(d))
}

func ParseDamageType(s string) (DamageType, error) {
	return parseEnum[DamageType](s, damageNames[:], "damage type")
}

func (d DamageType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DamageType) UnmarshalText(b []byte) error {
	v, err := ParseDamageType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ResourceType held by storage modules.
type ResourceType uint8

const (
	ResourceBasic ResourceType = iota
	ResourceWood
	ResourceStone
	ResourceIron
	ResourceCopper
	ResourceAlloy
	ResourceEnergy
	ResourceFuel
	ResourceAmmunition
	ResourceResearch
	ResourcePopulation
)

var resourceNames = [...]string{
	ResourceBasic:      "basic",
	ResourceWood:       "wood",
	ResourceStone:      "stone",
	ResourceIron:       "iron",
	ResourceCopper:     "copper",
	ResourceAlloy:      "alloy",
	ResourceEnergy:     "energy",
	ResourceFuel:       "fuel",
	ResourceAmmunition: "ammunition",
	ResourceResearch:   "research",
	ResourcePopulation: "population",
}

func (r ResourceType) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return fmt.Sprintf("resource(%d)", uint8(r))
}

func ParseResourceType(s string) (ResourceType, error) {
	return parseEnum[ResourceType](s, resourceNames[:], "resource type")
}

func (r ResourceType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *ResourceType) UnmarshalText(b []byte) error {
	v, err := ParseResourceType(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// UtilityEffect of a utility module.
type UtilityEffect uint8

const (
	EffectRepair UtilityEffect = iota
	EffectCloak
	EffectJammer
	EffectShieldBoost
	EffectSpeedBoost
	EffectDamageAmp
	EffectHeal
	EffectStun
	EffectSlow
	EffectReveal
	EffectTeleport
	EffectResourceBoost
)

var effectNames = [...]string{
	EffectRepair:        "repair",
	EffectCloak:         "cloak",
	EffectJammer:        "jammer",
	EffectShieldBoost:   "shield_boost",
	EffectSpeedBoost:    "speed_boost",
	EffectDamageAmp:     "damage_amp",
	EffectHeal:          "heal",
	EffectStun:          "stun",
	EffectSlow:          "slow",
	EffectReveal:        "reveal",
	EffectTeleport:      "teleport",
	EffectResourceBoost: "resource_boost",
}

func (e UtilityEffect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

func ParseUtilityEffect(s string) (UtilityEffect, error) {
	return parseEnum[UtilityEffect](s, effectNames[:], "utility effect")
}

func (e UtilityEffect) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *UtilityEffect) UnmarshalText(b []byte) error {
	v, err := ParseUtilityEffect(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func parseEnum[E ~uint8](s string, names []string, what string) (E, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidParameter, what, s)
}
