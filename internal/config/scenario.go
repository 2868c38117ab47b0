package config

import (
	"fmt"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
	"github.com/zeusync/strategyforge/internal/game/module"
)

// Scenario is the initial population of the world.
type Scenario struct {
	Bases   []BaseSpec   `json:"bases" yaml:"bases"`
	Targets []TargetSpec `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// BaseSpec describes one base. Unset optional values keep the base defaults.
type BaseSpec struct {
	Name          string       `json:"name" yaml:"name"`
	Team          models.Team  `json:"team" yaml:"team"`
	Position      physics.Vec2 `json:"position" yaml:"position"`
	Health        *float64     `json:"health,omitempty" yaml:"health,omitempty"`
	MovementSpeed *float64     `json:"movement_speed,omitempty" yaml:"movement_speed,omitempty"`
	PowerOutput   *float64     `json:"power_output,omitempty" yaml:"power_output,omitempty"`
	Modules       []ModuleSpec `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// ModuleSpec names a kind and carries exactly one parameter block of that
// kind, in attachment order.
type ModuleSpec struct {
	Kind             module.Kind  `json:"kind" yaml:"kind"`
	Offset           physics.Vec2 `json:"offset" yaml:"offset"`
	PowerConsumption *float64     `json:"power_consumption,omitempty" yaml:"power_consumption,omitempty"`

	Movement   *module.Movement   `json:"movement,omitempty" yaml:"movement,omitempty"`
	Storage    *module.Storage    `json:"storage,omitempty" yaml:"storage,omitempty"`
	Defense    *module.Defense    `json:"defense,omitempty" yaml:"defense,omitempty"`
	Production *module.Production `json:"production,omitempty" yaml:"production,omitempty"`
	Sensor     *module.Sensor     `json:"sensor,omitempty" yaml:"sensor,omitempty"`
	Energy     *module.Energy     `json:"energy,omitempty" yaml:"energy,omitempty"`
	Weapon     *module.Weapon     `json:"weapon,omitempty" yaml:"weapon,omitempty"`
	Utility    *module.Utility    `json:"utility,omitempty" yaml:"utility,omitempty"`
}

// TargetSpec is a free-standing damageable entity.
type TargetSpec struct {
	Name     string       `json:"name" yaml:"name"`
	Team     models.Team  `json:"team" yaml:"team"`
	Position physics.Vec2 `json:"position" yaml:"position"`
	Health   float64      `json:"health" yaml:"health"`
	Shield   float64      `json:"shield,omitempty" yaml:"shield,omitempty"`
	Armor    float64      `json:"armor,omitempty" yaml:"armor,omitempty"`
}

// Params returns the parameter block matching Kind. A missing block, or a
// block of another kind, is an error.
func (m ModuleSpec) Params() (module.Params, error) {
	var (
		found module.Params
		count int
	)
	take := func(p module.Params) {
		count++
		if p.Kind() == m.Kind {
			found = p
		}
	}
	if m.Movement != nil {
		take(*m.Movement)
	}
	if m.Storage != nil {
		take(*m.Storage)
	}
	if m.Defense != nil {
		take(*m.Defense)
	}
	if m.Production != nil {
		take(*m.Production)
	}
	if m.Sensor != nil {
		take(*m.Sensor)
	}
	if m.Energy != nil {
		take(*m.Energy)
	}
	if m.Weapon != nil {
		take(*m.Weapon)
	}
	if m.Utility != nil {
		take(*m.Utility)
	}

	switch {
	case found == nil:
		return nil, fmt.Errorf("%w: %s module has no %s block", ErrInvalidConfig, m.Kind, m.Kind)
	case count > 1:
		return nil, fmt.Errorf("%w: %s module carries blocks of other kinds", ErrInvalidConfig, m.Kind)
	}
	return found, nil
}

// Options converts the optional fields into module options.
func (m ModuleSpec) Options() []module.Option {
	opts := []module.Option{module.WithOffset(m.Offset)}
	if m.PowerConsumption != nil {
		opts = append(opts, module.WithPowerConsumption(*m.PowerConsumption))
	}
	return opts
}

func (s Scenario) Validate() error {
	for i, b := range s.Bases {
		if b.Name == "" {
			return fmt.Errorf("%w: scenario.bases[%d]: name is required", ErrInvalidConfig, i)
		}
		if b.Health != nil && !(*b.Health > 0) {
			return fmt.Errorf("%w: base %s: health must be positive", ErrInvalidConfig, b.Name)
		}
		for j, m := range b.Modules {
			p, err := m.Params()
			if err != nil {
				return fmt.Errorf("base %s module %d: %w", b.Name, j, err)
			}
			if _, err := module.New(0, p, m.Options()...); err != nil {
				return fmt.Errorf("%w: base %s module %d: %w", ErrInvalidConfig, b.Name, j, err)
			}
		}
	}
	for i, t := range s.Targets {
		if !(t.Health > 0) {
			return fmt.Errorf("%w: scenario.targets[%d]: health must be positive", ErrInvalidConfig, i)
		}
	}
	return nil
}
