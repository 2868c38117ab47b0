// Package power decides which modules of a base run this tick.
package power

import "github.com/zeusync/strategyforge/internal/game/module"

// Priority is the fixed activation order of consumer kinds. Energy is not
// listed: generators are always on and draw nothing.
var Priority = [...]module.Kind{
	module.KindDefense,
	module.KindMovement,
	module.KindSensor,
	module.KindWeapon,
	module.KindProduction,
	module.KindStorage,
	module.KindUtility,
}

// Consumer is anything that draws from a base's power budget.
type Consumer interface {
	Kind() module.Kind
	PowerConsumption() float64
}

// Allocate computes a fresh activation set for consumers given the full
// budget output. The result is index-aligned with consumers and depends on
// nothing but its arguments.
func Allocate[C Consumer](consumers []C, output float64) []bool {
	active := make([]bool, len(consumers))

	for i, c := range consumers {
		if c.Kind() == module.KindEnergy {
			active[i] = true
		}
	}

	available := output
tiers:
	for _, tier := range Priority {
		for i, c := range consumers {
			if available <= 0 {
				break tiers
			}
			if active[i] || c.Kind() != tier {
				continue
			}
			if cost := c.PowerConsumption(); available >= cost {
				active[i] = true
				available -= cost
			}
		}
	}
	return active
}

// Consumed sums the draw of the active consumers.
func Consumed[C Consumer](consumers []C, active []bool) float64 {
	var total float64
	for i, c := range consumers {
		if i < len(active) && active[i] {
			total += c.PowerConsumption()
		}
	}
	return total
}
