package module

import "fmt"

// readyEpsilon absorbs float accumulation when summing tick deltas.
const readyEpsilon = 1e-9

// CooldownState is Ready or Cooling.
type CooldownState uint8

const (
	Ready CooldownState = iota
	Cooling
)

func (s CooldownState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Cooling:
		return "cooling"
	default:
		return fmt.Sprintf("cooldown(%d)", uint8(s))
	}
}

// Cooldown is the per-weapon firing timer. A fresh cooldown is Ready.
type Cooldown struct {
	state    CooldownState
	elapsed  float64
	duration float64
}

func (c *Cooldown) State() CooldownState { return c.state }
func (c *Cooldown) Ready() bool          { return c.state == Ready }

// Remaining seconds until Ready; zero when already Ready.
func (c *Cooldown) Remaining() float64 {
	if c.state == Ready {
		return 0
	}
	return max(c.duration-c.elapsed, 0)
}

// Advance moves a cooling timer forward by dt and reports whether it became
// Ready on this call.
func (c *Cooldown) Advance(dt float64) bool {
	if c.state != Cooling {
		return false
	}
	c.elapsed += dt
	if c.elapsed+readyEpsilon >= c.duration {
		c.state = Ready
		c.elapsed = 0
		return true
	}
	return false
}

// Trigger starts a new cooling period of the given duration.
func (c *Cooldown) Trigger(duration float64) {
	c.state = Cooling
	c.elapsed = 0
	c.duration = duration
}
