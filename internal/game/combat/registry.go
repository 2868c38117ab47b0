package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/strategyforge/internal/core/models"
	"github.com/zeusync/strategyforge/internal/core/systems/physics"
)

// contactEpsilon is how close counts as a direct hit when a projectile has
// no splash radius.
const contactEpsilon = 1e-9

var (
	ErrDuplicateEntity = errors.New("entity already registered")
	ErrNilEntity       = errors.New("nil entity")
)

// Registry is the ordered set of damageable entities. Scan order is
// registration order, which makes targeting ties deterministic.
type Registry struct {
	items []Damageable
	index map[models.EntityID]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[models.EntityID]int)}
}

func (r *Registry) Register(d Damageable) error {
	if d == nil {
		return ErrNilEntity
	}
	if _, ok := r.index[d.ID()]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateEntity, d.ID())
	}
	r.index[d.ID()] = len(r.items)
	r.items = append(r.items, d)
	return nil
}

func (r *Registry) Get(id models.EntityID) (Damageable, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.items[i], true
}

func (r *Registry) Len() int { return len(r.items) }

// Each visits entities in scan order until fn returns false.
func (r *Registry) Each(fn func(Damageable) bool) {
	for _, d := range r.items {
		if !fn(d) {
			return
		}
	}
}

// Nearest returns the closest living entity hostile to team within rng of
// from. Equal distances resolve to the earlier registered entity.
func (r *Registry) Nearest(from physics.Vec2, team models.Team, rng float64) (Damageable, float64, bool) {
	var (
		best     Damageable
		bestDist = math.Inf(1)
	)
	for _, d := range r.items {
		if !Alive(d) || !Hostile(team, d.Team()) {
			continue
		}
		dist := from.DistanceTo(d.Position())
		if dist <= rng && dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best, bestDist, best != nil
}

// Falloff is the linear splash multiplier at distance from the impact point.
func Falloff(distance, radius float64) float64 {
	if radius <= 0 {
		if distance <= contactEpsilon {
			return 1
		}
		return 0
	}
	return physics.Clamp(1-distance/radius, 0, 1)
}

// Hit is one application of splash damage. Part is set when the damage
// landed on a part of Target rather than on Target itself.
type Hit struct {
	Target   Damageable
	Part     Part
	Distance float64
	Damage   float64
}

// Splash damages every living entity within radius of point, friend or foe,
// and every living part of an Assembly whose own position is within radius.
// When adjust is non-nil it may rescale each amount before it lands; parts
// are adjusted as their owner.
func (r *Registry) Splash(point physics.Vec2, damage, radius float64, adjust func(Damageable, float64) float64) []Hit {
	amountAt := func(d Damageable, pos physics.Vec2) (float64, float64, bool) {
		dist := point.DistanceTo(pos)
		if dist > max(radius, contactEpsilon) {
			return dist, 0, false
		}
		amount := damage * Falloff(dist, radius)
		if adjust != nil {
			amount = adjust(d, amount)
		}
		return dist, amount, amount > 0
	}

	var hits []Hit
	for _, d := range r.items {
		if !Alive(d) {
			continue
		}
		if dist, amount, ok := amountAt(d, d.Position()); ok {
			d.ApplyDamage(amount)
			hits = append(hits, Hit{Target: d, Distance: dist, Damage: amount})
		}

		a, ok := d.(Assembly)
		if !ok {
			continue
		}
		a.EachPart(func(p Part, pos physics.Vec2) bool {
			if p.Health() <= 0 {
				return true
			}
			if dist, amount, ok := amountAt(d, pos); ok {
				p.ApplyDamage(amount)
				hits = append(hits, Hit{Target: d, Part: p, Distance: dist, Damage: amount})
			}
			return true
		})
	}
	return hits
}

// Sweep drops destroyed entities, preserving the order of the rest, and
// returns what was removed.
func (r *Registry) Sweep() []Damageable {
	var removed []Damageable
	kept := r.items[:0]
	for _, d := range r.items {
		if Alive(d) {
			kept = append(kept, d)
			continue
		}
		removed = append(removed, d)
	}
	clear(r.items[len(kept):])
	r.items = kept
	if len(removed) > 0 {
		clear(r.index)
		for i, d := range r.items {
			r.index[d.ID()] = i
		}
	}
	return removed
}
