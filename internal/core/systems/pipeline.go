package systems

import (
	"fmt"
	"sort"
	"time"
)

type entry[W any] struct {
	system  System[W]
	seq     int
	enabled bool
	metrics Metrics
}

// Pipeline runs registered systems strictly one after another, ordered by
// phase and then by registration order. It is not safe for concurrent use:
// a tick must complete before the next begins.
type Pipeline[W any] struct {
	entries []*entry[W]
	byName  map[string]*entry[W]
	seq     int
}

func NewPipeline[W any]() *Pipeline[W] {
	return &Pipeline[W]{
		byName: make(map[string]*entry[W]),
	}
}

// Register adds a system. Names must be unique.
func (p *Pipeline[W]) Register(s System[W]) error {
	if s == nil {
		return ErrNilSystem
	}
	if _, exists := p.byName[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	e := &entry[W]{system: s, seq: p.seq, enabled: true}
	p.seq++
	p.entries = append(p.entries, e)
	p.byName[s.Name()] = e
	sort.SliceStable(p.entries, func(i, j int) bool {
		a, b := p.entries[i], p.entries[j]
		if a.system.ExecutionPhase() != b.system.ExecutionPhase() {
			return a.system.ExecutionPhase() < b.system.ExecutionPhase()
		}
		return a.seq < b.seq
	})
	return nil
}

// SetEnabled toggles a system. Disabled systems are skipped by Update.
func (p *Pipeline[W]) SetEnabled(name string, enabled bool) error {
	e, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// Update runs every enabled system once. The first failing system aborts
// the remaining ones so no stage observes a partially updated predecessor.
func (p *Pipeline[W]) Update(deltaTime float64, world W) error {
	for _, e := range p.entries {
		if !e.enabled {
			continue
		}
		start := time.Now()
		err := e.system.Update(deltaTime, world)
		e.metrics.record(start, err)
		if err != nil {
			return fmt.Errorf("system %s: %w", e.system.Name(), err)
		}
	}
	return nil
}

// ExecutionOrder lists system names in the order Update runs them.
func (p *Pipeline[W]) ExecutionOrder() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.system.Name()
	}
	return out
}

func (p *Pipeline[W]) GetSystemMetrics(name string) (Metrics, bool) {
	e, ok := p.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}
