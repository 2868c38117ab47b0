package generic

import "fmt"

// Handle addresses an Arena slot. The generation makes handles to removed
// entries stale even after the slot is reused. The zero Handle is never valid.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.Gen == 0 }

// ID packs the handle into a single integer, stable for the entry's lifetime.
func (h Handle) ID() uint64 { return uint64(h.Gen)<<32 | uint64(h.Index) }

func (h Handle) String() string { return fmt.Sprintf("%d:%d", h.Index, h.Gen) }

type slot[T any] struct {
	value T
	gen   uint32
	alive bool
}

// Arena is a slot pool for short-lived entities (projectiles, impact flashes).
// Iteration is in slot order and free slots are reused LIFO, so the same
// sequence of operations always yields the same handles.
//
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.value = value
	s.alive = true
	a.live++
	return Handle{Index: idx, Gen: s.gen}
}

// Get returns a pointer to the entry. The pointer is invalidated by the next
// Insert, Remove or Sweep.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsZero() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Index]
	if !s.alive || s.gen != h.Gen {
		return nil, false
	}
	return &s.value, true
}

// Remove frees the entry. Stale or zero handles return false.
func (a *Arena[T]) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	a.release(h.Index)
	return true
}

func (a *Arena[T]) release(idx uint32) {
	s := &a.slots[idx]
	var zero T
	s.value = zero
	s.alive = false
	a.free = append(a.free, idx)
	a.live--
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int { return a.live }

// Each visits live entries in slot order until fn returns false.
// fn must not insert or remove entries; collect handles and use Sweep or
// Remove afterwards.
func (a *Arena[T]) Each(fn func(h Handle, v *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.alive {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, &s.value) {
			return
		}
	}
}

// Sweep removes every live entry for which dead returns true and reports
// how many were removed.
func (a *Arena[T]) Sweep(dead func(v *T) bool) int {
	removed := 0
	for i := range a.slots {
		s := &a.slots[i]
		if s.alive && dead(&s.value) {
			a.release(uint32(i))
			removed++
		}
	}
	return removed
}
