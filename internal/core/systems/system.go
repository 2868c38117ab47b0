package systems

import (
	"errors"
	"time"
)

// System is one stage of the simulation tick. W is the world type the stage
// operates on, which keeps this package free of game imports.
type System[W any] interface {
	Name() string
	ExecutionPhase() ExecutionPhase
	Update(deltaTime float64, world W) error
}

// ExecutionPhase defines when a system runs inside a tick. Systems in an
// earlier phase always finish before any system of a later phase starts.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
	PhaseCleanup
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseLateUpdate:
		return "late_update"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
	ErrNilSystem      = errors.New("system is nil")
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	LastDuration         time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(start time.Time, err error) {
	d := time.Since(start)
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if d > m.MaxExecutionTime {
		m.MaxExecutionTime = d
	}
	if m.MinExecutionTime == 0 || d < m.MinExecutionTime {
		m.MinExecutionTime = d
	}
	m.LastDuration = d
	m.LastExecutionTime = start
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
