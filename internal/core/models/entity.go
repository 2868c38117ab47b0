package models

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// EntityID identifies bases, modules and free-standing targets.
// Zero is never issued.
type EntityID uint64

// IDSource hands out monotonically increasing entity IDs.
type IDSource struct {
	next atomic.Uint64
}

func (s *IDSource) Next() EntityID {
	return EntityID(s.next.Add(1))
}

// Team tags an entity for friend/foe discrimination.
type Team uint8

const (
	TeamPlayer Team = iota
	TeamEnemy
	TeamNeutral
)

func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "player"
	case TeamEnemy:
		return "enemy"
	case TeamNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("team(%d)", uint8(t))
	}
}

func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return TeamPlayer, nil
	case "enemy":
		return TeamEnemy, nil
	case "neutral":
		return TeamNeutral, nil
	default:
		return TeamPlayer, fmt.Errorf("unknown team %q", s)
	}
}

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Team) UnmarshalText(b []byte) error {
	v, err := ParseTeam(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
