package physics

// Positioned is anything the simulation can locate in the plane.
// Positions are supplied by the spatial collaborator and read-only here.
type Positioned interface {
	Position() Vec2
}

// Transform pairs a world position with an attachment offset, for things
// mounted on a moving parent such as modules on a base.
type Transform struct {
	Origin Vec2
	Offset Vec2
}

// World returns the absolute position of the mounted point.
func (t Transform) World() Vec2 { return t.Origin.Add(t.Offset) }
