package cubebot

// Region is a static axis-aligned workspace zone in millimeters, viewed
// from above the rig. Regions are configuration data: each arm declares
// one region per activity (resting, gripping, rotation sweep), and the
// orchestrator refuses to dispatch an action whose region intersects the
// other arm's occupied region.
type Region struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Intersects reports whether the two regions overlap. Touching edges do
// not count as overlap.
func (r Region) Intersects(o Region) bool {
	if r.IsZero() || o.IsZero() {
		return false
	}
	return r.MinX < o.MaxX && o.MinX < r.MaxX &&
		r.MinY < o.MaxY && o.MinY < r.MaxY
}

// IsZero reports whether the region is unset.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Union returns the smallest region covering both.
func (r Region) Union(o Region) Region {
	if r.IsZero() {
		return o
	}
	if o.IsZero() {
		return r
	}
	out := r
	if o.MinX < out.MinX {
		out.MinX = o.MinX
	}
	if o.MinY < out.MinY {
		out.MinY = o.MinY
	}
	if o.MaxX > out.MaxX {
		out.MaxX = o.MaxX
	}
	if o.MaxY > out.MaxY {
		out.MaxY = o.MaxY
	}
	return out
}
