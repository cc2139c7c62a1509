package diagram

// Point is a location in diagram coordinates. Bendpoints are Points.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Bounds is the box a node occupies.
type Bounds struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Center returns the middle of the box.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Translate returns b moved by dx, dy.
func (b Bounds) Translate(dx, dy float64) Bounds {
	b.X += dx
	b.Y += dy
	return b
}

func clonePoints(points []Point) []Point {
	if points == nil {
		return []Point{}
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Attributes holds display values supplied by the host (label, color, ...).
// The model stores them without interpreting them.
type Attributes map[string]interface{}

// Clone returns a shallow copy; nil becomes an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// String returns the value at key when it is a string.
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}
