// Package physics provides collision detection for axis-aligned boxes.
package physics

// Rect is an axis-aligned box in logical field coordinates.
// X, Y is the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center of the box.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the box.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Overlaps reports whether two boxes intersect. Boxes that only touch along
// an edge do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}
