package object

import "math"

// explosionMask is the resolution of the ring drawn for an explosion.
const explosionMask = 16

// Explosion is a shrinking ring left where a player was hit.
type Explosion struct {
	X, Y       float64 // Center
	Size       float64
	Frame      int
	frames     int
	frameTicks int
	counter    int
}

var _ Object = (*Explosion)(nil)

// NewExplosion creates an explosion centered at x, y. It lasts
// frames*frameTicks ticks.
func NewExplosion(x, y, size float64, frames, frameTicks int) *Explosion {
	return &Explosion{
		X:          x,
		Y:          y,
		Size:       size,
		frames:     max(frames, 1),
		frameTicks: max(frameTicks, 1),
	}
}

// Update advances the animation and asks for removal after the last frame.
func (e *Explosion) Update(_ UpdateContext) (bool, error) {
	e.counter++
	if e.counter < e.frameTicks {
		return false, nil
	}
	e.counter = 0
	e.Frame++
	return e.Frame >= e.frames, nil
}

// Draw renders a ring that thins as the animation progresses.
func (e *Explosion) Draw(ctx DrawContext) error {
	if e.Frame >= e.frames {
		return nil
	}
	progress := float64(e.Frame+1) / float64(e.frames+1)
	outer := explosionMask / 2 * (1 - progress/2)
	inner := outer * progress
	half := e.Size / 2

	ctx.Canvas.FillMask(e.X-half, e.Y-half, e.Size, e.Size, explosionMask, explosionMask, func(col, row int) bool {
		dx := float64(col) + 0.5 - explosionMask/2
		dy := float64(row) + 0.5 - explosionMask/2
		d := math.Hypot(dx, dy)
		return d <= outer && d >= inner
	})
	return nil
}
