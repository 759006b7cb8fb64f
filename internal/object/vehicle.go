package object

import (
	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/lane"
	"github.com/tomz197/lanerush/internal/physics"
)

// Vehicle is a rival car or an obstacle moving down one lane. Vehicles are
// never destroyed: when they leave the field or hit a player they are
// recycled into a new lane above the top edge.
type Vehicle struct {
	Kind   lane.Kind
	Lane   int
	X, Y   float64 // Top-left corner
	W, H   float64
	Speed  float64 // Pixels per tick
	Sprite asset.Sprite
}

var _ Drawable = (*Vehicle)(nil)

// NewVehicle creates a vehicle of kind and places it with Reset.
func NewVehicle(kind lane.Kind, speed float64, sprite asset.Sprite, ctx UpdateContext) *Vehicle {
	v := &Vehicle{
		Kind:   kind,
		W:      ctx.Config.VehicleWidth(),
		H:      ctx.Config.VehicleHeight,
		Speed:  speed,
		Sprite: sprite,
	}
	v.Reset(ctx)
	return v
}

// Reset picks a fair lane, claims it and moves the vehicle above the top edge
// with a random stagger so recycled vehicles do not arrive together.
func (v *Vehicle) Reset(ctx UpdateContext) {
	v.Lane = ctx.Lanes.ChooseLane(v.Kind, ctx.RefLane)
	ctx.Lanes.Occupy(v.Lane, v.Kind)
	v.X = ctx.Config.LaneCenter(v.Lane) - v.W/2

	stagger := 0
	if ctx.Config.StaggerMax > 0 {
		stagger = ctx.Rand.Intn(ctx.Config.StaggerMax + 1)
	}
	v.Y = -v.H - float64(stagger)
}

// Recycle releases the current lane and resets the vehicle.
func (v *Vehicle) Recycle(ctx UpdateContext) {
	ctx.Lanes.Free(v.Lane)
	v.Reset(ctx)
}

// Advance moves the vehicle down one tick. It returns true when the vehicle
// passed the bottom edge and was recycled.
func (v *Vehicle) Advance(ctx UpdateContext) bool {
	v.Y += v.Speed
	if v.Y > ctx.Config.FieldHeight {
		v.Recycle(ctx)
		return true
	}
	return false
}

// Rect returns the collision box.
func (v *Vehicle) Rect() physics.Rect {
	return physics.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H}
}

// Draw renders the sprite stretched over the vehicle box.
func (v *Vehicle) Draw(ctx DrawContext) error {
	if v.Y+v.H < 0 || v.Y > ctx.Config.FieldHeight {
		return nil
	}
	ctx.Canvas.FillMask(v.X, v.Y, v.W, v.H, v.Sprite.Width(), v.Sprite.Height(), v.Sprite.Filled)
	return nil
}
