package object

import (
	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/physics"
)

// Player is a car steered between lanes at the bottom of the road.
type Player struct {
	Index      int // 0 for player one, 1 for player two
	Lane       int
	Lives      int
	Invincible int  // Ticks of protection left; 0 means vulnerable
	Active     bool // False once all lives are lost
	Sprite     asset.Sprite

	lanes     int
	laneWidth float64
	Y, W, H   float64
}

var _ Object = (*Player)(nil)

// NewPlayer creates an active player in startLane with the configured lives.
func NewPlayer(index, startLane int, cfg config.Config, sprite asset.Sprite) *Player {
	return &Player{
		Index:     index,
		Lane:      min(max(startLane, 0), cfg.Lanes-1),
		Lives:     cfg.Lives,
		Active:    true,
		Sprite:    sprite,
		lanes:     cfg.Lanes,
		laneWidth: cfg.LaneWidth(),
		Y:         cfg.PlayerY(),
		W:         cfg.VehicleWidth(),
		H:         cfg.VehicleHeight,
	}
}

// MoveLeft shifts one lane left. Ignored at the edge or when inactive.
func (p *Player) MoveLeft() {
	if p.Active && p.Lane > 0 {
		p.Lane--
	}
}

// MoveRight shifts one lane right. Ignored at the edge or when inactive.
func (p *Player) MoveRight() {
	if p.Active && p.Lane < p.lanes-1 {
		p.Lane++
	}
}

// Vulnerable reports whether a collision would cost a life.
func (p *Player) Vulnerable() bool {
	return p.Active && p.Invincible == 0
}

// Hit takes one life and grants invincibility for ticks. A player with no
// lives left becomes inactive.
func (p *Player) Hit(ticks int) {
	p.Lives--
	p.Invincible = ticks
	if p.Lives <= 0 {
		p.Lives = 0
		p.Active = false
		p.Invincible = 0
	}
}

// Update counts down invincibility.
func (p *Player) Update(_ UpdateContext) (bool, error) {
	if p.Active && p.Invincible > 0 {
		p.Invincible--
	}
	return false, nil
}

// Rect returns the collision box.
func (p *Player) Rect() physics.Rect {
	x := float64(p.Lane)*p.laneWidth + p.laneWidth/2 - p.W/2
	return physics.Rect{X: x, Y: p.Y, W: p.W, H: p.H}
}

// Draw renders the player, blinking while invincible.
func (p *Player) Draw(ctx DrawContext) error {
	if !p.Active || !Blink(p.Invincible, ctx.Config.BlinkPeriod) {
		return nil
	}
	r := p.Rect()
	ctx.Canvas.FillMask(r.X, r.Y, r.W, r.H, p.Sprite.Width(), p.Sprite.Height(), p.Sprite.Filled)
	return nil
}
