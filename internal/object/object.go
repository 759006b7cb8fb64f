// Package object holds the entities that live on the road: vehicles, players
// and visual effects.
package object

import (
	"math/rand"

	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/lane"
	"github.com/tomz197/lanerush/internal/loop/config"
)

// UpdateContext provides all the information an entity needs during a tick.
type UpdateContext struct {
	Tick    int
	Config  config.Config
	Lanes   *lane.Allocator
	RefLane int // Lane that spawns are kept fair against
	Rand    *rand.Rand
	Audio   audio.Player
}

// DrawContext provides drawing resources for entities.
type DrawContext struct {
	Canvas *draw.Canvas // Scaled canvas over the logical field
	Config config.Config
	Tick   int
}

// Drawable is anything that can be rendered onto the road.
type Drawable interface {
	Draw(ctx DrawContext) error
}

// Object is a drawable and updatable entity.
type Object interface {
	Drawable

	// Update advances the entity by one tick. Returns true if it should be removed.
	Update(ctx UpdateContext) (remove bool, err error)
}

// Blink reports whether something with remaining protection ticks should be
// drawn this tick. The visible half of each period comes first.
func Blink(remaining, period int) bool {
	if remaining <= 0 || period < 2 {
		return true
	}
	return remaining%period < period/2
}
