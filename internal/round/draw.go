package round

import (
	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/object"
)

// Lane divider dash pattern in logical pixels.
const (
	dashLength = 40
	dashGap    = 30
)

// Draw renders the road, every vehicle, the players and the effects.
func (r *Round) Draw(canvas *draw.Canvas) error {
	ctx := object.DrawContext{Canvas: canvas, Config: r.cfg, Tick: r.tick}

	// Dividers scroll with the traffic so the road appears to move.
	offset := float64(r.tick) * r.Speed
	for l := 1; l < r.cfg.Lanes; l++ {
		canvas.DashedVLine(float64(l)*r.cfg.LaneWidth(), dashLength, dashGap, offset)
	}

	for _, v := range r.Obstacles {
		if err := v.Draw(ctx); err != nil {
			return err
		}
	}
	for _, v := range r.Rivals {
		if err := v.Draw(ctx); err != nil {
			return err
		}
	}
	for _, p := range r.Players {
		if err := p.Draw(ctx); err != nil {
			return err
		}
	}
	for _, fx := range r.Effects {
		if err := fx.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}
