package object

import (
	"math/rand"

	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/loop/config"
)

// ParticleStyle selects how precipitation looks and falls.
type ParticleStyle int

const (
	StyleRain  ParticleStyle = iota // Fast thin streaks
	StyleSnow                       // Slow flakes
	StyleStars                      // Slow drifting stars for sunrise
)

type particle struct {
	x, y, speed float64
}

// Precipitation is a field of particles falling over the road.
type Precipitation struct {
	Style     ParticleStyle
	particles []particle
	width     float64
	height    float64
	minSpeed  int
	maxSpeed  int
}

var _ Object = (*Precipitation)(nil)

// NewPrecipitation scatters count particles above the field.
func NewPrecipitation(style ParticleStyle, count int, cfg config.Config, rng *rand.Rand) *Precipitation {
	p := &Precipitation{
		Style:     style,
		particles: make([]particle, count),
		width:     cfg.FieldWidth,
		height:    cfg.FieldHeight,
	}
	switch style {
	case StyleRain:
		p.minSpeed, p.maxSpeed = 10, 15
	case StyleSnow:
		p.minSpeed, p.maxSpeed = 3, 7
	default:
		p.minSpeed, p.maxSpeed = 1, 3
	}
	for i := range p.particles {
		p.respawn(&p.particles[i], rng)
	}
	return p
}

func (p *Precipitation) respawn(pt *particle, rng *rand.Rand) {
	pt.x = rng.Float64() * p.width
	pt.y = -rng.Float64() * p.height
	pt.speed = float64(p.minSpeed + rng.Intn(p.maxSpeed-p.minSpeed+1))
}

// Update moves every particle down and respawns those below the field.
func (p *Precipitation) Update(ctx UpdateContext) (bool, error) {
	for i := range p.particles {
		pt := &p.particles[i]
		pt.y += pt.speed
		if pt.y > p.height {
			p.respawn(pt, ctx.Rand)
		}
	}
	return false, nil
}

// Draw renders particles as small marks.
func (p *Precipitation) Draw(ctx DrawContext) error {
	w, h := 4.0, 4.0
	if p.Style == StyleRain {
		w, h = 2, 12
	}
	for _, pt := range p.particles {
		if pt.y+h < 0 {
			continue
		}
		ctx.Canvas.FillRect(pt.x, pt.y, w, h)
	}
	return nil
}

// Lightning flashes a bolt across the road at random intervals and plays thunder.
type Lightning struct {
	timer      int
	flash      int
	flashTicks int
	minTicks   int
	maxTicks   int
	bolt       []draw.Point
	width      float64
	height     float64
}

var _ Object = (*Lightning)(nil)

// NewLightning creates a lightning effect with its first strike scheduled.
func NewLightning(cfg config.Config, rng *rand.Rand) *Lightning {
	l := &Lightning{
		flashTicks: cfg.LightningFlashTicks,
		minTicks:   cfg.LightningMinTicks,
		maxTicks:   cfg.LightningMaxTicks,
		width:      cfg.FieldWidth,
		height:     cfg.FieldHeight,
	}
	l.schedule(rng)
	return l
}

func (l *Lightning) schedule(rng *rand.Rand) {
	l.timer = l.minTicks + rng.Intn(l.maxTicks-l.minTicks+1)
}

// Flashing reports whether a strike is currently visible.
func (l *Lightning) Flashing() bool {
	return l.flash > 0
}

// Update counts down to the next strike. A strike plays the thunder cue and
// stays visible for the flash duration.
func (l *Lightning) Update(ctx UpdateContext) (bool, error) {
	l.timer--
	if l.timer <= 0 {
		l.flash = l.flashTicks
		l.bolt = l.strike(ctx.Rand)
		l.schedule(ctx.Rand)
		if ctx.Audio != nil {
			ctx.Audio.PlaySound(audio.SoundThunder)
		}
	}
	if l.flash > 0 {
		l.flash--
	}
	return false, nil
}

// strike builds a zig-zag bolt from the top edge down to a random depth.
func (l *Lightning) strike(rng *rand.Rand) []draw.Point {
	x := rng.Float64() * l.width
	depth := l.height * (0.3 + rng.Float64()*0.4)
	const segments = 6
	points := make([]draw.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		points = append(points, draw.Point{X: x, Y: depth * float64(i) / segments})
		x += (rng.Float64() - 0.5) * l.width * 0.08
	}
	return points
}

// Draw renders the bolt while flashing.
func (l *Lightning) Draw(ctx DrawContext) error {
	if !l.Flashing() {
		return nil
	}
	for i := 1; i < len(l.bolt); i++ {
		ctx.Canvas.DrawLine(l.bolt[i-1], l.bolt[i])
	}
	return nil
}

// NewWeather returns the effects for the configured weather.
func NewWeather(cfg config.Config, rng *rand.Rand) []Object {
	switch cfg.Weather {
	case config.WeatherRain:
		return []Object{
			NewPrecipitation(StyleRain, cfg.WeatherParticles, cfg, rng),
			NewLightning(cfg, rng),
		}
	case config.WeatherSnow:
		return []Object{NewPrecipitation(StyleSnow, cfg.WeatherParticles, cfg, rng)}
	case config.WeatherSunrise:
		return []Object{NewPrecipitation(StyleStars, cfg.WeatherParticles, cfg, rng)}
	}
	return nil
}
