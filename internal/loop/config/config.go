// Package config centralizes all tunable game parameters.
//
// A Config is a plain value: rounds are built from a snapshot and never see
// later changes. Runtime changes go through Settings.Update.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/tomz197/lanerush/internal/difficulty"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Weather selects the ambient effect drawn over the road.
type Weather string

const (
	WeatherClear   Weather = "clear"
	WeatherRain    Weather = "rain" // Rain with lightning flashes
	WeatherSnow    Weather = "snow"
	WeatherSunrise Weather = "sunrise"
)

// Valid reports whether w is a known weather.
func (w Weather) Valid() bool {
	switch w {
	case WeatherClear, WeatherRain, WeatherSnow, WeatherSunrise:
		return true
	}
	return false
}

// Config holds every tunable of a round.
type Config struct {
	// Road geometry in logical pixels. Rendering scales this to the terminal.
	Lanes         int     `json:"lanes"`
	FieldWidth    float64 `json:"field_width"`
	FieldHeight   float64 `json:"field_height"`
	VehicleMargin float64 `json:"vehicle_margin"` // Lane width minus vehicle width
	VehicleHeight float64 `json:"vehicle_height"`
	PlayerBottom  float64 `json:"player_bottom"` // Gap between player and bottom edge
	StaggerMax    int     `json:"stagger_max"`   // Max extra offset above the top on reset

	// Players
	Lives              int `json:"lives"`
	InvincibilityTicks int `json:"invincibility_ticks"`
	BlinkPeriod        int `json:"blink_period"`

	// Effects
	ExplosionFrames     int     `json:"explosion_frames"`
	ExplosionFrameTicks int     `json:"explosion_frame_ticks"`
	ExplosionSize       float64 `json:"explosion_size"`
	Weather             Weather `json:"weather"`
	WeatherParticles    int     `json:"weather_particles"`
	LightningMinTicks   int     `json:"lightning_min_ticks"`
	LightningMaxTicks   int     `json:"lightning_max_ticks"`
	LightningFlashTicks int     `json:"lightning_flash_ticks"`

	// Loop
	TickRate      int `json:"tick_rate"`      // Ticks per second
	SpectateEvery int `json:"spectate_every"` // Ticks between spectator snapshots
	TopScores     int `json:"top_scores"`
	InitialsLen   int `json:"initials_len"`

	Difficulty difficulty.Curve `json:"difficulty"`
}

// Default returns the standard game configuration.
func Default() Config {
	return Config{
		Lanes:         6,
		FieldWidth:    1000,
		FieldHeight:   600,
		VehicleMargin: 20,
		VehicleHeight: 60,
		PlayerBottom:  10,
		StaggerMax:    100,

		Lives:              3,
		InvincibilityTicks: 90,
		BlinkPeriod:        10,

		ExplosionFrames:     5,
		ExplosionFrameTicks: 4,
		ExplosionSize:       80,
		Weather:             WeatherClear,
		WeatherParticles:    60,
		LightningMinTicks:   120,
		LightningMaxTicks:   600,
		LightningFlashTicks: 10,

		TickRate:      60,
		SpectateEvery: 6,
		TopScores:     5,
		InitialsLen:   3,

		Difficulty: difficulty.Default(),
	}
}

// Validate checks that the configuration can drive a round.
func (c Config) Validate() error {
	switch {
	case c.Lanes < 1:
		return fmt.Errorf("%w: lanes must be at least 1", ErrInvalid)
	case c.FieldWidth <= 0 || c.FieldHeight <= 0:
		return fmt.Errorf("%w: field size must be positive", ErrInvalid)
	case c.VehicleMargin < 0 || c.VehicleMargin >= c.LaneWidth():
		return fmt.Errorf("%w: vehicle margin must fit inside a lane", ErrInvalid)
	case c.VehicleHeight <= 0 || c.VehicleHeight+c.PlayerBottom > c.FieldHeight:
		return fmt.Errorf("%w: vehicle height must fit the field", ErrInvalid)
	case c.StaggerMax < 0:
		return fmt.Errorf("%w: stagger must not be negative", ErrInvalid)
	case c.Lives < 1:
		return fmt.Errorf("%w: lives must be at least 1", ErrInvalid)
	case c.InvincibilityTicks < 0 || c.BlinkPeriod < 2:
		return fmt.Errorf("%w: invincibility ticks and blink period", ErrInvalid)
	case c.ExplosionFrames < 1 || c.ExplosionFrameTicks < 1:
		return fmt.Errorf("%w: explosion animation", ErrInvalid)
	case !c.Weather.Valid():
		return fmt.Errorf("%w: unknown weather %q", ErrInvalid, c.Weather)
	case c.LightningMinTicks < 1 || c.LightningMaxTicks < c.LightningMinTicks:
		return fmt.Errorf("%w: lightning interval", ErrInvalid)
	case c.TickRate < 1:
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalid)
	case c.TopScores < 1 || c.InitialsLen < 1:
		return fmt.Errorf("%w: score table size", ErrInvalid)
	}
	if err := c.Difficulty.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// LaneWidth returns the width of one lane.
func (c Config) LaneWidth() float64 {
	return c.FieldWidth / float64(c.Lanes)
}

// LaneCenter returns the x coordinate of the middle of lane.
func (c Config) LaneCenter(lane int) float64 {
	return float64(lane)*c.LaneWidth() + c.LaneWidth()/2
}

// VehicleWidth returns the width of every vehicle box.
func (c Config) VehicleWidth() float64 {
	return c.LaneWidth() - c.VehicleMargin
}

// PlayerY returns the top of a player's box.
func (c Config) PlayerY() float64 {
	return c.FieldHeight - c.PlayerBottom - c.VehicleHeight
}

// TickDuration returns the wall time of one tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Load reads a JSON file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Settings is the live configuration shared by everything that starts rounds.
type Settings struct {
	mu  sync.RWMutex
	cfg Config
}

// NewSettings wraps cfg. It is not validated; use Load or Validate first.
func NewSettings(cfg Config) *Settings {
	return &Settings{cfg: cfg}
}

// Snapshot returns a copy of the current configuration.
func (s *Settings) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to a copy of the configuration and stores it if it
// validates. Rounds already running keep their own snapshot.
func (s *Settings) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.cfg = next
	return nil
}
