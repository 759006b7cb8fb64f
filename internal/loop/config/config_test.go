package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Lanes != 6 || cfg.Lives != 3 || cfg.TopScores != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestGeometry(t *testing.T) {
	cfg := Default()
	cfg.FieldWidth = 600
	if got := cfg.LaneWidth(); got != 100 {
		t.Fatalf("LaneWidth() = %v, want 100", got)
	}
	if got := cfg.LaneCenter(2); got != 250 {
		t.Fatalf("LaneCenter(2) = %v, want 250", got)
	}
	if got := cfg.VehicleWidth(); got != 80 {
		t.Fatalf("VehicleWidth() = %v, want 80", got)
	}
	if got := cfg.PlayerY(); got != 530 {
		t.Fatalf("PlayerY() = %v, want 530", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.json"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg != Default() {
			t.Fatalf("Load returned %+v, want defaults", cfg)
		}
	})

	t.Run("overrides on top of defaults", func(t *testing.T) {
		path := filepath.Join(dir, "game.json")
		data := `{"lanes": 4, "weather": "snow", "difficulty": {"base_speed": 2}}`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Lanes != 4 || cfg.Weather != WeatherSnow {
			t.Fatalf("overrides not applied: %+v", cfg)
		}
		if cfg.Difficulty.BaseSpeed != 2 || cfg.Difficulty.MaxSpeed != 10 {
			t.Fatalf("difficulty overlay wrong: %+v", cfg.Difficulty)
		}
		if cfg.Lives != 3 {
			t.Fatalf("untouched field changed: lives=%d", cfg.Lives)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"lanes": 0}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Load = %v, want ErrInvalid", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte(`{"lanes":`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("Load should fail on malformed json")
		}
	})
}

func TestSettingsUpdate(t *testing.T) {
	s := NewSettings(Default())
	before := s.Snapshot()

	if err := s.Update(func(c *Config) { c.Weather = WeatherRain }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := s.Snapshot().Weather; got != WeatherRain {
		t.Fatalf("Weather = %q, want rain", got)
	}
	if before.Weather != WeatherClear {
		t.Fatal("earlier snapshot changed after Update")
	}

	err := s.Update(func(c *Config) { c.Weather = "hail" })
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Update = %v, want ErrInvalid", err)
	}
	if got := s.Snapshot().Weather; got != WeatherRain {
		t.Fatalf("invalid update was stored: %q", got)
	}
}
