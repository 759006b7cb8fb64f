// Package difficulty maps a level number to speed, scoring and spawn counts.
package difficulty

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCurve is returned by Validate for unusable constants.
var ErrInvalidCurve = errors.New("invalid difficulty curve")

// Curve holds the constants of the difficulty progression.
// All methods are pure; levels below 1 are treated as level 1.
type Curve struct {
	BaseSpeed  float64 `json:"base_speed"`  // Pixels per tick at level 1
	GrowthRate float64 `json:"growth_rate"` // Speed multiplier per level
	MaxSpeed   float64 `json:"max_speed"`

	BasePoints   int `json:"base_points"`   // Points per passed rival at level 1
	PointsGrowth int `json:"points_growth"` // Extra points per level

	BaseLevelUp float64 `json:"base_level_up"` // Score needed to leave level 1
	LevelGrowth float64 `json:"level_growth"`  // Threshold multiplier per level

	BaseEnemies   int `json:"base_enemies"`
	MaxEnemies    int `json:"max_enemies"`
	BaseObstacles int `json:"base_obstacles"`
	MaxObstacles  int `json:"max_obstacles"`
}

// Default returns the standard progression.
func Default() Curve {
	return Curve{
		BaseSpeed:     3,
		GrowthRate:    1.2,
		MaxSpeed:      10,
		BasePoints:    10,
		PointsGrowth:  5,
		BaseLevelUp:   100,
		LevelGrowth:   1.3,
		BaseEnemies:   2,
		MaxEnemies:    5,
		BaseObstacles: 2,
		MaxObstacles:  4,
	}
}

// Validate reports whether the curve can drive a round.
func (c Curve) Validate() error {
	switch {
	case c.BaseSpeed <= 0 || c.MaxSpeed <= 0:
		return fmt.Errorf("%w: speeds must be positive", ErrInvalidCurve)
	case c.GrowthRate < 1 || c.LevelGrowth < 1:
		return fmt.Errorf("%w: growth rates must be at least 1", ErrInvalidCurve)
	case c.BaseLevelUp < 1:
		return fmt.Errorf("%w: base level-up threshold must be at least 1", ErrInvalidCurve)
	case c.BasePoints < 0 || c.PointsGrowth < 0:
		return fmt.Errorf("%w: points must not be negative", ErrInvalidCurve)
	case c.BaseEnemies < 0 || c.BaseObstacles < 0:
		return fmt.Errorf("%w: spawn counts must not be negative", ErrInvalidCurve)
	case c.MaxEnemies < c.BaseEnemies || c.MaxObstacles < c.BaseObstacles:
		return fmt.Errorf("%w: spawn caps below base counts", ErrInvalidCurve)
	}
	return nil
}

func clampLevel(level int) int {
	return max(level, 1)
}

// Speed returns the downward speed of every vehicle at level.
func (c Curve) Speed(level int) float64 {
	level = clampLevel(level)
	return math.Min(c.BaseSpeed*math.Pow(c.GrowthRate, float64(level-1)), c.MaxSpeed)
}

// PointsPerKill returns the points awarded for a rival that passes the player.
func (c Curve) PointsPerKill(level int) int {
	level = clampLevel(level)
	return c.BasePoints + (level-1)*c.PointsGrowth
}

// LevelUpThreshold returns the score step used to leave level. Steps too
// large for an int saturate at math.MaxInt.
func (c Curve) LevelUpThreshold(level int) int {
	level = clampLevel(level)
	step := math.Floor(c.BaseLevelUp * math.Pow(c.LevelGrowth, float64(level-1)))
	if math.IsNaN(step) || step >= math.MaxInt64 {
		return math.MaxInt
	}
	return int(step)
}

// EnemyCount returns how many rivals are on the road at level.
func (c Curve) EnemyCount(level int) int {
	level = clampLevel(level)
	return min(c.BaseEnemies+level/2, c.MaxEnemies)
}

// ObstacleCount returns how many obstacles are on the road at level.
func (c Curve) ObstacleCount(level int) int {
	level = clampLevel(level)
	return min(c.BaseObstacles+level/3, c.MaxObstacles)
}

// NextLevel applies the level-up rule to metric while at level current:
// floor(metric / threshold(current)) + 1. The result never drops below current.
func (c Curve) NextLevel(metric, current int) int {
	current = clampLevel(current)
	threshold := c.LevelUpThreshold(current)
	if threshold < 1 || metric < 0 {
		return current
	}
	return max(metric/threshold+1, current)
}

// Progress returns how far metric is toward the next level step, in [0, 1).
func (c Curve) Progress(metric, level int) float64 {
	threshold := c.LevelUpThreshold(level)
	if threshold < 1 || metric < 0 {
		return 0
	}
	return float64(metric%threshold) / float64(threshold)
}
