package round

import "github.com/tomz197/lanerush/internal/object"

// PlayerView is the public state of one player.
type PlayerView struct {
	Lane       int  `json:"lane"`
	Lives      int  `json:"lives"`
	Score      int  `json:"score"`
	Active     bool `json:"active"`
	Invincible bool `json:"invincible"`
}

// VehicleView is the public state of one vehicle.
type VehicleView struct {
	Kind string  `json:"kind"`
	Lane int     `json:"lane"`
	Y    float64 `json:"y"`
}

// Snapshot is a read-only copy of a round for spectators.
type Snapshot struct {
	Tick     int           `json:"tick"`
	Level    int           `json:"level"`
	Speed    float64       `json:"speed"`
	Paused   bool          `json:"paused"`
	Over     bool          `json:"over"`
	Lanes    []string      `json:"lanes"`
	Players  []PlayerView  `json:"players"`
	Vehicles []VehicleView `json:"vehicles"`
}

// Snapshot copies the observable state of the round.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		Tick:   r.tick,
		Level:  r.Level,
		Speed:  r.Speed,
		Paused: r.Paused,
		Over:   r.over,
	}
	for _, k := range r.Lanes.Snapshot() {
		s.Lanes = append(s.Lanes, k.String())
	}
	for i, p := range r.Players {
		s.Players = append(s.Players, PlayerView{
			Lane:       p.Lane,
			Lives:      p.Lives,
			Score:      r.Scores[i],
			Active:     p.Active,
			Invincible: p.Invincible > 0,
		})
	}
	for _, group := range [][]*object.Vehicle{r.Rivals, r.Obstacles} {
		for _, v := range group {
			s.Vehicles = append(s.Vehicles, VehicleView{Kind: v.Kind.String(), Lane: v.Lane, Y: v.Y})
		}
	}
	return s
}
