// Package lane tracks which lanes of the road are taken and picks fair spawn lanes.
package lane

import "math/rand"

// Kind records what last claimed a lane.
type Kind int

const (
	None     Kind = iota // Lane is free
	Enemy                // Claimed by a rival vehicle
	Obstacle             // Claimed by an obstacle
)

// String returns the kind name used in logs and spectator snapshots.
func (k Kind) String() string {
	switch k {
	case Enemy:
		return "enemy"
	case Obstacle:
		return "obstacle"
	default:
		return "none"
	}
}

// opposite returns the kind a spawning entity of kind k should avoid sharing a lane with.
func (k Kind) opposite() Kind {
	switch k {
	case Enemy:
		return Obstacle
	case Obstacle:
		return Enemy
	default:
		return None
	}
}

// Allocator holds one occupancy record per lane. The records describe spawn
// intent rather than ownership: entities free their lane when they recycle.
type Allocator struct {
	occupied []Kind
	rng      *rand.Rand
}

// New creates an allocator for the given number of lanes. A nil rng uses a
// time-seeded source. Lane counts below one are clamped to one.
func New(lanes int, rng *rand.Rand) *Allocator {
	if lanes < 1 {
		lanes = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Allocator{
		occupied: make([]Kind, lanes),
		rng:      rng,
	}
}

// Lanes returns the number of lanes.
func (a *Allocator) Lanes() int {
	return len(a.occupied)
}

func (a *Allocator) valid(lane int) bool {
	return lane >= 0 && lane < len(a.occupied)
}

// Occupy marks lane as taken by kind. Out-of-range lanes are ignored.
func (a *Allocator) Occupy(lane int, kind Kind) {
	if a.valid(lane) {
		a.occupied[lane] = kind
	}
}

// Free clears the record for lane. Out-of-range lanes are ignored.
func (a *Allocator) Free(lane int) {
	if a.valid(lane) {
		a.occupied[lane] = None
	}
}

// Occupant reports the kind recorded for lane, None when out of range.
func (a *Allocator) Occupant(lane int) Kind {
	if !a.valid(lane) {
		return None
	}
	return a.occupied[lane]
}

// Snapshot returns a copy of the occupancy records.
func (a *Allocator) Snapshot() []Kind {
	out := make([]Kind, len(a.occupied))
	copy(out, a.occupied)
	return out
}

// Reset frees every lane.
func (a *Allocator) Reset() {
	clear(a.occupied)
}

// ChooseLane picks a lane for a new entity of the given kind. If every lane
// next to playerLane is taken, one of them is freed first so the player always
// has somewhere to go. Free lanes are preferred, then lanes not held by the
// opposite kind, then any lane. The caller is expected to Occupy the result.
func (a *Allocator) ChooseLane(kind Kind, playerLane int) int {
	n := len(a.occupied)
	playerLane = min(max(playerLane, 0), n-1)

	adjacent := make([]int, 0, 2)
	for _, l := range []int{playerLane - 1, playerLane + 1} {
		if a.valid(l) {
			adjacent = append(adjacent, l)
		}
	}
	if len(adjacent) > 0 && a.allTaken(adjacent) {
		a.Free(adjacent[a.rng.Intn(len(adjacent))])
	}

	if l, ok := a.pick(func(k Kind) bool { return k == None }); ok {
		return l
	}
	avoid := kind.opposite()
	if l, ok := a.pick(func(k Kind) bool { return avoid == None || k != avoid }); ok {
		return l
	}
	return a.rng.Intn(n)
}

func (a *Allocator) allTaken(lanes []int) bool {
	for _, l := range lanes {
		if a.occupied[l] == None {
			return false
		}
	}
	return true
}

// pick returns a uniformly random lane whose record satisfies accept.
func (a *Allocator) pick(accept func(Kind) bool) (int, bool) {
	candidates := make([]int, 0, len(a.occupied))
	for l, k := range a.occupied {
		if accept(k) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[a.rng.Intn(len(candidates))], true
}
