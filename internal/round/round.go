// Package round simulates one round of play: lanes, vehicles, players,
// scoring and level progression, advanced one fixed tick at a time.
//
// A Round is not safe for concurrent use. Each round is owned by the
// goroutine running its loop.
package round

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/lane"
	"github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/object"
	"github.com/tomz197/lanerush/internal/physics"
)

// Bank receives the points earned in a round (the store's wallet).
type Bank interface {
	AddPoints(n int)
}

// Qualifier decides whether a score earns a place in the high score table.
type Qualifier interface {
	Qualifies(score int) bool
}

// Deps are the collaborators of a round. Nil fields get harmless defaults.
type Deps struct {
	Assets asset.Provider
	Audio  audio.Player
	Bank   Bank
	Ledger Qualifier
	Rand   *rand.Rand
	Logger *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Assets == nil {
		d.Assets = asset.Builtin()
	}
	if d.Audio == nil {
		d.Audio = audio.Nop{}
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	return d
}

// Options select the round mode.
type Options struct {
	Players int    // 1 or 2
	Skins   [2]int // Skin number per player; 0 picks the player's default
}

// Action is a single input command for a round.
type Action int

const (
	ActionLeft  Action = iota // Move one lane left
	ActionRight               // Move one lane right
	ActionPause               // Toggle pause
)

// Command is an action issued by a player. Player is ignored for ActionPause.
type Command struct {
	Player int
	Action Action
}

// Outcome is produced exactly once, on the tick the last player runs out of lives.
type Outcome struct {
	Scores     []int
	Level      int
	Qualifying []bool // Per player: score qualified for the table when the round ended
}

// Total returns the sum of all player scores.
func (o Outcome) Total() int {
	total := 0
	for _, s := range o.Scores {
		total += s
	}
	return total
}

// Round is the state of one round.
type Round struct {
	cfg  config.Config
	deps Deps

	Lanes     *lane.Allocator
	Level     int
	Scores    []int
	Speed     float64
	Points    int // Points per passed rival at the current level
	Players   []*object.Player
	Rivals    []*object.Vehicle
	Obstacles []*object.Vehicle
	Effects   []object.Object
	Paused    bool

	tick   int
	over   bool
	banked bool
}

// New builds a fresh round at level 1. Restarting a round is done by
// calling New again.
func New(cfg config.Config, opts Options, deps Deps) *Round {
	deps = deps.withDefaults()
	players := min(max(opts.Players, 1), 2)
	curve := cfg.Difficulty

	r := &Round{
		cfg:    cfg,
		deps:   deps,
		Lanes:  lane.New(cfg.Lanes, deps.Rand),
		Level:  1,
		Scores: make([]int, players),
		Speed:  curve.Speed(1),
		Points: curve.PointsPerKill(1),
	}

	for i := 0; i < players; i++ {
		skin := opts.Skins[i]
		if skin == 0 {
			skin = i + 1
		}
		r.Players = append(r.Players, object.NewPlayer(i, startLane(i, players, cfg.Lanes), cfg, deps.Assets.Sprite(asset.Player(skin))))
	}

	r.topUp()
	r.Effects = object.NewWeather(cfg, deps.Rand)
	deps.Audio.PlayMusic(audio.TrackGame)
	return r
}

// startLane returns where player i starts: the middle lane alone, or a third
// of the way in from each side with two players.
func startLane(i, players, lanes int) int {
	if players == 1 {
		return lanes / 2
	}
	if i == 0 {
		return lanes / 3
	}
	return 2 * lanes / 3
}

// Config returns the configuration the round was built with.
func (r *Round) Config() config.Config {
	return r.cfg
}

// Tick returns the number of simulated ticks.
func (r *Round) Tick() int {
	return r.tick
}

// Over reports whether the round has ended.
func (r *Round) Over() bool {
	return r.over
}

// RefLane is the lane spawns are kept fair against: the player's lane, or
// the leftmost of both players' lanes.
func (r *Round) RefLane() int {
	ref := r.Players[0].Lane
	for _, p := range r.Players[1:] {
		ref = min(ref, p.Lane)
	}
	return ref
}

// Metric is the score the level-up rule is applied to: the best player score.
func (r *Round) Metric() int {
	best := 0
	for _, s := range r.Scores {
		best = max(best, s)
	}
	return best
}

func (r *Round) updateContext() object.UpdateContext {
	return object.UpdateContext{
		Tick:    r.tick,
		Config:  r.cfg,
		Lanes:   r.Lanes,
		RefLane: r.RefLane(),
		Rand:    r.deps.Rand,
		Audio:   r.deps.Audio,
	}
}

// Step advances the round by one tick after applying cmds. It returns the
// outcome on the tick the round ends and nil otherwise. Once the round is
// over Step does nothing.
func (r *Round) Step(cmds []Command) *Outcome {
	if r.over {
		return nil
	}

	r.applyCommands(cmds)
	if r.Paused {
		return nil
	}
	r.tick++

	for _, p := range r.Players {
		p.Update(r.updateContext())
	}
	r.updateEffects()

	for _, v := range r.Rivals {
		passed := v.Lane
		if v.Advance(r.updateContext()) {
			r.award(passed)
			r.checkLevel()
		}
	}
	for _, v := range r.Obstacles {
		v.Advance(r.updateContext())
	}

	r.collide()

	for _, p := range r.Players {
		if p.Active {
			return nil
		}
	}
	return r.finish()
}

func (r *Round) applyCommands(cmds []Command) {
	for _, c := range cmds {
		if c.Action == ActionPause {
			r.Paused = !r.Paused
			continue
		}
		if r.Paused || c.Player < 0 || c.Player >= len(r.Players) {
			continue
		}
		switch c.Action {
		case ActionLeft:
			r.Players[c.Player].MoveLeft()
		case ActionRight:
			r.Players[c.Player].MoveRight()
		}
	}
}

func (r *Round) updateEffects() {
	ctx := r.updateContext()
	kept := r.Effects[:0]
	for _, fx := range r.Effects {
		remove, err := fx.Update(ctx)
		if err != nil {
			r.deps.Logger.Warn("effect update", "err", err)
		}
		if !remove {
			kept = append(kept, fx)
		}
	}
	clear(r.Effects[len(kept):])
	r.Effects = kept
}

// award credits the points of a rival that passed in lane rivalLane. With
// two players the closer one gets everything and a tie splits it.
func (r *Round) award(rivalLane int) {
	if len(r.Players) == 1 {
		r.Scores[0] += r.Points
		return
	}
	d0 := abs(r.Players[0].Lane - rivalLane)
	d1 := abs(r.Players[1].Lane - rivalLane)
	switch {
	case d0 < d1:
		r.Scores[0] += r.Points
	case d1 < d0:
		r.Scores[1] += r.Points
	default:
		r.Scores[0] += r.Points / 2
		r.Scores[1] += r.Points / 2
	}
}

func (r *Round) checkLevel() {
	next := r.cfg.Difficulty.NextLevel(r.Metric(), r.Level)
	if next <= r.Level {
		return
	}
	r.Level = next
	r.Speed = r.cfg.Difficulty.Speed(next)
	r.Points = r.cfg.Difficulty.PointsPerKill(next)
	for _, v := range r.Rivals {
		v.Speed = r.Speed
	}
	for _, v := range r.Obstacles {
		v.Speed = r.Speed
	}
	r.topUp()
	r.deps.Audio.PlaySound(audio.SoundLevelUp)
	r.deps.Logger.Debug("level up", "level", next, "speed", r.Speed, "points", r.Points)
}

// topUp adds vehicles until the counts for the current level are reached.
// Vehicles are never removed.
func (r *Round) topUp() {
	ctx := r.updateContext()
	curve := r.cfg.Difficulty
	for len(r.Rivals) < curve.EnemyCount(r.Level) {
		r.Rivals = append(r.Rivals, object.NewVehicle(lane.Enemy, r.Speed, r.deps.Assets.Sprite(asset.Rival), ctx))
	}
	for len(r.Obstacles) < curve.ObstacleCount(r.Level) {
		r.Obstacles = append(r.Obstacles, object.NewVehicle(lane.Obstacle, r.Speed, r.deps.Assets.Sprite(asset.Obstacle), ctx))
	}
}

func (r *Round) collide() {
	for _, p := range r.Players {
		if !p.Vulnerable() {
			continue
		}
		box := p.Rect()
		rival := firstHit(box, r.Rivals)
		obstacle := firstHit(box, r.Obstacles)
		if rival == nil && obstacle == nil {
			continue
		}

		r.Effects = append(r.Effects, object.NewExplosion(box.CenterX(), box.CenterY(),
			r.cfg.ExplosionSize, r.cfg.ExplosionFrames, r.cfg.ExplosionFrameTicks))
		p.Hit(r.cfg.InvincibilityTicks)

		ctx := r.updateContext()
		if rival != nil {
			rival.Recycle(ctx)
			r.deps.Audio.PlaySound(audio.SoundCrash)
		}
		if obstacle != nil {
			obstacle.Recycle(ctx)
			r.deps.Audio.PlaySound(audio.SoundExplosion)
		}
		r.deps.Logger.Debug("player hit", "player", p.Index+1, "lives", p.Lives)
	}
}

func firstHit(box physics.Rect, vehicles []*object.Vehicle) *object.Vehicle {
	for _, v := range vehicles {
		if physics.Overlaps(box, v.Rect()) {
			return v
		}
	}
	return nil
}

// finish ends the round: points go to the bank and the outcome records
// which scores qualify for the table.
func (r *Round) finish() *Outcome {
	r.over = true
	r.Paused = false
	out := &Outcome{
		Scores:     append([]int(nil), r.Scores...),
		Level:      r.Level,
		Qualifying: make([]bool, len(r.Scores)),
	}
	if r.deps.Ledger != nil {
		for i, s := range out.Scores {
			out.Qualifying[i] = r.deps.Ledger.Qualifies(s)
		}
	}
	r.bank()
	r.deps.Logger.Info("round over", "scores", out.Scores, "level", out.Level)
	return out
}

// Forfeit abandons the round (exit or restart from pause). Points earned so
// far are banked; calling it again, or after the round ended, banks nothing.
func (r *Round) Forfeit() {
	r.over = true
	r.Paused = false
	r.bank()
}

func (r *Round) bank() {
	if r.banked {
		return
	}
	r.banked = true
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	if r.deps.Bank != nil && total > 0 {
		r.deps.Bank.AddPoints(total)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
