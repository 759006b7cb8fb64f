package round

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/object"
)

type fakeBank struct {
	points int
	calls  int
}

func (b *fakeBank) AddPoints(n int) {
	b.points += n
	b.calls++
}

type fakeLedger struct {
	min int
}

func (l fakeLedger) Qualifies(score int) bool { return score > l.min }

type recorder struct {
	sounds []string
	music  []string
}

func (r *recorder) PlayMusic(track string) { r.music = append(r.music, track) }
func (r *recorder) PlaySound(effect string) { r.sounds = append(r.sounds, effect) }

func (r *recorder) count(effect string) int {
	n := 0
	for _, s := range r.sounds {
		if s == effect {
			n++
		}
	}
	return n
}

type fixture struct {
	round *Round
	bank  *fakeBank
	audio *recorder
}

func newFixture(t *testing.T, players int, cfg config.Config) fixture {
	t.Helper()
	f := fixture{bank: &fakeBank{}, audio: &recorder{}}
	f.round = New(cfg, Options{Players: players}, Deps{
		Assets: asset.NewFileProvider("", log.New(io.Discard)),
		Audio:  f.audio,
		Bank:   f.bank,
		Ledger: fakeLedger{min: 25},
		Rand:   rand.New(rand.NewSource(42)),
		Logger: log.New(io.Discard),
	})
	return f
}

// park moves every vehicle far above the road so nothing scores or collides.
func park(r *Round) {
	for _, v := range r.Rivals {
		v.Y = -100000
	}
	for _, v := range r.Obstacles {
		v.Y = -100000
	}
}

// aboutToPass puts v in lane l one step before it leaves the bottom edge.
func aboutToPass(r *Round, v *object.Vehicle, l int) {
	v.Lane = l
	v.X = r.cfg.LaneCenter(l) - v.W/2
	v.Y = r.cfg.FieldHeight - 1
}

// onPlayer puts v right on top of player p.
func onPlayer(v *object.Vehicle, p *object.Player) {
	box := p.Rect()
	v.Lane = p.Lane
	v.X = box.X
	v.Y = box.Y
}

func TestNewRound(t *testing.T) {
	cfg := config.Default()
	f := newFixture(t, 2, cfg)
	r := f.round

	if r.Level != 1 || r.Speed != 3 || r.Points != 10 {
		t.Fatalf("level=%d speed=%v points=%d", r.Level, r.Speed, r.Points)
	}
	if len(r.Rivals) != 2 || len(r.Obstacles) != 2 {
		t.Fatalf("rivals=%d obstacles=%d", len(r.Rivals), len(r.Obstacles))
	}
	if r.Players[0].Lane != 2 || r.Players[1].Lane != 4 {
		t.Fatalf("start lanes %d, %d", r.Players[0].Lane, r.Players[1].Lane)
	}
	if r.RefLane() != 2 {
		t.Fatalf("RefLane() = %d, want 2", r.RefLane())
	}
	if len(f.audio.music) != 1 || f.audio.music[0] != audio.TrackGame {
		t.Fatalf("music = %v", f.audio.music)
	}

	solo := newFixture(t, 1, cfg).round
	if solo.Players[0].Lane != cfg.Lanes/2 {
		t.Fatalf("solo start lane %d", solo.Players[0].Lane)
	}
}

func TestScoringGoesToCloserPlayer(t *testing.T) {
	r := newFixture(t, 2, config.Default()).round
	park(r)
	r.Players[0].Lane = 2
	r.Players[1].Lane = 5
	aboutToPass(r, r.Rivals[0], 2)

	r.Step(nil)

	if r.Scores[0] != 10 || r.Scores[1] != 0 {
		t.Fatalf("scores = %v, want [10 0]", r.Scores)
	}
}

func TestScoringTieSplits(t *testing.T) {
	r := newFixture(t, 2, config.Default()).round
	park(r)
	r.Players[0].Lane = 1
	r.Players[1].Lane = 3
	aboutToPass(r, r.Rivals[0], 2)

	r.Step(nil)

	if r.Scores[0] != 5 || r.Scores[1] != 5 {
		t.Fatalf("scores = %v, want [5 5]", r.Scores)
	}
}

func TestObstaclesNeverScore(t *testing.T) {
	r := newFixture(t, 1, config.Default()).round
	park(r)
	aboutToPass(r, r.Obstacles[0], 0)

	r.Step(nil)

	if r.Scores[0] != 0 {
		t.Fatalf("score = %d after an obstacle passed", r.Scores[0])
	}
	if r.Obstacles[0].Y >= 0 {
		t.Fatal("passed obstacle was not recycled")
	}
}

func TestLevelUpBroadcastsSpeed(t *testing.T) {
	f := newFixture(t, 1, config.Default())
	r := f.round
	park(r)

	for i := 0; i < 10; i++ {
		aboutToPass(r, r.Rivals[0], 0)
		r.Step(nil)
		park(r)
	}

	if r.Scores[0] != 100 {
		t.Fatalf("score = %d, want 100", r.Scores[0])
	}
	if r.Level != 2 {
		t.Fatalf("level = %d, want 2", r.Level)
	}
	if math.Abs(r.Speed-3.6) > 1e-9 {
		t.Fatalf("speed = %v, want 3.6", r.Speed)
	}
	if r.Points != 15 {
		t.Fatalf("points = %d, want 15", r.Points)
	}
	for _, v := range append(append([]*object.Vehicle{}, r.Rivals...), r.Obstacles...) {
		if v.Speed != r.Speed {
			t.Fatalf("vehicle speed %v, want %v", v.Speed, r.Speed)
		}
	}
	if len(r.Rivals) != 3 || len(r.Obstacles) != 2 {
		t.Fatalf("rivals=%d obstacles=%d, want 3 and 2", len(r.Rivals), len(r.Obstacles))
	}
	if f.audio.count(audio.SoundLevelUp) != 1 {
		t.Fatalf("sounds = %v", f.audio.sounds)
	}
}

func TestTwoPlayerLevelUsesBestScore(t *testing.T) {
	r := newFixture(t, 2, config.Default()).round
	park(r)
	r.Scores[0] = 95
	r.Scores[1] = 40
	r.Players[0].Lane = 0
	r.Players[1].Lane = 5
	aboutToPass(r, r.Rivals[0], 0)

	r.Step(nil)

	if r.Level != 2 {
		t.Fatalf("level = %d with scores %v, want 2", r.Level, r.Scores)
	}
}

func TestInvincibilityWindow(t *testing.T) {
	cfg := config.Default()
	f := newFixture(t, 1, cfg)
	r := f.round
	park(r)
	p := r.Players[0]
	obstacle := r.Obstacles[0]

	onPlayer(obstacle, p)
	r.Step(nil)
	if p.Lives != cfg.Lives-1 {
		t.Fatalf("lives = %d after first hit", p.Lives)
	}
	if f.audio.count(audio.SoundExplosion) != 1 {
		t.Fatalf("obstacle hit should play the explosion cue, got %v", f.audio.sounds)
	}

	for i := 0; i < cfg.InvincibilityTicks-1; i++ {
		park(r)
		onPlayer(obstacle, p)
		r.Step(nil)
		if p.Lives != cfg.Lives-1 {
			t.Fatalf("lost a life %d ticks after the hit", i+1)
		}
	}

	park(r)
	onPlayer(obstacle, p)
	r.Step(nil)
	if p.Lives != cfg.Lives-2 {
		t.Fatalf("lives = %d, want a second hit once invincibility ran out", p.Lives)
	}
}

func TestRivalCollisionResetsRival(t *testing.T) {
	f := newFixture(t, 1, config.Default())
	r := f.round
	park(r)
	p := r.Players[0]
	rival := r.Rivals[0]
	onPlayer(rival, p)

	r.Step(nil)

	if p.Lives != 2 {
		t.Fatalf("lives = %d", p.Lives)
	}
	if r.Scores[0] != 0 {
		t.Fatal("hitting a rival must not score")
	}
	if rival.Y >= 0 {
		t.Fatalf("rival not reset, Y = %v", rival.Y)
	}
	if f.audio.count(audio.SoundCrash) != 1 || f.audio.count(audio.SoundExplosion) != 0 {
		t.Fatalf("sounds = %v", f.audio.sounds)
	}
	if len(r.Effects) != 1 {
		t.Fatalf("effects = %d, want one explosion", len(r.Effects))
	}
}

func TestRoundEndsOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Lives = 1
	f := newFixture(t, 2, cfg)
	r := f.round
	park(r)
	r.Scores[0] = 30
	r.Scores[1] = 20
	onPlayer(r.Obstacles[0], r.Players[0])
	onPlayer(r.Obstacles[1], r.Players[1])

	out := r.Step(nil)
	if out == nil {
		t.Fatal("expected an outcome when both players are out")
	}
	if out.Total() != 50 || out.Level != 1 {
		t.Fatalf("outcome = %+v", out)
	}
	if !out.Qualifying[0] || out.Qualifying[1] {
		t.Fatalf("qualifying = %v, want [true false]", out.Qualifying)
	}
	if f.bank.points != 50 || f.bank.calls != 1 {
		t.Fatalf("bank = %+v", f.bank)
	}

	for i := 0; i < 5; i++ {
		if again := r.Step(nil); again != nil {
			t.Fatal("outcome produced twice")
		}
	}
	r.Forfeit()
	if f.bank.calls != 1 {
		t.Fatalf("bank called %d times", f.bank.calls)
	}
	if !r.Over() {
		t.Fatal("round should be over")
	}
}

func TestDeadPlayerIsIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.Lives = 1
	r := newFixture(t, 2, cfg).round
	park(r)
	dead := r.Players[0]
	onPlayer(r.Obstacles[0], dead)
	if out := r.Step(nil); out != nil {
		t.Fatal("round ended with a player still alive")
	}
	if dead.Active {
		t.Fatal("player one should be out")
	}

	lane := dead.Lane
	r.Step([]Command{{Player: 0, Action: ActionLeft}})
	if dead.Lane != lane {
		t.Fatal("dead player moved")
	}

	park(r)
	onPlayer(r.Obstacles[0], dead)
	y := r.Obstacles[0].Y
	r.Step(nil)
	if r.Obstacles[0].Y != y+r.Speed {
		t.Fatal("dead player still collides")
	}
}

func TestPauseSuspendsSimulation(t *testing.T) {
	r := newFixture(t, 1, config.Default()).round
	y := r.Rivals[0].Y

	r.Step([]Command{{Action: ActionPause}})
	if !r.Paused || r.Tick() != 0 || r.Rivals[0].Y != y {
		t.Fatalf("pause did not suspend: paused=%v tick=%d", r.Paused, r.Tick())
	}

	lane := r.Players[0].Lane
	r.Step([]Command{{Player: 0, Action: ActionLeft}})
	if r.Players[0].Lane != lane || r.Tick() != 0 {
		t.Fatal("input applied while paused")
	}

	r.Step([]Command{{Action: ActionPause}})
	if r.Paused || r.Tick() != 1 || r.Rivals[0].Y != y+r.Speed {
		t.Fatalf("resume did not advance: tick=%d", r.Tick())
	}
}

func TestMoveCommands(t *testing.T) {
	r := newFixture(t, 2, config.Default()).round
	park(r)
	r.Step([]Command{
		{Player: 0, Action: ActionLeft},
		{Player: 1, Action: ActionRight},
		{Player: 7, Action: ActionRight},
	})
	if r.Players[0].Lane != 1 || r.Players[1].Lane != 5 {
		t.Fatalf("lanes = %d, %d", r.Players[0].Lane, r.Players[1].Lane)
	}
}

func TestForfeitBanksOnce(t *testing.T) {
	f := newFixture(t, 1, config.Default())
	f.round.Scores[0] = 40
	f.round.Forfeit()
	f.round.Forfeit()
	if f.bank.points != 40 || f.bank.calls != 1 {
		t.Fatalf("bank = %+v", f.bank)
	}
	if out := f.round.Step(nil); out != nil {
		t.Fatal("forfeited round produced an outcome")
	}
}

func TestLongRunInvariants(t *testing.T) {
	cfg := config.Default()
	cfg.Lives = 1000
	cfg.Weather = config.WeatherRain
	r := newFixture(t, 2, cfg).round
	rng := rand.New(rand.NewSource(9))

	rivals, obstacles := len(r.Rivals), len(r.Obstacles)
	for i := 0; i < 20000; i++ {
		var cmds []Command
		if rng.Intn(10) == 0 {
			cmds = append(cmds, Command{Player: rng.Intn(2), Action: Action(rng.Intn(2))})
		}
		if out := r.Step(cmds); out != nil {
			t.Fatalf("round ended at tick %d", i)
		}
		if len(r.Rivals) < rivals || len(r.Obstacles) < obstacles {
			t.Fatal("vehicle counts shrank")
		}
		rivals, obstacles = len(r.Rivals), len(r.Obstacles)
		if rivals > cfg.Difficulty.MaxEnemies || obstacles > cfg.Difficulty.MaxObstacles {
			t.Fatalf("counts above caps: %d, %d", rivals, obstacles)
		}
		for _, v := range append(append([]*object.Vehicle{}, r.Rivals...), r.Obstacles...) {
			if v.Lane < 0 || v.Lane >= cfg.Lanes {
				t.Fatalf("vehicle in lane %d", v.Lane)
			}
			if v.Speed > cfg.Difficulty.MaxSpeed {
				t.Fatalf("speed %v above cap", v.Speed)
			}
		}
	}
	if r.Level < 2 {
		t.Fatalf("level = %d after a long run", r.Level)
	}
}

func TestSnapshot(t *testing.T) {
	r := newFixture(t, 2, config.Default()).round
	s := r.Snapshot()
	if len(s.Lanes) != 6 || len(s.Players) != 2 {
		t.Fatalf("snapshot lanes=%d players=%d", len(s.Lanes), len(s.Players))
	}
	if len(s.Vehicles) != len(r.Rivals)+len(r.Obstacles) {
		t.Fatalf("snapshot vehicles = %d", len(s.Vehicles))
	}
	if s.Vehicles[0].Kind != "enemy" {
		t.Fatalf("first vehicle kind %q", s.Vehicles[0].Kind)
	}
}
