package loop

import (
	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/input"
	"github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/round"
	"github.com/tomz197/lanerush/internal/score"
)

// Phase is the screen a game is on.
type Phase int

const (
	PhaseTitle    Phase = iota // Title screen with the high score table
	PhaseRunning               // Round in progress
	PhasePaused                // Round suspended
	PhaseInitials              // A qualifying player is entering initials
	PhaseGameOver              // Final scores, waiting for restart or exit
)

func (p Phase) String() string {
	switch p {
	case PhaseTitle:
		return "title"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseInitials:
		return "initials"
	case PhaseGameOver:
		return "game over"
	}
	return "unknown"
}

// Ledger is the high score table a game records into.
type Ledger interface {
	Qualifies(score int) bool
	Add(initials string, score int) int
	Records() []score.Record
	Lowest() (int, bool)
}

// Publisher receives round snapshots for spectators.
type Publisher interface {
	Publish(id string, snap round.Snapshot)
}

// Options configure a game session.
type Options struct {
	Players   int
	Skins     [2]int
	Settings  *config.Settings
	Deps      round.Deps // Collaborators handed to every round
	Ledger    Ledger
	Publisher Publisher
	RoundID   string // Spectator id of this session's rounds
}

// Game is the outer state machine around rounds: title, play, pause,
// initials entry and game over. Step is driven once per tick by Run and is
// not safe for concurrent use.
type Game struct {
	opts   Options
	logger *log.Logger
	audio  audio.Player

	phase   Phase
	round   *round.Round
	cfg     config.Config
	outcome *round.Outcome
	rounds  int

	pending  []int  // Players still owed an initials prompt
	entering int    // Player currently entering initials
	entry    []rune // Initials typed so far
	ranks    []int  // Table position per player after entry, -1 if none

	frames int
	quit   bool
}

// NewGame returns a game on the title screen.
func NewGame(opts Options) *Game {
	if opts.Settings == nil {
		opts.Settings = config.NewSettings(config.Default())
	}
	opts.Players = min(max(opts.Players, 1), 2)
	if opts.Deps.Logger == nil {
		opts.Deps.Logger = log.Default()
	}
	if opts.Deps.Audio == nil {
		opts.Deps.Audio = audio.Nop{}
	}
	if opts.Ledger == nil {
		opts.Ledger = score.NewLedger(opts.Settings.Snapshot().TopScores, nil, opts.Deps.Logger)
	}

	g := &Game{
		opts:   opts,
		logger: opts.Deps.Logger,
		audio:  opts.Deps.Audio,
		cfg:    opts.Settings.Snapshot(),
	}
	g.toTitle()
	return g
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Round returns the current round, or nil before the first one.
func (g *Game) Round() *round.Round { return g.round }

// Outcome returns the result of the last finished round, if any.
func (g *Game) Outcome() *round.Outcome { return g.outcome }

// Done reports whether the player asked to leave.
func (g *Game) Done() bool { return g.quit }

// Entry returns the initials typed so far and the player typing them.
func (g *Game) Entry() (string, int) { return string(g.entry), g.entering }

// Ranks returns the table position each player reached in the last round,
// -1 where none.
func (g *Game) Ranks() []int { return g.ranks }

// Step handles one tick worth of key presses and advances the round when
// one is running. It returns false once the session should end.
func (g *Game) Step(events []input.Event) bool {
	switch g.phase {
	case PhaseTitle:
		g.stepTitle(events)
	case PhaseRunning, PhasePaused:
		g.stepRound(events)
	case PhaseInitials:
		g.stepInitials(events)
	case PhaseGameOver:
		g.stepGameOver(events)
	}
	return !g.quit
}

func (g *Game) stepTitle(events []input.Event) {
	for _, ev := range events {
		switch ev.Key {
		case input.KeyStart, input.KeyEnter:
			g.start()
			return
		case input.KeyExit:
			g.quit = true
			return
		}
	}
}

func (g *Game) stepRound(events []input.Event) {
	if g.phase == PhasePaused {
		for _, ev := range events {
			switch ev.Key {
			case input.KeyRestart:
				g.logger.Info("round restarted", "round", g.opts.RoundID)
				g.round.Forfeit()
				g.publish(true)
				g.start()
				return
			case input.KeyExit:
				g.logger.Info("round abandoned", "round", g.opts.RoundID)
				g.round.Forfeit()
				g.publish(true)
				g.toTitle()
				return
			}
		}
	}

	out := g.round.Step(g.commands(events))
	if g.round.Paused {
		g.phase = PhasePaused
	} else {
		g.phase = PhaseRunning
	}

	if out != nil {
		g.publish(true)
		g.finish(out)
		return
	}
	g.publish(false)
}

// commands maps key presses to round commands. With one player both
// binding sets steer player one. Exit during play pauses first.
func (g *Game) commands(events []input.Event) []round.Command {
	shared := g.opts.Players == 1
	var cmds []round.Command
	for _, ev := range events {
		switch ev.Key {
		case input.KeyPause:
			cmds = append(cmds, round.Command{Action: round.ActionPause})
			continue
		case input.KeyExit:
			if g.phase == PhaseRunning {
				cmds = append(cmds, round.Command{Action: round.ActionPause})
			}
			continue
		}
		for p := 0; p < g.opts.Players; p++ {
			if ev.Left(p, shared) {
				cmds = append(cmds, round.Command{Player: p, Action: round.ActionLeft})
			}
			if ev.Right(p, shared) {
				cmds = append(cmds, round.Command{Player: p, Action: round.ActionRight})
			}
		}
	}
	return cmds
}

func (g *Game) finish(out *round.Outcome) {
	g.outcome = out
	g.ranks = make([]int, len(out.Scores))
	g.pending = g.pending[:0]
	for i, q := range out.Qualifying {
		g.ranks[i] = -1
		if q {
			g.pending = append(g.pending, i)
		}
	}
	g.nextInitials()
}

// nextInitials prompts the next qualifying player. The check is repeated
// because the previous player's entry may have pushed the score out.
func (g *Game) nextInitials() {
	for len(g.pending) > 0 {
		p := g.pending[0]
		g.pending = g.pending[1:]
		if g.opts.Ledger.Qualifies(g.outcome.Scores[p]) {
			g.entering = p
			g.entry = g.entry[:0]
			g.phase = PhaseInitials
			return
		}
	}
	g.phase = PhaseGameOver
	g.audio.PlayMusic(audio.TrackMenu)
}

func (g *Game) stepInitials(events []input.Event) {
	for _, ev := range events {
		switch {
		case ev.Rune != 0:
			if len(g.entry) < g.cfg.InitialsLen {
				g.entry = append(g.entry, ev.Rune)
			}
		case ev.Key == input.KeyBackspace:
			if len(g.entry) > 0 {
				g.entry = g.entry[:len(g.entry)-1]
			}
		case ev.Key == input.KeyEnter:
			initials := score.NormalizeInitials(string(g.entry), g.cfg.InitialsLen)
			g.ranks[g.entering] = g.opts.Ledger.Add(initials, g.outcome.Scores[g.entering])
			g.logger.Info("high score", "initials", initials, "score", g.outcome.Scores[g.entering], "rank", g.ranks[g.entering]+1)
			g.nextInitials()
			return
		case ev.Key == input.KeyExit:
			g.nextInitials()
			return
		}
	}
}

func (g *Game) stepGameOver(events []input.Event) {
	for _, ev := range events {
		switch ev.Key {
		case input.KeyStart, input.KeyEnter, input.KeyRestart:
			g.start()
			return
		case input.KeyExit:
			g.toTitle()
			return
		}
	}
}

// start builds a fresh round from the current settings. Restart goes
// through here as well.
func (g *Game) start() {
	g.cfg = g.opts.Settings.Snapshot()
	deps := g.opts.Deps
	deps.Ledger = g.opts.Ledger
	g.round = round.New(g.cfg, round.Options{Players: g.opts.Players, Skins: g.opts.Skins}, deps)
	g.outcome = nil
	g.ranks = nil
	g.frames = 0
	g.rounds++
	g.phase = PhaseRunning
	g.logger.Info("round started", "round", g.opts.RoundID, "count", g.rounds, "players", g.opts.Players, "weather", g.cfg.Weather)
}

func (g *Game) toTitle() {
	g.phase = PhaseTitle
	g.audio.PlayMusic(audio.TrackMenu)
}

// Abandon forfeits a round in progress, e.g. when the session ends.
func (g *Game) Abandon() {
	if g.round != nil && (g.phase == PhaseRunning || g.phase == PhasePaused) {
		g.round.Forfeit()
		g.publish(true)
	}
	g.quit = true
}

// publish sends a snapshot every SpectateEvery ticks, and always when final.
func (g *Game) publish(final bool) {
	if g.opts.Publisher == nil || g.opts.RoundID == "" {
		return
	}
	g.frames++
	every := max(g.cfg.SpectateEvery, 1)
	if !final && g.frames%every != 0 {
		return
	}
	g.opts.Publisher.Publish(g.opts.RoundID, g.round.Snapshot())
}
