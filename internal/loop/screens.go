package loop

import (
	"fmt"
	"io"
	"strings"

	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/object"
	"github.com/tomz197/lanerush/internal/score"
)

// layout is where the road sits on the terminal this frame. Offsets are
// 0-based; text positions derived from it are 1-based.
type layout struct {
	termW, termH int
	w, h         int
	offCol       int
	offRow       int
}

func newLayout(termW, termH int) layout {
	w, h, offCol, offRow := draw.Fit(termW, termH, hudRows)
	return layout{termW: termW, termH: termH, w: w, h: h, offCol: offCol, offRow: offRow}
}

func (l layout) centerX() int { return l.offCol + l.w/2 + 1 }
func (l layout) centerY() int { return l.offRow + l.h/2 + 1 }

// lines writes centered lines starting at row y.
func lines(w io.Writer, centerX, y int, values ...string) {
	for i, v := range values {
		object.Centered(centerX, y+i, v).Draw(w)
	}
}

// drawOverlay draws everything that is text: HUD and the current screen.
func drawOverlay(w io.Writer, g *Game, l layout) {
	if g.round != nil && g.phase != PhaseTitle {
		drawHUD(w, g, l)
	}
	switch g.phase {
	case PhaseTitle:
		drawTitle(w, g, l)
	case PhasePaused:
		drawPaused(w, l)
	case PhaseInitials:
		drawInitials(w, g, l)
	case PhaseGameOver:
		drawGameOver(w, g, l)
	}
}

// drawHUD draws scores and lives per player, the level and its progress.
func drawHUD(w io.Writer, g *Game, l layout) {
	r := g.round
	left := l.offCol + 1

	var b strings.Builder
	for i, p := range r.Players {
		if i > 0 {
			b.WriteString("   ")
		}
		fmt.Fprintf(&b, "P%d %6d %s", i+1, r.Scores[i], lives(p.Lives))
	}
	object.Text{X: left, Y: 1, Value: b.String()}.Draw(w)

	threshold := g.cfg.Difficulty.LevelUpThreshold(r.Level)
	progress := g.cfg.Difficulty.Progress(r.Metric(), r.Level)
	status := fmt.Sprintf("LEVEL %d %s %d/%d", r.Level, draw.ProgressBar(progress, progressWidth), r.Metric()%threshold, threshold)
	object.Text{X: left, Y: 2, Value: status}.Draw(w)

	hint := "P pause"
	object.Text{X: l.offCol + l.w - len(hint) + 1, Y: 1, Value: hint}.Draw(w)
}

func lives(n int) string {
	if n <= 0 {
		return "OUT"
	}
	return strings.Repeat("♥", n)
}

func drawTitle(w io.Writer, g *Game, l layout) {
	cx, cy := l.centerX(), l.centerY()
	top := cy - 8

	lines(w, cx, top,
		"L A N E   R U S H",
		"",
		"Press SPACE to start",
	)

	controls := "Player 1: A/D   Player 2: Arrows or J/L   P pause   Q quit"
	if g.opts.Players == 1 {
		controls = "A/D or Arrows to change lanes   P pause   Q quit"
	}
	lines(w, cx, top+4, controls)

	if wallet, ok := g.opts.Deps.Bank.(interface{ Points() int }); ok {
		lines(w, cx, top+5, fmt.Sprintf("Points banked: %d", wallet.Points()))
	}
	if beat := scoreToBeat(g.opts.Ledger); beat != "" {
		lines(w, cx, top+6, beat)
	}

	lines(w, cx, top+7, scoreTable(g.opts.Ledger.Records(), nil, g.cfg.TopScores)...)
}

func drawPaused(w io.Writer, l layout) {
	lines(w, l.centerX(), l.centerY()-1,
		"P A U S E D",
		"",
		"P resume   R restart   Q exit",
	)
}

func drawInitials(w io.Writer, g *Game, l layout) {
	entry, p := g.Entry()
	slot := entry + strings.Repeat("_", max(g.cfg.InitialsLen-len([]rune(entry)), 0))
	lines(w, l.centerX(), l.centerY()-2,
		"NEW HIGH SCORE",
		fmt.Sprintf("Player %d: %d", p+1, g.outcome.Scores[p]),
		"",
		"Initials: "+slot,
		"",
		"ENTER to confirm   ESC to skip",
	)
}

func drawGameOver(w io.Writer, g *Game, l layout) {
	cx, cy := l.centerX(), l.centerY()
	top := cy - 7

	header := []string{"G A M E   O V E R", ""}
	for i, s := range g.outcome.Scores {
		header = append(header, fmt.Sprintf("Player %d: %d", i+1, s))
	}
	header = append(header, fmt.Sprintf("Level reached: %d", g.outcome.Level))
	if beat := scoreToBeat(g.opts.Ledger); beat != "" {
		header = append(header, beat)
	}
	header = append(header, "")
	lines(w, cx, top, header...)

	table := scoreTable(g.opts.Ledger.Records(), g.ranks, g.cfg.TopScores)
	lines(w, cx, top+len(header), table...)
	lines(w, cx, top+len(header)+len(table)+1, "SPACE play again   Q menu")
}

// scoreToBeat is empty while the table still has free rows.
func scoreToBeat(ledger Ledger) string {
	low, full := ledger.Lowest()
	if !full {
		return ""
	}
	return fmt.Sprintf("Score to beat: %d", low+1)
}

// scoreTable formats the high score table. Rows reached this round are
// marked.
func scoreTable(records []score.Record, ranks []int, size int) []string {
	out := []string{"HIGH SCORES"}
	for i := 0; i < size; i++ {
		mark := " "
		for _, r := range ranks {
			if r == i {
				mark = ">"
			}
		}
		if i < len(records) {
			out = append(out, fmt.Sprintf("%s%d. %-3s %7d", mark, i+1, records[i].Initials, records[i].Score))
		} else {
			out = append(out, fmt.Sprintf("%s%d. %-3s %7s", mark, i+1, "---", "-"))
		}
	}
	return out
}

func drawShutdown(w io.Writer, l layout, remaining int) {
	lines(w, l.centerX(), l.centerY()-1,
		"SERVER SHUTTING DOWN",
		"",
		fmt.Sprintf("Disconnecting in %d...", remaining),
	)
}

func drawIdleWarning(w io.Writer, l layout, remaining int) {
	lines(w, l.centerX(), l.termH,
		fmt.Sprintf("Idle: disconnecting in %ds, press any key", remaining))
}
