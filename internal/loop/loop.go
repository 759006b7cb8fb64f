// Package loop runs a game session: the title, round and score screens,
// driven by terminal input at a fixed tick rate.
package loop

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/input"
)

// ErrIdle is returned by Run when a session saw no input for too long.
var ErrIdle = errors.New("session idle")

// RunOptions add terminal concerns to the game options.
type RunOptions struct {
	Options
	TermSizeFunc draw.TermSizeFunc
	IdleTimeout  time.Duration // 0 disables the idle disconnect
}

// Run plays a session with the standard Input → Update → Draw cycle until
// the player quits, input ends, ctx is cancelled or the session goes idle.
// A round still in progress when Run returns is forfeited.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts RunOptions) error {
	termSize := opts.TermSizeFunc
	if termSize == nil {
		termSize = draw.DefaultTermSizeFunc
	}

	game := NewGame(opts.Options)
	stream := input.StartStream(r)
	cw := draw.NewChunkWriter(w, 0, 0)
	canvas := draw.NewScaledCanvas(1, 1, game.cfg.FieldWidth, game.cfg.FieldHeight)
	termW, termH := 80, 24

	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	draw.ClearScreen(w)

	lastInput := time.Now()

	for {
		frameStart := time.Now()
		tick := game.cfg.TickDuration()

		// ===== INPUT PHASE =====
		if ctx.Err() != nil {
			game.Abandon()
			return shutdown(cw, termSize)
		}
		events := stream.Poll()
		if stream.Closed() {
			game.Abandon()
			return nil
		}
		if len(events) > 0 {
			lastInput = frameStart
		}
		idle := frameStart.Sub(lastInput)
		if opts.IdleTimeout > 0 && idle >= opts.IdleTimeout {
			game.Abandon()
			draw.ClearScreen(w)
			return ErrIdle
		}

		// ===== UPDATE PHASE =====
		if !game.Step(events) {
			draw.ClearScreen(w)
			return nil
		}

		// ===== DRAW PHASE =====
		if tw, th, err := termSize(); err == nil {
			termW, termH = tw, th
		}
		l := newLayout(termW, termH)
		if canvas.LogicalWidth() != game.cfg.FieldWidth || canvas.LogicalHeight() != game.cfg.FieldHeight {
			canvas = draw.NewScaledCanvas(l.w, l.h, game.cfg.FieldWidth, game.cfg.FieldHeight)
		}
		canvas.Resize(l.w, l.h)
		canvas.SetOffset(l.offCol, l.offRow)

		draw.ClearScreen(cw)
		canvas.Clear()
		if game.round != nil && game.phase != PhaseTitle {
			if err := game.round.Draw(canvas); err != nil {
				return err
			}
		}
		canvas.Render(cw)
		canvas.RenderBorder(cw)
		drawOverlay(cw, game, l)
		if opts.IdleTimeout > 0 && opts.IdleTimeout-idle <= idleWarning {
			drawIdleWarning(cw, l, int((opts.IdleTimeout-idle).Seconds())+1)
		}
		if err := cw.Flush(); err != nil {
			game.Abandon()
			return err
		}

		// ===== FRAME TIMING =====
		if elapsed := time.Since(frameStart); elapsed < tick {
			time.Sleep(tick - elapsed)
		}
	}
}

// shutdown shows a countdown before the session is closed by the server.
func shutdown(cw *draw.ChunkWriter, termSize draw.TermSizeFunc) error {
	termW, termH := 80, 24
	deadline := time.Now().Add(shutdownDisplay)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			draw.ClearScreen(cw)
			return cw.Flush()
		}
		if tw, th, err := termSize(); err == nil {
			termW, termH = tw, th
		}
		draw.ClearScreen(cw)
		drawShutdown(cw, newLayout(termW, termH), int(remaining.Seconds())+1)
		if err := cw.Flush(); err != nil {
			return err
		}
		time.Sleep(min(remaining, 250*time.Millisecond))
	}
}
