package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/audio"
	"github.com/tomz197/lanerush/internal/audio/beepsynth"
	"github.com/tomz197/lanerush/internal/loop"
	"github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/round"
	"github.com/tomz197/lanerush/internal/score"
	"github.com/tomz197/lanerush/internal/spectate"
	"github.com/tomz197/lanerush/internal/store"
)

func play(ctx context.Context, cmd *cli.Command) error {
	data := cmd.String("data")
	if err := os.MkdirAll(data, 0o755); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	logger, closeLog, err := newLogger(data, cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer closeLog()

	settings, err := loadSettings(cmd.String("config"), cmd.String("weather"))
	if err != nil {
		return err
	}
	cfg := settings.Snapshot()

	shop := store.Open(storePath(data), logger)
	ledger := score.NewLedger(cfg.TopScores, score.NewFileStore(scoresPath(data)), logger)
	ledger.Load()

	skin := cmd.Int("skin")
	if skin == 0 {
		skin = shop.Selected()
	}
	if !shop.Unlocked(skin) {
		return fmt.Errorf("skin %d: %w (buy it with: lanes store buy %d)", skin, store.ErrLocked, skin)
	}

	players := 1
	if cmd.Bool("two-player") {
		players = 2
	}

	var player audio.Player = audio.Nop{}
	if !cmd.Bool("mute") {
		synth := beepsynth.New(logger)
		if err := synth.Init(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer synth.Close()
			player = synth
		}
	}

	opts := loop.RunOptions{
		Options: loop.Options{
			Players:  players,
			Skins:    [2]int{skin, 0},
			Settings: settings,
			Deps: round.Deps{
				Assets: asset.NewFileProvider(cmd.String("sprites"), logger),
				Audio:  player,
				Bank:   shop,
				Logger: logger,
			},
			Ledger: ledger,
		},
	}

	if addr := cmd.String("spectate"); addr != "" {
		hub := spectate.NewHub(logger)
		stop := serveSpectators(ctx, addr, hub, logger)
		defer stop()
		opts.Publisher = hub
		opts.RoundID = "local"
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	err = loop.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout, opts)
	logger.Info("session ended", "points", shop.Points())
	return err
}

func loadSettings(path, weather string) (*config.Settings, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	settings := config.NewSettings(cfg)
	if weather != "" {
		if err := settings.Update(func(c *config.Config) { c.Weather = config.Weather(weather) }); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// newLogger writes to <data>/lanerush.log when debugging. Otherwise logs are
// dropped: the terminal belongs to the game.
func newLogger(data string, debug bool) (*log.Logger, func(), error) {
	if !debug {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(logPath(data), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "lanes",
	})
	return logger, func() { f.Close() }, nil
}

func serveSpectators(ctx context.Context, addr string, hub *spectate.Hub, logger *log.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	go hub.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: hub.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("spectator server", "err", err)
		}
	}()
	logger.Info("spectator feed", "addr", addr, "round", "local")

	return func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}
}
