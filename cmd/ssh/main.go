package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/lanerush/internal/asset"
	"github.com/tomz197/lanerush/internal/config"
	"github.com/tomz197/lanerush/internal/draw"
	"github.com/tomz197/lanerush/internal/loop"
	gameconfig "github.com/tomz197/lanerush/internal/loop/config"
	"github.com/tomz197/lanerush/internal/round"
	"github.com/tomz197/lanerush/internal/score"
	"github.com/tomz197/lanerush/internal/spectate"
	"github.com/tomz197/lanerush/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDataDir     = "/app/data"
	defaultIdleSeconds = 120
)

// shared is everything sessions have in common. Ledger and store guard
// themselves; each session owns its round.
type shared struct {
	settings *gameconfig.Settings
	ledger   *score.Ledger
	store    *store.Store
	assets   asset.Provider
	hub      *spectate.Hub
	idle     time.Duration
	logger   *log.Logger
	ctx      context.Context
	sessions atomic.Int64
	wg       sync.WaitGroup
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "ssh"})
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("load .env", "err", err)
	}
	if config.GetEnvBool("DEBUG", false) {
		logger.SetLevel(log.DebugLevel)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dataDir := config.GetEnv("DATA_DIR", defaultDataDir)
	spectateAddr := config.GetEnv("SPECTATE_ADDR", "")
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "data", dataDir)

	cfg, err := gameconfig.Load(config.GetEnv("GAME_CONFIG", ""))
	if err != nil {
		logger.Fatal("load game config", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := &shared{
		settings: gameconfig.NewSettings(cfg),
		ledger:   score.NewLedger(cfg.TopScores, score.NewFileStore(filepath.Join(dataDir, "highscores.json")), logger),
		store:    store.Open(filepath.Join(dataDir, "store.json"), logger),
		assets:   asset.NewFileProvider(config.GetEnv("SPRITES_DIR", ""), logger),
		idle:     time.Duration(config.GetEnvInt("INACTIVITY_SECONDS", defaultIdleSeconds)) * time.Second,
		logger:   logger,
		ctx:      ctx,
	}
	app.ledger.Load()

	var spectators *http.Server
	if spectateAddr != "" {
		app.hub = spectate.NewHub(logger)
		go app.hub.Run(ctx)
		spectators = &http.Server{Addr: spectateAddr, Handler: app.hub.Handler()}
		go func() {
			if err := spectators.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator server", "err", err)
			}
		}()
		logger.Info("spectator feed", "addr", spectateAddr)
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			app.gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down", "sessions", app.sessions.Load())

	// Sessions see the cancellation, forfeit their rounds and show a notice.
	cancel()
	waited := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(15 * time.Second):
		logger.Warn("sessions still open after grace period")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if spectators != nil {
		_ = spectators.Shutdown(shutdownCtx)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameMiddleware runs an independent game for every session. "ssh -t host
// duo" starts a two-player game on the same keyboard.
func (app *shared) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}
		app.wg.Add(1)
		defer app.wg.Done()

		players := 1
		if args := sess.Command(); len(args) > 0 && args[0] == "duo" {
			players = 2
		}
		id := fmt.Sprintf("%s-%d", sess.User(), app.sessions.Add(1))
		logger := app.logger.With("round", id)
		logger.Info("new game session", "user", sess.User(), "terminal", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height), "players", players)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		opts := loop.RunOptions{
			Options: loop.Options{
				Players:  players,
				Settings: app.settings,
				Deps: round.Deps{
					Assets: app.assets,
					Bank:   app.store,
					Logger: logger,
				},
				Ledger:  app.ledger,
				RoundID: id,
			},
			TermSizeFunc: sizeTracker.getSize,
			IdleTimeout:  app.idle,
		}
		if app.hub != nil {
			opts.Publisher = app.hub
		}

		err := loop.Run(app.ctx, bufio.NewReader(sess), sess, opts)
		switch {
		case errors.Is(err, loop.ErrIdle):
			fmt.Fprintln(sess, "Disconnected for inactivity.")
		case err != nil:
			logger.Error("game error", "user", sess.User(), "err", err)
		}

		logger.Info("session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
