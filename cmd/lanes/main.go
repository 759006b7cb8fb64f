// Command lanes plays the game in the local terminal.
//
// Besides playing it can print the high score table (lanes scores) and
// manage the skin store (lanes store, lanes store buy 3, lanes store select 3).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tomz197/lanerush/internal/config"
)

const appName = "lanerush"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := command().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lanes: %v\n", err)
		os.Exit(1)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:  "lanes",
		Usage: "dodge traffic across six lanes, alone or with a friend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Usage:   "directory for high scores, the store and logs",
				Value:   defaultDataDir(),
				Sources: cli.EnvVars("LANES_DATA"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "JSON file with game settings",
				Sources: cli.EnvVars("LANES_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "two-player",
				Aliases: []string{"2"},
				Usage:   "two players on one keyboard (A/D and arrows)",
				Sources: cli.EnvVars("LANES_TWO_PLAYER"),
			},
			&cli.IntFlag{
				Name:  "skin",
				Usage: "skin for player one (default: the one selected in the store)",
			},
			&cli.StringFlag{
				Name:    "weather",
				Usage:   "clear, rain, snow or sunrise",
				Sources: cli.EnvVars("LANES_WEATHER"),
			},
			&cli.StringFlag{
				Name:    "sprites",
				Usage:   "directory with replacement sprite files",
				Sources: cli.EnvVars("LANES_SPRITES"),
			},
			&cli.BoolFlag{
				Name:    "mute",
				Usage:   "disable music and sound effects",
				Sources: cli.EnvVars("LANES_MUTE"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write a debug log to <data>/lanerush.log",
			},
			&cli.StringFlag{
				Name:    "spectate",
				Usage:   "serve a live websocket feed of the round on this address (e.g. :8081)",
				Sources: cli.EnvVars("LANES_SPECTATE_ADDR"),
			},
		},
		Action: play,
		Commands: []*cli.Command{
			scoresCommand(),
			storeCommand(),
		},
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(dir, appName)
}

func scoresPath(data string) string { return filepath.Join(data, "highscores.json") }
func storePath(data string) string  { return filepath.Join(data, "store.json") }
func logPath(data string) string    { return filepath.Join(data, appName+".log") }
