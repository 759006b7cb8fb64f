package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/tomz197/lanerush/internal/score"
	"github.com/tomz197/lanerush/internal/store"
)

func scoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "scores",
		Usage: "print the high score table",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd.String("config"), "")
			if err != nil {
				return err
			}
			logger := log.New(cmd.Root().ErrWriter)
			ledger := score.NewLedger(settings.Snapshot().TopScores, score.NewFileStore(scoresPath(cmd.String("data"))), logger)
			printScores(cmd.Root().Writer, ledger.Load())
			return nil
		},
	}
}

func printScores(w io.Writer, records []score.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No high scores yet.")
		return
	}
	for i, r := range records {
		fmt.Fprintf(w, "%d. %-3s %7d\n", i+1, r.Initials, r.Score)
	}
}

func storeCommand() *cli.Command {
	open := func(cmd *cli.Command) *store.Store {
		return store.Open(storePath(cmd.String("data")), log.New(cmd.Root().ErrWriter))
	}
	return &cli.Command{
		Name:  "store",
		Usage: "show banked points and skins",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printStore(cmd.Root().Writer, open(cmd))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "buy",
				Usage:     "unlock a skin with banked points",
				ArgsUsage: "<skin>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := skinArg(cmd)
					if err != nil {
						return err
					}
					s := open(cmd)
					if err := s.Purchase(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "Skin %d unlocked. %d points left.\n", id, s.Points())
					return nil
				},
			},
			{
				Name:      "select",
				Usage:     "use an unlocked skin for player one",
				ArgsUsage: "<skin>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := skinArg(cmd)
					if err != nil {
						return err
					}
					if err := open(cmd).Select(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "Skin %d selected.\n", id)
					return nil
				},
			},
		},
	}
}

func skinArg(cmd *cli.Command) (int, error) {
	if cmd.Args().Len() != 1 {
		return 0, fmt.Errorf("expected one skin number")
	}
	id, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return 0, fmt.Errorf("skin %q: %w", cmd.Args().First(), err)
	}
	return id, nil
}

func printStore(w io.Writer, s *store.Store) {
	fmt.Fprintf(w, "Points: %d\n", s.Points())
	for _, sk := range s.Skins() {
		status := fmt.Sprintf("%d points", sk.Cost)
		switch {
		case sk.ID == s.Selected():
			status = "selected"
		case sk.Unlocked:
			status = "unlocked"
		}
		fmt.Fprintf(w, "  skin %d  %s\n", sk.ID, status)
	}
}
