package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tomz197/lanerush/internal/score"
	"github.com/tomz197/lanerush/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := command()
	cmd.Writer = &out
	cmd.ErrWriter = io.Discard
	err := cmd.Run(context.Background(), append([]string{"lanes"}, args...))
	return out.String(), err
}

func TestScoresCommandEmpty(t *testing.T) {
	out, err := run(t, "--data", t.TempDir(), "scores")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if !strings.Contains(out, "No high scores yet.") {
		t.Fatalf("output = %q", out)
	}
}

func TestScoresCommandPrintsTable(t *testing.T) {
	dir := t.TempDir()
	l := score.NewLedger(5, score.NewFileStore(scoresPath(dir)), nil)
	l.Add("ABC", 120)
	l.Add("XYZ", 300)

	out, err := run(t, "--data", dir, "scores")
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if !strings.HasPrefix(out, "1. XYZ     300\n2. ABC     120\n") {
		t.Fatalf("output = %q", out)
	}
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "--data", dir, "store", "buy", "3")
	if !errors.Is(err, store.ErrInsufficientPoints) {
		t.Fatalf("buy without points = %v", err)
	}

	store.Open(storePath(dir), nil).AddPoints(500)
	out, err := run(t, "--data", dir, "store", "buy", "3")
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !strings.Contains(out, "Skin 3 unlocked. 0 points left.") {
		t.Fatalf("output = %q", out)
	}

	if _, err := run(t, "--data", dir, "store", "select", "3"); err != nil {
		t.Fatalf("select: %v", err)
	}
	out, err = run(t, "--data", dir, "store")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.Contains(out, "skin 3  selected") || !strings.Contains(out, "skin 4  500 points") {
		t.Fatalf("output = %q", out)
	}

	if _, err := run(t, "--data", dir, "store", "buy", "x"); err == nil {
		t.Fatal("a non-numeric skin should fail")
	}
}

func TestLoadSettingsRejectsUnknownWeather(t *testing.T) {
	if _, err := loadSettings("", "hail"); err == nil {
		t.Fatal("unknown weather accepted")
	}
	s, err := loadSettings("", "snow")
	if err != nil || s.Snapshot().Weather != "snow" {
		t.Fatalf("snow: %v", err)
	}
}
