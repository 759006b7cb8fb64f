package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/score"
)

func TestScoresEndpoint(t *testing.T) {
	store := score.NewFileStore(filepath.Join(t.TempDir(), "highscores.json"))
	if err := store.Save([]score.Record{{Initials: "ABC", Score: 10}, {Initials: "XYZ", Score: 90}}); err != nil {
		t.Fatal(err)
	}
	mux := newMux("example.com", "", store, log.New(io.Discard))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scores", nil))
	var got []score.Record
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Initials != "XYZ" {
		t.Fatalf("/scores = %v", got)
	}
}

func TestIndexPage(t *testing.T) {
	store := score.NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	mux := newMux("example.com", "", store, log.New(io.Discard))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "ssh -t example.com") || !strings.Contains(body, "No high scores yet.") {
		t.Fatalf("page = %s", body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
