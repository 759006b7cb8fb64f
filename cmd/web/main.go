package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/config"
	"github.com/tomz197/lanerush/internal/score"
)

const (
	defaultHost    = "0.0.0.0"
	defaultPort    = "8080"
	defaultDataDir = "/app/data"
	tableSize      = 5
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Parse(htmlPage))

type pageData struct {
	SSHHost  string
	Scores   []score.Record
	Spectate string
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "web"})
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("load .env", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	spectate := config.GetEnv("SPECTATE_URL", "")
	scores := score.NewFileStore(filepath.Join(config.GetEnv("DATA_DIR", defaultDataDir), "highscores.json"))

	addr := fmt.Sprintf("%s:%s", host, port)
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, newMux(sshHost, spectate, scores, logger)); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func newMux(sshHost, spectate string, scores score.Persistence, logger *log.Logger) *http.ServeMux {
	table := func() []score.Record {
		ledger := score.NewLedger(tableSize, scores, logger)
		return ledger.Load()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := pageData{SSHHost: sshHost, Scores: table(), Spectate: spectate}
		if err := page.Execute(w, data); err != nil {
			logger.Warn("render page", "err", err)
		}
	})
	mux.HandleFunc("/scores", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		records := table()
		if records == nil {
			records = []score.Record{}
		}
		if err := json.NewEncoder(w).Encode(records); err != nil {
			logger.Warn("write scores", "err", err)
		}
	})
	return mux
}
