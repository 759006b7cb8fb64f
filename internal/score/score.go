// Package score keeps the ranked high score table and its file persistence.
package score

import (
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"
)

// UnknownInitials is used for records loaded without initials.
const UnknownInitials = "???"

// Record is one entry of the high score table.
type Record struct {
	Initials string `json:"initials"`
	Score    int    `json:"score"`
}

// Persistence loads and saves the table.
type Persistence interface {
	Load() ([]Record, error)
	Save([]Record) error
}

// Ledger is the high score table: at most topN records, best first.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	topN    int
	records []Record
	store   Persistence
	logger  *log.Logger
}

// NewLedger returns an empty ledger. store may be nil for an in-memory table.
func NewLedger(topN int, store Persistence, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{
		topN:   max(topN, 1),
		store:  store,
		logger: logger,
	}
}

// Load replaces the table with the persisted one. Missing or unreadable
// storage leaves an empty table.
func (l *Ledger) Load() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	if l.store == nil {
		return nil
	}
	records, err := l.store.Load()
	if err != nil {
		l.logger.Warn("load high scores", "err", err)
		return nil
	}
	l.records = normalize(records, l.topN)
	return slices.Clone(l.records)
}

// normalize sorts best first, keeps equal scores in their existing order and
// drops everything past topN.
func normalize(records []Record, topN int) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.Score - a.Score
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Qualifies reports whether score would enter the table.
func (l *Ledger) Qualifies(score int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.qualifies(score)
}

func (l *Ledger) qualifies(score int) bool {
	if len(l.records) < l.topN {
		return true
	}
	return score > l.records[len(l.records)-1].Score
}

// Add inserts a record and persists the table. It returns the 0-based rank
// of the new record, or -1 when it did not make the cut. A failed save is
// logged; the in-memory table is still updated.
func (l *Ledger) Add(initials string, score int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := Record{Initials: initials, Score: score}
	next := append(slices.Clone(l.records), rec)
	slices.SortStableFunc(next, func(a, b Record) int {
		return b.Score - a.Score
	})

	rank := -1
	for i := len(next) - 1; i >= 0; i-- {
		if next[i] == rec {
			rank = i
			break
		}
	}
	if len(next) > l.topN {
		next = next[:l.topN]
	}
	if rank >= l.topN {
		rank = -1
	}
	l.records = next

	if l.store != nil {
		if err := l.store.Save(slices.Clone(next)); err != nil {
			l.logger.Error("save high scores", "err", err)
		}
	}
	return rank
}

// Records returns a copy of the table, best first.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Lowest returns the score a new record has to beat once the table is full,
// and false while there is still room.
func (l *Ledger) Lowest() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) < l.topN {
		return 0, false
	}
	return l.records[len(l.records)-1].Score, true
}

// NormalizeInitials upper-cases s, keeps letters and digits and cuts it to n
// characters. An empty result becomes UnknownInitials.
func NormalizeInitials(s string, n int) string {
	var b strings.Builder
	count := 0
	for _, r := range strings.ToUpper(s) {
		if count == n {
			break
		}
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		b.WriteRune(r)
		count++
	}
	if b.Len() == 0 {
		return UnknownInitials
	}
	return b.String()
}
