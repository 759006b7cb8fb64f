// Package store holds the points bank and the skin catalog players spend it on.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tomz197/lanerush/internal/persist"
)

var (
	ErrUnknownSkin        = errors.New("unknown skin")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrLocked             = errors.New("skin is locked")
)

// SkinCost is the price of every skin that is not free.
const SkinCost = 500

// Skin is one entry of the catalog. IDs start at 1.
type Skin struct {
	ID       int  `json:"id"`
	Cost     int  `json:"cost"`
	Unlocked bool `json:"unlocked"`
}

// Catalog returns the default skins: 1 and 2 free, 3 to 5 for sale.
func Catalog() []Skin {
	return []Skin{
		{ID: 1, Unlocked: true},
		{ID: 2, Unlocked: true},
		{ID: 3, Cost: SkinCost},
		{ID: 4, Cost: SkinCost},
		{ID: 5, Cost: SkinCost},
	}
}

type document struct {
	Points   int    `json:"points"`
	Skins    []Skin `json:"skins"`
	Selected int    `json:"selected"`
}

// Store is safe for concurrent use. Every change is written to disk when a
// path is set.
type Store struct {
	mu       sync.Mutex
	path     string
	points   int
	skins    []Skin
	selected int
	logger   *log.Logger
}

// Open loads the store at path. Missing or unreadable data starts from the
// default catalog and zero points. An empty path keeps everything in memory.
func Open(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		path:     path,
		skins:    Catalog(),
		selected: 1,
		logger:   logger,
	}
	if path == "" {
		return s
	}

	doc, err := load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		logger.Warn("load store, using defaults", "path", path, "err", err)
	default:
		s.apply(doc)
	}
	return s
}

func load(path string) (document, error) {
	var doc document
	data, err := persist.Read(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// apply merges a loaded document onto the default catalog. Unknown skins
// are ignored and free skins stay unlocked.
func (s *Store) apply(doc document) {
	s.points = max(doc.Points, 0)
	for _, saved := range doc.Skins {
		if i := s.index(saved.ID); i >= 0 && saved.Unlocked {
			s.skins[i].Unlocked = true
		}
	}
	if i := s.index(doc.Selected); i >= 0 && s.skins[i].Unlocked {
		s.selected = doc.Selected
	}
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.skins, func(sk Skin) bool { return sk.ID == id })
}

func (s *Store) save() {
	if s.path == "" {
		return
	}
	doc := document{Points: s.points, Skins: slices.Clone(s.skins), Selected: s.selected}
	if err := persist.WriteJSON(s.path, doc); err != nil {
		s.logger.Error("save store", "err", err)
	}
}

// AddPoints banks n points. Non-positive amounts are ignored.
func (s *Store) AddPoints(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points += n
	s.save()
	s.logger.Debug("points banked", "added", n, "total", s.points)
}

// Points returns the banked total.
func (s *Store) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points
}

// Skins returns a copy of the catalog.
func (s *Store) Skins() []Skin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.skins)
}

// Unlocked reports whether skin id can be used.
func (s *Store) Unlocked(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	return i >= 0 && s.skins[i].Unlocked
}

// Purchase unlocks skin id and deducts its cost. Buying an unlocked skin is
// a no-op.
func (s *Store) Purchase(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("purchase skin %d: %w", id, ErrUnknownSkin)
	}
	if s.skins[i].Unlocked {
		return nil
	}
	if s.points < s.skins[i].Cost {
		return fmt.Errorf("purchase skin %d: %w (have %d, need %d)", id, ErrInsufficientPoints, s.points, s.skins[i].Cost)
	}
	s.points -= s.skins[i].Cost
	s.skins[i].Unlocked = true
	s.save()
	s.logger.Info("skin purchased", "skin", id, "points", s.points)
	return nil
}

// Select makes skin id the default for player one.
func (s *Store) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("select skin %d: %w", id, ErrUnknownSkin)
	}
	if !s.skins[i].Unlocked {
		return fmt.Errorf("select skin %d: %w", id, ErrLocked)
	}
	s.selected = id
	s.save()
	return nil
}

// Selected returns the selected skin.
func (s *Store) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}
