// Package asset loads the sprite masks used to draw vehicles.
//
// A sprite is a small text mask: '#' marks a filled cell, anything else is
// empty. Masks are stretched over the logical box of the entity when drawn,
// so their size only sets the level of detail.
package asset

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Well-known sprite names.
const (
	Rival    = "rival"
	Obstacle = "obstacle"
)

// Player returns the sprite name for a player skin.
func Player(skin int) string {
	return "player" + strconv.Itoa(skin)
}

//go:embed sprites/*.txt
var builtin embed.FS

// Sprite is an immutable text mask.
type Sprite struct {
	Name        string
	Rows        []string
	Placeholder bool // True when no mask could be loaded
}

// Width returns the mask width in cells.
func (s Sprite) Width() int {
	w := 0
	for _, r := range s.Rows {
		w = max(w, len(r))
	}
	return w
}

// Height returns the mask height in cells.
func (s Sprite) Height() int {
	return len(s.Rows)
}

// Filled reports whether the cell at col, row is part of the sprite.
func (s Sprite) Filled(col, row int) bool {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return false
	}
	return s.Rows[row][col] == '#'
}

// placeholderSize is the mask size of the fallback sprite.
const placeholderSize = 4

// Placeholder returns the solid block used when a sprite cannot be loaded.
func Placeholder(name string) Sprite {
	rows := make([]string, placeholderSize)
	for i := range rows {
		rows[i] = strings.Repeat("#", placeholderSize)
	}
	return Sprite{Name: name, Rows: rows, Placeholder: true}
}

// Provider hands out sprites by name. Implementations never fail: missing or
// broken assets come back as a placeholder.
type Provider interface {
	Sprite(name string) Sprite
}

// FileProvider looks for <dir>/<name>.txt first, then the built-in sprites,
// then falls back to Placeholder. Results are cached.
type FileProvider struct {
	dir    string
	logger *log.Logger

	mu    sync.Mutex
	cache map[string]Sprite
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider reading overrides from dir. An empty dir
// serves the built-in sprites only.
func NewFileProvider(dir string, logger *log.Logger) *FileProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &FileProvider{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]Sprite),
	}
}

// Builtin returns a provider serving only the embedded sprites.
func Builtin() *FileProvider {
	return NewFileProvider("", nil)
}

// Sprite returns the sprite called name.
func (p *FileProvider) Sprite(name string) Sprite {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.cache[name]; ok {
		return s
	}
	s := p.load(name)
	p.cache[name] = s
	return s
}

func (p *FileProvider) load(name string) Sprite {
	file := name + ".txt"
	if p.dir != "" {
		data, err := os.ReadFile(filepath.Join(p.dir, file))
		switch {
		case err == nil:
			if rows := parse(data); len(rows) > 0 {
				return Sprite{Name: name, Rows: rows}
			}
			p.logger.Warn("empty sprite file", "name", name, "dir", p.dir)
		case !errors.Is(err, fs.ErrNotExist):
			p.logger.Warn("read sprite", "name", name, "err", err)
		}
	}

	data, err := builtin.ReadFile("sprites/" + file)
	if err == nil {
		if rows := parse(data); len(rows) > 0 {
			return Sprite{Name: name, Rows: rows}
		}
	}
	p.logger.Warn("sprite not found, using placeholder", "name", name)
	return Placeholder(name)
}

// parse splits a mask into rows, dropping trailing blank lines.
func parse(data []byte) []string {
	var rows []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		rows = append(rows, strings.TrimRight(sc.Text(), "\r"))
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}
