package score

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/tomz197/lanerush/internal/persist"
)

// FileStore persists the table as a JSON list of records. Older files
// holding ["ABC", 120] pairs or bare scores are still read.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the table. A missing file is an empty table, not an error.
func (s *FileStore) Load() ([]Record, error) {
	data, err := persist.Read(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scores: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return records, nil
}

// Save writes the table.
func (s *FileStore) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	return persist.WriteJSON(s.Path, records)
}

// Decode parses any of the supported table formats. Entries that match none
// of them are skipped.
func Decode(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		if rec, ok := decodeEntry(item); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func decodeEntry(item json.RawMessage) (Record, bool) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return Record{}, false
	}
	switch item[0] {
	case '{':
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return Record{}, false
		}
		if rec.Initials == "" {
			rec.Initials = UnknownInitials
		}
		return rec, true
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			return Record{}, false
		}
		var initials string
		var score float64
		if json.Unmarshal(pair[0], &initials) != nil || json.Unmarshal(pair[1], &score) != nil {
			return Record{}, false
		}
		if initials == "" {
			initials = UnknownInitials
		}
		return Record{Initials: initials, Score: int(score)}, true
	default:
		var score float64
		if err := json.Unmarshal(item, &score); err != nil {
			return Record{}, false
		}
		return Record{Initials: UnknownInitials, Score: int(score)}, true
	}
}
