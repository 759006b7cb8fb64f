// Package persist writes small JSON documents to disk without leaving a
// half-written file behind.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a path for the fallback copy written when the
// primary save fails.
const BackupSuffix = ".bak"

// WriteJSON encodes v to path through a temp file in the same directory and
// an atomic rename, then drops any stale backup. If the rename fails, a plain
// copy is written to path+".bak" and the original error is still returned.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := writeAtomic(path, data); err != nil {
		if bakErr := os.WriteFile(path+BackupSuffix, data, 0o644); bakErr != nil {
			return fmt.Errorf("save %s: %w (backup: %v)", path, err, bakErr)
		}
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Remove(path + BackupSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backup of %s: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Read returns the contents of path, or of its backup copy when path is
// missing or the backup is newer (a save that failed after path was last
// written). It returns fs.ErrNotExist (wrapped) when neither exists.
func Read(path string) ([]byte, error) {
	bak := path + BackupSuffix
	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if bakInfo, bakErr := os.Stat(bak); bakErr == nil {
		if err != nil || bakInfo.ModTime().After(info.ModTime()) {
			return os.ReadFile(bak)
		}
	}
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
