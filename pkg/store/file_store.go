package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

const recordFileName = "counter.json"

// FileStore implements Store using a JSON file.
type FileStore struct {
	dir string
}

// NewFileStore creates a new FileStore for the given directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load retrieves the last saved record from disk.
// Returns a zero record and nil error if no record file exists.
func (s *FileStore) Load(ctx context.Context) (Record, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Save persists the record atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	// Ensure directory exists
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	path := s.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmp, path)
}

// Path returns the full path to the record file.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, recordFileName)
}
