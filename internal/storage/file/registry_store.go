// Package file implements the storage interfaces on pretty-printed JSON
// files. The registry file is the published point of truth for the website.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// RegistryStore is a JSON-file implementation of storage.RegistryStore.
type RegistryStore struct {
	path string
}

// NewRegistryStore creates a registry store backed by the given file path.
func NewRegistryStore(path string) *RegistryStore {
	return &RegistryStore{path: path}
}

// Compile-time interface check.
var _ storage.RegistryStore = (*RegistryStore)(nil)

// Load returns all tracked entries; a missing file loads as empty.
func (s *RegistryStore) Load(_ context.Context) ([]domain.StockEntry, error) {
	var entries []domain.StockEntry
	if err := readJSON(s.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save replaces the registry atomically (temp file + rename) so a crash
// mid-write never corrupts the published feed.
func (s *RegistryStore) Save(_ context.Context, entries []domain.StockEntry) error {
	if entries == nil {
		entries = []domain.StockEntry{}
	}
	return writeJSON(s.path, entries)
}

// VideoStore is a JSON-file implementation of storage.VideoStore.
type VideoStore struct {
	path string
}

// NewVideoStore creates a video store backed by the given file path.
func NewVideoStore(path string) *VideoStore {
	return &VideoStore{path: path}
}

var _ storage.VideoStore = (*VideoStore)(nil)

// Load returns the last fetched batch, empty if the file does not exist.
func (s *VideoStore) Load(_ context.Context) ([]domain.VideoRecord, error) {
	var videos []domain.VideoRecord
	if err := readJSON(s.path, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Save replaces the stored batch atomically.
func (s *VideoStore) Save(_ context.Context, videos []domain.VideoRecord) error {
	if videos == nil {
		videos = []domain.VideoRecord{}
	}
	return writeJSON(s.path, videos)
}

// readJSON decodes a JSON file into dest. Missing files leave dest untouched.
func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes dest as pretty-printed, newline-terminated UTF-8 JSON.
// The write goes to a temp file in the same directory and is renamed into
// place, so readers only ever see complete documents.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
