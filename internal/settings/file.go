package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"deckhand/pkg/logging"
)

// FileStore is a Store backed by a single YAML file.
//
// The file holds a flat string map. Every mutation rewrites the file through
// a temp file in the same directory followed by a rename, so readers never
// observe a partially written file.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileStore loads the store at path. A missing file yields an empty
// store. A file that cannot be parsed is logged and treated as empty; the
// next successful Set replaces it.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("settings path cannot be empty")
	}
	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}
	fs.load()
	return fs, nil
}

// Path returns the file the store persists to.
func (fs *FileStore) Path() string {
	return fs.path
}

// Get returns the stored value for key and whether it was present.
func (fs *FileStore) Get(key string) (string, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.values[key]
	return v, ok
}

// Set stores value under key and persists the store.
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.values[key] = value
	return fs.persist()
}

// Delete removes key and persists the store. Removing an absent key is a
// no-op and does not touch the file.
func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.values[key]; !ok {
		return nil
	}
	delete(fs.values, key)
	return fs.persist()
}

// Keys returns all stored keys in sorted order.
func (fs *FileStore) Keys() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	keys := make([]string, 0, len(fs.values))
	for k := range fs.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reload re-reads the backing file, replacing all in-memory values. Callers
// use this after an external process rewrote the file.
func (fs *FileStore) Reload() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.load()
	return nil
}

// load reads the backing file into fs.values. Callers hold fs.mu.
func (fs *FileStore) load() {
	fs.values = make(map[string]string)

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Settings", "Failed to read settings file %s: %v", fs.path, err)
		}
		return
	}

	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		logging.Warn("Settings", "Settings file %s is corrupt, starting empty: %v", fs.path, err)
		return
	}
	if values != nil {
		fs.values = values
	}
}

// persist writes fs.values to the backing file. Callers hold fs.mu.
func (fs *FileStore) persist() error {
	data, err := yaml.Marshal(fs.values)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file %s: %w", fs.path, err)
	}

	logging.Debug("Settings", "Persisted %d settings to %s", len(fs.values), fs.path)
	return nil
}
