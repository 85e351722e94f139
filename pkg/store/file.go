package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File is a file-based store for CLI usage. Each key is one JSON file in a
// directory, named by the hash of the key.
type File struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns the directory used by NewFile(""):
// $XDG_DATA_HOME/archboard, falling back to ~/.local/share/archboard.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "archboard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "archboard"), nil
}

// NewFile creates a file store in dir, or in [DefaultDir] when dir is
// empty. The directory is created if it doesn't exist.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get retrieves a value. An entry that cannot be decoded is reported as
// ErrCorrupt and left in place for inspection.
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	raw, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read store file: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return entry.Data, true, nil
}

// Set stores a value. The file is written to a temporary name and renamed
// so a crash never leaves a half-written entry.
func (f *File) Set(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(fileEntry{Key: key, Data: data, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	path := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("chmod store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename store file: %w", err)
	}
	return nil
}

// Delete removes a value.
func (f *File) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file: %w", err)
	}
	return nil
}

// Clear removes every entry in the store directory.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(f.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Close does nothing for the file store.
func (f *File) Close() error { return nil }

// Dir returns the store directory.
func (f *File) Dir() string { return f.dir }

// Path returns the file a key is stored in. The first two hash characters
// name a subdirectory to keep directory sizes small.
func (f *File) Path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(f.dir, hash[:2], hash[2:]+".json")
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Store = (*File)(nil)
