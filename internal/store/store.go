// Package store is the local key-value blob store the host writes edited
// images to. Each key holds one opaque blob plus a small JSON metadata record.
//
// The editing core never calls this package; it only produces the bytes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a key has no blob.
var ErrNotFound = errors.New("blob not found")

// Meta describes a stored blob.
type Meta struct {
	ID           string    `json:"id"`
	MimeType     string    `json:"mime_type"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	SizeBytes    int       `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Blob is stored data plus its metadata.
type Blob struct {
	Meta Meta
	Data []byte
}

// FileStore keeps blobs as <dir>/<key>.bin with metadata in <dir>/<key>.json.
//
// FileStore is safe for concurrent use within one process.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a store rooted at dir, creating it if needed.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store root.
func (s *FileStore) Dir() string { return s.dir }

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}

func (s *FileStore) paths(key string) (data, meta string) {
	return filepath.Join(s.dir, key+".bin"), filepath.Join(s.dir, key+".json")
}

// Put writes the blob under key, replacing any previous one. The data file is
// written before the metadata so a reader never sees metadata without data.
func (s *FileStore) Put(key string, b Blob) error {
	if err := validKey(key); err != nil {
		return err
	}
	if b.Meta.ID == "" {
		b.Meta.ID = key
	}
	b.Meta.SizeBytes = len(b.Data)
	if b.Meta.LastModified.IsZero() {
		b.Meta.LastModified = time.Now()
	}
	meta, err := json.MarshalIndent(b.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blob metadata: %w", err)
	}

	dataPath, metaPath := s.paths(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(dataPath, b.Data); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := writeAtomic(metaPath, meta); err != nil {
		return fmt.Errorf("failed to write blob metadata %s: %w", key, err)
	}
	return nil
}

// Get reads the blob stored under key.
func (s *FileStore) Get(key string) (*Blob, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	dataPath, metaPath := s.paths(key)

	s.mu.RLock()
	defer s.mu.RUnlock()
	metaBytes, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob metadata %s: %w", key, err)
	}
	var meta Meta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse blob metadata %s: %w", key, err)
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return &Blob{Meta: meta, Data: data}, nil
}

// Delete removes the blob under key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	dataPath, metaPath := s.paths(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{metaPath, dataPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return nil
}

// List returns metadata for every stored blob, most recently modified first.
func (s *FileStore) List() ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(matches))
	for _, p := range matches {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		var m Meta
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].LastModified.After(metas[j].LastModified)
	})
	return metas, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
