package snapshot

import (
	"context"
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

const metaSuffix = ".meta"

// DiskStore stores snapshots in a local directory. Keys map to file paths
// below the directory; each object has a JSON sidecar holding its metadata.
type DiskStore struct {
	dir string
	mu  sync.RWMutex
}

type diskMeta struct {
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Put implements Store.
func (s *DiskStore) Put(_ context.Context, obj *Object) error {
	path, err := s.path(obj.Key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(&diskMeta{
		ContentType: obj.ContentType,
		Metadata:    obj.Metadata,
		CreatedAt:   obj.CreatedAt,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, obj.Body, 0644); err != nil {
		return err
	}
	return os.WriteFile(path+metaSuffix, data, 0644)
}

// Get implements Store.
func (s *DiskStore) Get(_ context.Context, key string) (*Object, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	body, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	obj := &Object{Key: key, ContentType: "application/octet-stream", Body: body}
	if data, err := os.ReadFile(path + metaSuffix); err == nil {
		var meta diskMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("snapshot: corrupt metadata for %q: %w", key, err)
		}
		obj.ContentType = meta.ContentType
		obj.Metadata = meta.Metadata
		obj.CreatedAt = meta.CreatedAt
	}
	return obj, nil
}

// List implements Store.
func (s *DiskStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// path maps a key to a file below the store directory.
func (s *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot: invalid key %q", key)
	}
	if strings.HasSuffix(clean, metaSuffix) {
		return "", fmt.Errorf("snapshot: key %q uses the reserved %s suffix", key, metaSuffix)
	}
	return filepath.Join(s.dir, clean), nil
}
