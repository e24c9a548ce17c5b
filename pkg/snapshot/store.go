package snapshot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// Object is one stored snapshot.
type Object struct {
	Key         string
	ContentType string
	Body        []byte

	// Metadata holds string annotations stored alongside the body.
	Metadata map[string]string

	CreatedAt time.Time
}

// Store persists snapshot objects.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores obj under obj.Key, replacing any previous object.
	Put(ctx context.Context, obj *Object) error

	// Get retrieves an object. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, key string) (*Object, error)

	// List returns the keys starting with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// MemoryStore keeps objects in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*Object)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, obj *Object) error {
	cp := *obj
	cp.Body = append([]byte(nil), obj.Body...)
	s.mu.Lock()
	s.objects[obj.Key] = &cp
	s.mu.Unlock()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := *obj
	return &cp, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
