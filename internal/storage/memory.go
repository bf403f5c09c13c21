package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// Compile-time check to ensure MemoryStorage implements Storage.
var _ Storage = (*MemoryStorage)(nil)

var errNoSuchKey = errors.New("no such key")

type memObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process memory. Put reads the whole body,
// so it is meant for tests and local development only.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memObject)}
}

func (m *MemoryStorage) EnsureNamespace(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(readerWithContext(ctx, content))
	if err != nil {
		return classified("put object", key, ErrTransport, err)
	}

	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentTypeFor(key, contentType)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, classified("get object", key, ErrNotFound, errNoSuchKey)
	}

	// obj.data is never mutated after Put, so readers can share it.
	info := ObjectInfo{Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return classified("delete object", key, ErrNotFound, errNoSuchKey)
	}
	delete(m.objects, key)
	return nil
}

// List returns keys in map iteration order, which Go randomizes.
func (m *MemoryStorage) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys, nil
}
