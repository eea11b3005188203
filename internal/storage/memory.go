package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process BlobStore used by tests and local runs.
// Paths listed in FailCopy make Copy fail.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	FailCopy map[string]error
	copies   int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		FailCopy: make(map[string]error),
	}
}

func (m *MemoryStore) Copy(ctx context.Context, sourcePath, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailCopy[sourcePath]; ok {
		return "", fmt.Errorf("copy %s: %w", sourcePath, err)
	}
	data, ok := m.objects[sourcePath]
	if !ok {
		return "", fmt.Errorf("copy %s: %w", sourcePath, ErrBlobNotFound)
	}
	dest := NewObjectPath(destDir, sourcePath)
	m.objects[dest] = append([]byte(nil), data...)
	m.copies++
	return dest, nil
}

func (m *MemoryStore) Get(ctx context.Context, objectPath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[objectPath]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", objectPath, ErrBlobNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectPath)
	return nil
}

// Has reports whether an object exists
func (m *MemoryStore) Has(objectPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectPath]
	return ok
}

// Copies returns how many successful copies were made
func (m *MemoryStore) Copies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copies
}
