package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage is an in-memory storage.Storage used by handler tests.
type MemoryStorage struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
	DeleteErr    error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte), ContentTypes: make(map[string]string)}
}

func (m *MemoryStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf
	m.ContentTypes[key] = contentType
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	delete(m.ContentTypes, key)
	return nil
}

func (m *MemoryStorage) PublicURL(key string) string {
	return fmt.Sprintf("https://test-bucket.s3.amazonaws.com/%s", key)
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
