package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// Memory is a process-local BlobStore.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]memObject{}}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", key, err)
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}
