package media

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps photos in process memory.
type Memory struct {
	mu       sync.RWMutex
	objects  map[string]upload
	maxBytes int64
}

func NewMemory(maxBytes int64) *Memory {
	return &Memory{objects: map[string]upload{}, maxBytes: maxBytes}
}

func (m *Memory) Put(_ context.Context, contentType string, r io.Reader, size int64) (string, error) {
	u, err := prepare(contentType, r, size, m.maxBytes)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[u.info.Ref] = u
	return u.info.Ref, nil
}

func (m *Memory) Get(_ context.Context, ref string) (io.ReadCloser, Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.objects[ref]
	if !ok {
		return nil, Info{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(u.data)), u.info, nil
}

func (m *Memory) Stat(_ context.Context, ref string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.objects[ref]
	if !ok {
		return Info{}, ErrNotFound
	}
	return u.info, nil
}

func (m *Memory) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[ref]; !ok {
		return ErrNotFound
	}
	delete(m.objects, ref)
	return nil
}
