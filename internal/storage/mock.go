package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	published map[string]string
	seeds     map[string]string
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		published: make(map[string]string),
		seeds:     make(map[string]string),
	}
}

// AddSeed adds a read-only script, as if it were on disk.
func (m *MockStorage) AddSeed(name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds[name] = text
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) ListScripts(ctx context.Context) ([]ScriptInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ScriptInfo
	for name := range m.published {
		out = append(out, ScriptInfo{Name: name, Published: true})
	}
	for name := range m.seeds {
		if _, ok := m.published[name]; !ok {
			out = append(out, ScriptInfo{Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStorage) GetScript(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if text, ok := m.published[name]; ok {
		return text, nil
	}
	if text, ok := m.seeds[name]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
}

func (m *MockStorage) SaveScript(ctx context.Context, name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	m.published[name] = text
	return nil
}

func (m *MockStorage) DeleteScript(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := m.published[name]; !ok {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}
	delete(m.published, name)
	return nil
}
