package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

// MockStorage is an in-memory Storage implementation for tests.
type MockStorage struct {
	mu         sync.RWMutex
	states     map[string]*engine.State
	dramas     []*drama.Template
	interviews []*interview.Template
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		states: make(map[string]*engine.State),
	}
}

// AddDramaTemplate seeds the drama catalog.
func (m *MockStorage) AddDramaTemplate(t *drama.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dramas = append(m.dramas, t)
}

// AddInterviewTemplate seeds the interview catalog.
func (m *MockStorage) AddInterviewTemplate(t *interview.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews = append(m.interviews, t)
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveState(ctx context.Context, slot string, st *engine.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[slot] = st
	return nil
}

func (m *MockStorage) LoadState(ctx context.Context, slot string) (*engine.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

func (m *MockStorage) DeleteState(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, slot)
	return nil
}

func (m *MockStorage) ListStates(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slots := make([]string, 0, len(m.states))
	for slot := range m.states {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

func (m *MockStorage) DramaCatalog(ctx context.Context) ([]*drama.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*drama.Template(nil), m.dramas...), nil
}

func (m *MockStorage) InterviewCatalog(ctx context.Context) ([]*interview.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*interview.Template(nil), m.interviews...), nil
}
