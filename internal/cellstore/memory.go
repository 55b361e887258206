package cellstore

import (
	"context"
	"sync"
)

// Memory is an in-process slot. Used in development and tests.
type Memory struct {
	mutex sync.RWMutex
	value string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(_ context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.value, nil
}

func (m *Memory) Write(_ context.Context, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.value = value
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.value = ""
	return nil
}
