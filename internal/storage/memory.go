package storage

import (
	"context"
	"sync"
)

// Memory хранит данные в памяти процесса.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get возвращает значение ключа.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set сохраняет значение ключа.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Remove удаляет ключ.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Close ничего не делает и нужен для единообразия с другими хранилищами.
func (m *Memory) Close() error {
	return nil
}
