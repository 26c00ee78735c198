// Package cache содержит хранилища ключ-значение, которые играют роль
// хранилища сессии: в памяти процесса (по умолчанию) и в redis.
package cache

import (
	"context"
	"sync"
)

// Storage описывает хранилище сессии, ограниченное одной сессией.
type Storage interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение по ключу.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error
	// Clear удаляет все ключи сессии.
	Clear(ctx context.Context) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// Memory хранилище сессии в памяти процесса. Живёт, пока жив процесс.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}

var (
	_ Storage = (*Memory)(nil)
	_ Storage = (*Cache)(nil)
)
