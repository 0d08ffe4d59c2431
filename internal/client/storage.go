package client

import "sync"

// TokenStorage persists the session token between dispatches.
type TokenStorage interface {
	Load() string
	Save(token string)
	Clear()
}

// MemoryTokenStorage keeps the token in process memory.
type MemoryTokenStorage struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStorage returns storage seeded with token.
func NewMemoryTokenStorage(token string) *MemoryTokenStorage {
	return &MemoryTokenStorage{token: token}
}

func (m *MemoryTokenStorage) Load() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokenStorage) Save(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *MemoryTokenStorage) Clear() {
	m.Save("")
}
